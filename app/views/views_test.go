package views

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"inkwell/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postForm struct{ Title, Text string }

type commentForm struct{ Author, Text string }

func render(t *testing.T, name string, page *Page) string {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, page))
	return buf.String()
}

func TestRenderPostList(t *testing.T) {
	published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	out := render(t, PostList, &Page{Posts: []*models.Post{
		{ID: 3, Title: "Hello <World>", Text: "<p>First &amp; best</p>", PublishedAt: &published},
	}})

	assert.Contains(t, out, `href="/posts/3"`)
	assert.Contains(t, out, "Hello &lt;World&gt;")
	assert.Contains(t, out, "Mar 1, 2024")
	assert.Contains(t, out, "First &amp; best")
	assert.Contains(t, out, "Log in")
}

func TestRenderPostDetail(t *testing.T) {
	post := &models.Post{ID: 5, Title: "Hello", Text: "<p>World</p>", Author: "alice", Comments: []*models.Comment{
		{ID: 1, Author: "Bob", Text: "Nice!", Approved: false},
	}}

	t.Run("anonymous", func(t *testing.T) {
		out := render(t, PostDetail, &Page{Post: post})
		assert.Contains(t, out, "<p>World</p>")
		assert.Contains(t, out, `href="/posts/5/comment"`)
		assert.NotContains(t, out, "/posts/5/edit")
		assert.NotContains(t, out, "/comments/1/approve")
	})

	t.Run("author", func(t *testing.T) {
		out := render(t, PostDetail, &Page{Post: post, Actor: &models.User{ID: 1, Username: "alice"}})
		assert.Contains(t, out, "/posts/5/edit")
		assert.Contains(t, out, "/posts/5/publish")
		assert.Contains(t, out, "/comments/1/approve")
		assert.Contains(t, out, "/comments/1/remove")
		assert.Contains(t, out, "Log out alice")
	})
}

func TestRenderFormsWithErrors(t *testing.T) {
	out := render(t, PostEdit, &Page{
		Form:   postForm{Title: "", Text: "kept text"},
		Errors: map[string]string{"title": "is required"},
	})
	assert.Contains(t, out, "Title is required")
	assert.Contains(t, out, "kept text")

	out = render(t, AddComment, &Page{
		Post:   &models.Post{ID: 5, Title: "Hello"},
		Form:   commentForm{Author: "Bob"},
		Errors: map[string]string{"text": "is required"},
	})
	assert.Contains(t, out, `action="/posts/5/comment"`)
	assert.Contains(t, out, `value="Bob"`)
	assert.Contains(t, out, "Text is required")
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, r.Render(&buf, "missing", &Page{}))
	assert.Zero(t, buf.Len())
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a & b", excerpt("<p>a &amp; b</p>"))
	long := strings.Repeat("x", 400)
	got := excerpt(long)
	assert.Equal(t, 301, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 1, 2024, 10:00", formatTime(ts))
	assert.Equal(t, "Mar 1, 2024, 10:00", formatTime(&ts))
	assert.Equal(t, "", formatTime((*time.Time)(nil)))
	assert.Equal(t, "", formatTime(time.Time{}))
}
