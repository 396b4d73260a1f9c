package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"inkwell/app/models"
	"inkwell/app/repositories"
	"inkwell/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a settable time source for tests.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time           { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

var (
	alice = &models.User{ID: 1, Username: "alice"}
	bob   = &models.User{ID: 2, Username: "bob"}
)

func titles(posts []*models.Post) []string {
	out := []string{}
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestPostServiceCreate(t *testing.T) {
	store := mock.NewStore()
	c := newClock()
	svc := NewPostService(store.Posts, store.Comments, c.Now)

	t.Run("valid post becomes a draft", func(t *testing.T) {
		post, err := svc.CreatePost(PostInput{Title: "Hello", Text: "World"}, alice)
		require.NoError(t, err)
		assert.Greater(t, post.ID, 0)
		assert.Equal(t, alice.ID, post.AuthorID)
		assert.Equal(t, "alice", post.Author)
		assert.Equal(t, c.Now(), post.CreatedAt)
		assert.Nil(t, post.PublishedAt)
		assert.True(t, post.IsDraft())
	})

	tests := []struct {
		name   string
		input  PostInput
		fields []string
	}{
		{"empty title", PostInput{Title: "", Text: "body"}, []string{"title"}},
		{"blank title", PostInput{Title: "   ", Text: "body"}, []string{"title"}},
		{"empty text", PostInput{Title: "t", Text: ""}, []string{"text"}},
		{"both empty", PostInput{}, []string{"title", "text"}},
		{"title too long", PostInput{Title: strings.Repeat("a", 201), Text: "body"}, []string{"title"}},
		{"text only markup", PostInput{Title: "t", Text: "<script>alert(1)</script>"}, []string{"text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := svc.CreatePost(tt.input, alice)
			assert.Nil(t, post)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
			assert.Len(t, verr.Fields, len(tt.fields))
		})
	}

	t.Run("text is sanitized", func(t *testing.T) {
		post, err := svc.CreatePost(PostInput{Title: "t", Text: `<p onclick="x()">hi</p><script>bad()</script>`}, alice)
		require.NoError(t, err)
		assert.Equal(t, "<p>hi</p>", post.Text)
	})

	t.Run("title exactly 200 characters", func(t *testing.T) {
		_, err := svc.CreatePost(PostInput{Title: strings.Repeat("a", 200), Text: "body"}, alice)
		assert.NoError(t, err)
	})
}

func TestPostServicePublishedAndDrafts(t *testing.T) {
	store := mock.NewStore()
	c := newClock()
	svc := NewPostService(store.Posts, store.Comments, c.Now)

	first, err := svc.CreatePost(PostInput{Title: "First draft", Text: "a"}, alice)
	require.NoError(t, err)
	c.Advance(time.Minute)
	second, err := svc.CreatePost(PostInput{Title: "Second draft", Text: "b"}, alice)
	require.NoError(t, err)
	c.Advance(time.Minute)
	third, err := svc.CreatePost(PostInput{Title: "Third draft", Text: "c"}, alice)
	require.NoError(t, err)

	drafts, err := svc.ListDrafts()
	require.NoError(t, err)
	assert.Equal(t, []string{"First draft", "Second draft", "Third draft"}, titles(drafts))

	published, err := svc.ListPublished()
	require.NoError(t, err)
	assert.Empty(t, published)

	// publish out of creation order
	c.Advance(time.Minute)
	_, err = svc.PublishPost(third.ID)
	require.NoError(t, err)
	c.Advance(time.Minute)
	_, err = svc.PublishPost(first.ID)
	require.NoError(t, err)

	published, err = svc.ListPublished()
	require.NoError(t, err)
	assert.Equal(t, []string{"Third draft", "First draft"}, titles(published))

	drafts, err = svc.ListDrafts()
	require.NoError(t, err)
	assert.Equal(t, []string{"Second draft"}, titles(drafts))

	t.Run("every post is in exactly one list", func(t *testing.T) {
		seen := map[int]int{}
		for _, p := range published {
			seen[p.ID]++
		}
		for _, p := range drafts {
			seen[p.ID]++
		}
		for _, id := range []int{first.ID, second.ID, third.ID} {
			assert.Equal(t, 1, seen[id], "post %d", id)
		}
	})

	t.Run("republishing re-stamps", func(t *testing.T) {
		c.Advance(time.Hour)
		post, err := svc.PublishPost(third.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Now(), *post.PublishedAt)

		published, err := svc.ListPublished()
		require.NoError(t, err)
		assert.Equal(t, []string{"First draft", "Third draft"}, titles(published))
	})

	t.Run("publish missing post", func(t *testing.T) {
		_, err := svc.PublishPost(9999)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestPostServicePublishScenario(t *testing.T) {
	store := mock.NewStore()
	c := newClock()
	svc := NewPostService(store.Posts, store.Comments, c.Now)

	post, err := svc.CreatePost(PostInput{Title: "Hello", Text: "World"}, alice)
	require.NoError(t, err)

	drafts, err := svc.ListDrafts()
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, titles(drafts))

	c.Advance(time.Second)
	published, err := svc.PublishPost(post.ID)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.False(t, published.PublishedAt.After(c.Now()))

	list, err := svc.ListPublished()
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, titles(list))

	drafts, err = svc.ListDrafts()
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestPostServiceGet(t *testing.T) {
	store := mock.NewStore()
	c := newClock()
	svc := NewPostService(store.Posts, store.Comments, c.Now)

	post, err := svc.CreatePost(PostInput{Title: "Hello", Text: "World"}, alice)
	require.NoError(t, err)

	pending := &models.Comment{PostID: post.ID, Author: "x", Text: "pending", CreatedAt: c.Now()}
	approved := &models.Comment{PostID: post.ID, Author: "y", Text: "approved", CreatedAt: c.Now(), Approved: true}
	require.NoError(t, store.Comments.Create(pending))
	require.NoError(t, store.Comments.Create(approved))

	t.Run("readers see approved comments", func(t *testing.T) {
		got, err := svc.GetPost(post.ID, false)
		require.NoError(t, err)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, "approved", got.Comments[0].Text)
	})

	t.Run("authors see every comment", func(t *testing.T) {
		got, err := svc.GetPost(post.ID, true)
		require.NoError(t, err)
		assert.Len(t, got.Comments, 2)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := svc.GetPost(9999, false)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestPostServiceUpdate(t *testing.T) {
	store := mock.NewStore()
	c := newClock()
	svc := NewPostService(store.Posts, store.Comments, c.Now)

	post, err := svc.CreatePost(PostInput{Title: "Original", Text: "text"}, alice)
	require.NoError(t, err)
	created := post.CreatedAt
	c.Advance(time.Minute)
	_, err = svc.PublishPost(post.ID)
	require.NoError(t, err)
	publishedAt := c.Now()

	c.Advance(time.Hour)
	updated, err := svc.UpdatePost(post.ID, PostInput{Title: "Edited", Text: "new text"}, bob)
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
	assert.Equal(t, "new text", updated.Text)

	stored, err := store.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, stored.AuthorID)
	assert.Equal(t, "bob", stored.Author)
	assert.Equal(t, created, stored.CreatedAt)
	require.NotNil(t, stored.PublishedAt)
	assert.Equal(t, publishedAt, *stored.PublishedAt)

	t.Run("invalid edit keeps stored post", func(t *testing.T) {
		_, err := svc.UpdatePost(post.ID, PostInput{Title: "", Text: "x"}, alice)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)

		stored, err := store.Posts.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Edited", stored.Title)
		assert.Equal(t, bob.ID, stored.AuthorID)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := svc.UpdatePost(9999, PostInput{Title: "x", Text: "y"}, alice)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestPostServiceDelete(t *testing.T) {
	store := mock.NewStore()
	c := newClock()
	svc := NewPostService(store.Posts, store.Comments, c.Now)

	post, err := svc.CreatePost(PostInput{Title: "Doomed", Text: "text"}, alice)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Comments.Create(&models.Comment{PostID: post.ID, Author: "a", Text: "b", CreatedAt: c.Now()}))
	}

	require.NoError(t, svc.DeletePost(post.ID))

	_, err = svc.GetPost(post.ID, true)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	comments, err := store.Comments.ListByPost(post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, svc.DeletePost(post.ID), repositories.ErrNotFound)
}
