package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"inkwell/app/models"
	"inkwell/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentControllerCreate(t *testing.T) {
	app := setupTestApp(t)
	// the example post sits at id 5
	var post *models.Post
	for i := 1; i <= 5; i++ {
		post = app.createPost(t, "Post "+strconv.Itoa(i), true)
	}
	require.Equal(t, 5, post.ID)

	t.Run("form", func(t *testing.T) {
		w := app.do(httptest.NewRequest("GET", "/posts/5/comment", nil), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="author"`)
	})

	t.Run("anonymous comment waits for approval", func(t *testing.T) {
		w := app.do(formRequest("POST", "/posts/5/comment", url.Values{"author": {"Bob"}, "text": {"Nice!"}}), nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/posts/5", w.Header().Get("Location"))

		comments, err := app.store.Comments.ListByPost(5)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "Bob", comments[0].Author)
		assert.Equal(t, "Nice!", comments[0].Text)
		assert.False(t, comments[0].Approved)
	})

	t.Run("approved flag in input is ignored", func(t *testing.T) {
		w := app.do(jsonRequest("POST", "/api/posts/5/comments", `{"author":"Eve","text":"sneaky","approved":true}`), nil)
		assert.Equal(t, http.StatusCreated, w.Code)

		var comment models.Comment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))
		assert.False(t, comment.Approved)
		assert.Equal(t, 5, comment.PostID)
	})

	t.Run("invalid comment re-displays form", func(t *testing.T) {
		w := app.do(formRequest("POST", "/posts/5/comment", url.Values{"author": {"Bob"}, "text": {""}}), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Text is required")
		assert.Contains(t, w.Body.String(), `value="Bob"`)
	})

	t.Run("missing post", func(t *testing.T) {
		w := app.do(formRequest("POST", "/posts/9999/comment", url.Values{"author": {"Bob"}, "text": {"hi"}}), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCommentControllerModeration(t *testing.T) {
	app := setupTestApp(t)
	post := app.createPost(t, "Hello", true)
	comment, err := app.comments.CreateComment(post.ID, services.CommentInput{Author: "Bob", Text: "Nice!"})
	require.NoError(t, err)
	commentPath := "/comments/" + strconv.Itoa(comment.ID)

	t.Run("approve redirects to post", func(t *testing.T) {
		w := app.do(httptest.NewRequest("GET", commentPath+"/approve", nil), userA)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, postURL(post.ID), w.Header().Get("Location"))

		stored, err := app.store.Comments.GetByID(comment.ID)
		require.NoError(t, err)
		assert.True(t, stored.Approved)

		// idempotent
		w = app.do(httptest.NewRequest("POST", commentPath+"/approve", nil), userA)
		assert.Equal(t, http.StatusSeeOther, w.Code)
	})

	t.Run("approved comment is public", func(t *testing.T) {
		w := app.do(httptest.NewRequest("GET", postURL(post.ID), nil), nil)
		assert.Contains(t, w.Body.String(), "Nice!")
	})

	t.Run("remove redirects to post", func(t *testing.T) {
		w := app.do(httptest.NewRequest("POST", commentPath+"/remove", nil), userA)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, postURL(post.ID), w.Header().Get("Location"))

		comments, err := app.store.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("missing comment", func(t *testing.T) {
		w := app.do(httptest.NewRequest("GET", "/comments/9999/approve", nil), userA)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = app.do(httptest.NewRequest("GET", "/comments/9999/remove", nil), userA)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
