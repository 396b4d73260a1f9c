package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"inkwell/app/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthz(t *testing.T) {
	s := setupTestServer(t, 10)

	w := s.serve(httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestNotFound(t *testing.T) {
	s := setupTestServer(t, 10)

	tests := []struct {
		name        string
		path        string
		contentType string
	}{
		{"unknown page", "/nope", "text/html; charset=utf-8"},
		{"unknown api route", "/api/nope", "application/json"},
		{"missing post page", "/posts/9999", "text/html; charset=utf-8"},
		{"missing post api", "/api/posts/9999", "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.serve(httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
		})
	}
}

func TestProtectedRoutes(t *testing.T) {
	s := setupTestServer(t, 10)

	web := []struct {
		method, path, location string
	}{
		{"GET", "/drafts", "/login?next=%2Fdrafts"},
		{"GET", "/posts/new", "/login?next=%2Fposts%2Fnew"},
		{"GET", "/posts/1/edit", "/login?next=%2Fposts%2F1%2Fedit"},
		{"GET", "/posts/1/publish", "/login?next=%2Fposts%2F1%2Fpublish"},
		{"POST", "/posts/1/remove", "/login?next=%2F"},
		{"GET", "/comments/1/approve", "/login?next=%2Fcomments%2F1%2Fapprove"},
		{"POST", "/comments/1/remove", "/login?next=%2F"},
		{"POST", "/logout", "/login?next=%2F"},
	}
	for _, tt := range web {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := s.serve(httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}

	api := []struct{ method, path string }{
		{"GET", "/api/drafts"},
		{"POST", "/api/posts"},
		{"PUT", "/api/posts/1"},
		{"DELETE", "/api/posts/1"},
		{"POST", "/api/posts/1/publish"},
		{"POST", "/api/comments/1/approve"},
		{"DELETE", "/api/comments/1"},
		{"POST", "/api/logout"},
	}
	for _, tt := range api {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := s.serve(jsonRequest(tt.method, tt.path, `{}`, ""))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	t.Run("garbage token is anonymous", func(t *testing.T) {
		w := s.serve(jsonRequest("GET", "/api/drafts", "", "not-a-token"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCommentRateLimit(t *testing.T) {
	s := setupTestServer(t, 2)
	token := s.apiToken(t)

	w := s.serve(jsonRequest("POST", "/api/posts", `{"title":"Hello","text":"World"}`, token))
	require.Equal(t, http.StatusCreated, w.Code)

	form := url.Values{"author": {"Bob"}, "text": {"Nice!"}}
	for i := 0; i < 2; i++ {
		w = s.serve(formRequest("POST", "/posts/1/comment", form, nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
	}
	w = s.serve(formRequest("POST", "/posts/1/comment", form, nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// authors are not limited
	w = s.serve(jsonRequest("POST", "/api/posts/1/comments", `{"author":"alice","text":"thanks"}`, token))
	assert.Equal(t, http.StatusCreated, w.Code)

	// reading the form is not limited either
	w = s.serve(httptest.NewRequest("GET", "/posts/1/comment", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartServerShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, "127.0.0.1:0", http.NotFoundHandler(), time.Second, zap.NewNop())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartServerBadAddr(t *testing.T) {
	err := StartServer(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), time.Second, zap.NewNop())
	assert.Error(t, err)
}
