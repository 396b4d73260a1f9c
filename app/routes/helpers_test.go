package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inkwell/app/auth"
	"inkwell/app/repositories"
	"inkwell/app/services"
	"inkwell/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *mux.Router
	store  *repositories.Store
	auth   *services.AuthService
}

// setupTestServer wires the full stack on a throwaway Badger store.
func setupTestServer(t *testing.T, commentRate int) *testServer {
	t.Helper()
	bs, err := repositories.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { bs.Close() })
	store := bs.Store()

	renderer, err := views.New()
	require.NoError(t, err)
	log := zap.NewNop()

	authService := services.NewAuthService(store.Users,
		auth.NewIssuer("test-secret", time.Hour, nil), auth.NewBadgerRevoker(bs.DB))
	_, err = authService.Register(services.UserInput{Username: "alice", Password: "s3cret!", Email: "alice@example.com"})
	require.NoError(t, err)

	router := SetupRoutes(Dependencies{
		Posts:                services.NewPostService(store.Posts, store.Comments, time.Now),
		Comments:             services.NewCommentService(store, nil, log, time.Now),
		Auth:                 authService,
		Views:                renderer,
		Log:                  log,
		CommentRatePerMinute: commentRate,
	})
	return &testServer{router: router, store: store, auth: authService}
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// apiToken logs in through the API and returns the bearer token.
func (s *testServer) apiToken(t *testing.T) string {
	t.Helper()
	w := s.serve(jsonRequest("POST", "/api/login", `{"username":"alice","password":"s3cret!"}`, ""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Token
}

func jsonRequest(method, target, body, token string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func formRequest(method, target string, values url.Values, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}
