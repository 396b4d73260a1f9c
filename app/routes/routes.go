package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"inkwell/app/controllers"
	"inkwell/app/middleware"
	"inkwell/app/services"
	"inkwell/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Dependencies holds what the router needs to build its controllers.
type Dependencies struct {
	Posts    *services.PostService
	Comments *services.CommentService
	Auth     *services.AuthService
	Views    *views.Renderer
	Log      *zap.Logger

	CookieSecure         bool
	CommentRatePerMinute int
}

// SetupRoutes defines the application's web and API routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.Authenticate(deps.Auth, log))
	router.Use(middleware.ContentTypeJSON)

	postController := controllers.NewPostController(deps.Posts, deps.Views, log)
	commentController := controllers.NewCommentController(deps.Comments, deps.Posts, deps.Views, log)
	sessionController := controllers.NewSessionController(deps.Auth, deps.CookieSecure, deps.Views, log)

	limiter := middleware.NewRateLimiter(deps.CommentRatePerMinute)
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	// state-changing links only work from this site
	guarded := func(h http.HandlerFunc) http.Handler { return middleware.SameSiteOnly(middleware.RequireAuth(h)) }
	limited := func(h http.HandlerFunc) http.Handler { return limiter.Limit(h) }

	router.NotFoundHandler = http.HandlerFunc(postController.NotFound)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	}).Methods("GET")

	// Web routes
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/login", sessionController.Login).Methods("GET", "POST")
	router.Handle("/logout", guarded(sessionController.Logout)).Methods("POST")
	router.Handle("/drafts", authed(postController.Drafts)).Methods("GET")

	// Posts web endpoints
	posts := router.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.Handle("/new", authed(postController.Create)).Methods("GET", "POST")
	posts.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	posts.Handle("/{id:[0-9]+}/edit", authed(postController.Edit)).Methods("GET", "POST")
	posts.Handle("/{id:[0-9]+}/publish", guarded(postController.Publish)).Methods("GET", "POST")
	posts.Handle("/{id:[0-9]+}/remove", guarded(postController.Delete)).Methods("GET", "POST")

	// Comments web endpoints
	posts.Handle("/{id:[0-9]+}/comment", limited(commentController.Create)).Methods("GET", "POST")
	router.Handle("/comments/{id:[0-9]+}/approve", guarded(commentController.Approve)).Methods("GET", "POST")
	router.Handle("/comments/{id:[0-9]+}/remove", guarded(commentController.Remove)).Methods("GET", "POST")

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", sessionController.Login).Methods("POST")
	api.Handle("/logout", authed(sessionController.Logout)).Methods("POST")
	api.Handle("/drafts", authed(postController.Drafts)).Methods("GET")

	// Posts API endpoints
	apiPosts := api.PathPrefix("/posts").Subrouter()
	apiPosts.HandleFunc("", postController.Index).Methods("GET")
	apiPosts.Handle("", authed(postController.Create)).Methods("POST")
	apiPosts.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	apiPosts.Handle("/{id:[0-9]+}", authed(postController.Edit)).Methods("PUT")
	apiPosts.Handle("/{id:[0-9]+}", authed(postController.Delete)).Methods("DELETE")
	apiPosts.Handle("/{id:[0-9]+}/publish", authed(postController.Publish)).Methods("POST")

	// Comments API endpoints
	apiPosts.Handle("/{id:[0-9]+}/comments", limited(commentController.Create)).Methods("POST")
	api.Handle("/comments/{id:[0-9]+}/approve", authed(commentController.Approve)).Methods("POST")
	api.Handle("/comments/{id:[0-9]+}", authed(commentController.Remove)).Methods("DELETE")

	return router
}

// StartServer serves handler on addr until ctx is cancelled, then shuts down
// gracefully, waiting at most shutdownTimeout for open requests.
func StartServer(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(log.Named("http")),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
