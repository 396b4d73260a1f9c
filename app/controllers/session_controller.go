package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"inkwell/app/middleware"
	"inkwell/app/services"
	"inkwell/app/views"

	"go.uber.org/zap"
)

// SessionController handles author login and logout
type SessionController struct {
	base
	authService  *services.AuthService
	cookieSecure bool
}

// NewSessionController creates a new SessionController
func NewSessionController(authService *services.AuthService, cookieSecure bool, renderer *views.Renderer, log *zap.Logger) *SessionController {
	return &SessionController{
		base:         newBase(renderer, log),
		authService:  authService,
		cookieSecure: cookieSecure,
	}
}

type loginForm struct {
	services.Credentials
	Next string `json:"next"`
}

// Login shows the login form and starts a session on valid credentials
func (sc *SessionController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginForm
	if r.Method == http.MethodGet {
		in.Next = safeNext(r.URL.Query().Get("next"))
		sc.render(w, r, views.Login, &views.Page{Title: "Log in", Form: in, Next: in.Next}, http.StatusOK)
		return
	}

	fields := map[string]*string{"username": &in.Username, "password": &in.Password, "next": &in.Next}
	if err := decode(r, &in, fields); err != nil {
		sc.sendStatus(w, r, http.StatusBadRequest, "Malformed request body.")
		return
	}
	in.Next = safeNext(in.Next)

	session, err := sc.authService.Login(in.Credentials)
	if errors.Is(err, services.ErrInvalidCredentials) {
		if middleware.WantsJSON(r) {
			sc.sendJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		page := &views.Page{Title: "Log in", Form: in, Next: in.Next, Message: "Unknown username or wrong password."}
		sc.render(w, r, views.Login, page, http.StatusUnauthorized)
		return
	}
	if err != nil {
		sc.formError(w, r, err, views.Login, &views.Page{Title: "Log in", Form: in, Next: in.Next})
		return
	}

	sc.log.Info("author logged in",
		zap.Int("user_id", session.User.ID),
		zap.String("request_id", middleware.GetRequestID(r.Context())))

	if middleware.WantsJSON(r) {
		sc.sendJSON(w, http.StatusOK, map[string]interface{}{
			"token":      session.Token,
			"expires_at": session.Claims.ExpiresAt.Time,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.Claims.ExpiresAt.Time,
		HttpOnly: true,
		Secure:   sc.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, in.Next, http.StatusSeeOther)
}

// Logout revokes the current token and clears the cookie
func (sc *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := sc.authService.Logout(r.Context(), middleware.GetClaims(r.Context())); err != nil {
		sc.serverError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext only allows redirects to paths on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}
	return next
}
