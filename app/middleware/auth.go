package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"inkwell/app/auth"
	"inkwell/app/models"

	"go.uber.org/zap"
)

// SessionCookie is the cookie holding the session token.
const SessionCookie = "inkwell_session"

// TokenVerifier checks session tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// Authenticate resolves the acting author from the session cookie or a bearer
// token. Requests without a valid token continue anonymously.
func Authenticate(verifier TokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Debug("session rejected",
					zap.Error(err),
					zap.String("request_id", GetRequestID(r.Context())))
				next.ServeHTTP(w, r)
				return
			}

			actor := &models.User{ID: claims.UserID, Username: claims.Username}
			ctx := context.WithValue(r.Context(), actorKey, actor)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// GetActor returns the authenticated author, or nil for anonymous requests.
func GetActor(ctx context.Context) *models.User {
	actor, _ := ctx.Value(actorKey).(*models.User)
	return actor
}

// GetClaims returns the verified session claims, or nil.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// WithActor attaches an actor to ctx.
func WithActor(ctx context.Context, actor *models.User) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// RequireAuth rejects anonymous requests. Web requests are sent to the login
// page, API requests get 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetActor(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		if WantsJSON(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		target := r.URL.Path
		if r.Method != http.MethodGet {
			target = "/"
		}
		http.Redirect(w, r, "/login?next="+url.QueryEscape(target), http.StatusSeeOther)
	})
}
