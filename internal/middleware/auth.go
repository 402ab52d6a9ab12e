package middleware

import (
	"context"
	"net/http"
	"strings"

	"skytracker/backend/internal/models/entities"
	"skytracker/backend/internal/services"
)

const sessionUserKey contextKey = "session_user"

// SessionMiddleware resolves the bearer token (or session cookie) to a user
// and rejects the request when neither yields one
func SessionMiddleware(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromToken(r.Context(), extractToken(r))
			if user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// GetSessionUser returns the authenticated user placed in the context by
// SessionMiddleware, or nil outside a gated route
func GetSessionUser(ctx context.Context) *entities.User {
	if user, ok := ctx.Value(sessionUserKey).(*entities.User); ok {
		return user
	}
	return nil
}
