package api

import (
	"context"
	"net/http"
	"strings"

	"stagecoach/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticate resolves the Bearer token to a user and stores it on the
// request context. Unknown or missing credentials get a 401.
func (app *App) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		user, err := app.Users.GetByAPIKey(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFrom returns the authenticated user. Only valid behind Authenticate.
func userFrom(ctx context.Context) *models.User {
	return ctx.Value(userContextKey).(*models.User)
}
