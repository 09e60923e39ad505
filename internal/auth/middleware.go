package auth

import (
	"context"
	"net/http"

	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// IdentityResolver turns a session token into the user it belongs to.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*models.User, error)
}

// ErrorWriter renders a resolver failure to the client.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware creates a middleware for protecting routes. The resolved
// user, without password hash, is attached to the request context.
func Middleware(resolver IdentityResolver, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.ResolveIdentity(r.Context(), TokenFromRequest(r))
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("Rejected unauthenticated request")
				writeError(w, r, err)
				return
			}

			sanitized := user.Sanitized()
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", sanitized.ID)
			})
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &sanitized)))
		})
	}
}
