package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"alyra/pkg/domain"
	dErrors "alyra/pkg/domain-errors"
	"alyra/pkg/platform/httputil"
	"alyra/pkg/requestcontext"
)

// IdentityValidator resolves a bearer token to the caller identity.
type IdentityValidator interface {
	ValidateToken(token string) (domain.Identity, error)
}

// RequireAuth authenticates the caller from the Authorization header and
// stores the identity with requestcontext.WithIdentity.
func RequireAuth(validator IdentityValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			identity, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, identity)))
		})
	}
}
