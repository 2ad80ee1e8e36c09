package http

import (
	"errors"
	"net/http"

	apperrors "github.com/tair/wishlist-service/pkg/errors"
	"github.com/tair/wishlist-service/pkg/auth"
	"github.com/tair/wishlist-service/pkg/logger"
)

// AuthMiddleware validates the bearer token and puts the caller's user id
// into the request context
func AuthMiddleware(tokens *auth.TokenValidator) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.ValidateHeader(r.Header.Get("Authorization"))
			if err != nil {
				logger.Warn(r.Context()).Err(err).Msg("Invalid token")
				message := "Invalid token"
				if errors.Is(err, auth.ErrMissingToken) {
					message = "Authorization header required"
				}
				respondError(w, r, apperrors.Unauthorized(message))
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)

			logger.Debug(ctx).
				Str("role", claims.Role).
				Msg("User authenticated")

			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// AdminMiddleware checks if user has admin role
func AdminMiddleware(tokens *auth.TokenValidator) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return AuthMiddleware(tokens)(func(w http.ResponseWriter, r *http.Request) {
			role := auth.RoleFromContext(r.Context())
			if role != "admin" {
				logger.Warn(r.Context()).
					Str("role", role).
					Msg("Admin access denied")
				respondError(w, r, apperrors.Forbidden("Admin access required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
