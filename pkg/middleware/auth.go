package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"fleetdesk/pkg/auth"
	apperrors "fleetdesk/pkg/errors"
	httputil "fleetdesk/pkg/http"
	"fleetdesk/pkg/logger"
)

const claimsKey contextKey = "auth_claims"

// Guard wraps a single route with an access-control concern. Guards are
// applied per route rather than per server because the public routes
// (login, register, health) share the router with the gated ones.
type Guard func(httprouter.Handle) httprouter.Handle

// Chain composes guards left to right: the first guard sees the request first.
func Chain(guards ...Guard) Guard {
	return func(next httprouter.Handle) httprouter.Handle {
		for i := len(guards) - 1; i >= 0; i-- {
			next = guards[i](next)
		}
		return next
	}
}

// Authenticate validates the bearer token and stores its claims in the
// request context for downstream role checks.
func Authenticate(tokens *auth.Manager, log *logger.Logger) Guard {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Missing bearer token"))
				return
			}

			claims, err := tokens.VerifyToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.Warn("Token verification failed",
					"request_id", requestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

// ClaimsFrom returns the authenticated claims stored by Authenticate.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}
