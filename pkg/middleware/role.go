package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	apperrors "fleetdesk/pkg/errors"
	httputil "fleetdesk/pkg/http"
	"fleetdesk/pkg/logger"
)

// RequireRole gates a route to callers whose token carries one of the
// allowed roles. Must run after Authenticate.
func RequireRole(log *logger.Logger, allowed ...string) Guard {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Missing bearer token"))
				return
			}

			if _, permitted := allowedSet[claims.Role]; !permitted {
				log.Warn("Role check failed",
					"request_id", requestIDFrom(r.Context()),
					"path", r.URL.Path,
					"role", claims.Role,
				)
				_ = httputil.WriteError(w, apperrors.Forbidden("You are not allowed to perform this operation"))
				return
			}

			next(w, r, ps)
		}
	}
}
