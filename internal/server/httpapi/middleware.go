package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/pacpoom/interface-vdc/internal/server/auth"
	"github.com/pacpoom/interface-vdc/internal/server/models"
)

type ctxKey int

const principalKey ctxKey = 0

// PrincipalFromContext returns the authenticated principal attached by the
// auth middleware, or nil outside a secured route.
func PrincipalFromContext(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalKey).(*models.Principal)
	return p
}

// authMiddleware enforces the Bearer scheme and verifies the token. The
// verified principal is attached to the request context; handlers trust it
// without re-checking.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error:   "Access Denied",
				Message: `Authorization header format must be "Bearer <token>".`,
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		principal, err := auth.PrincipalFromToken(token, s.secretKey)
		if err != nil {
			writeJSON(w, http.StatusForbidden, errorResponse{
				Error:   "Forbidden",
				Message: "Invalid, expired, or tampered token.",
			})
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
