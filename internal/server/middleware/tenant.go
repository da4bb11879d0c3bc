package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/tenant"
)

// ResolveTenant resolves the {tenantID} path segment against the registry
// and rejects requests whose token tenant claim does not match the path
// tenant. Must be chained after Auth.
func ResolveTenant(registry *tenant.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			tenantID := chi.URLParam(r, "tenantID")
			t, err := registry.Authorize(claims, tenantID)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrNotFound):
					http.Error(w, `{"title":"Not Found","status":404,"detail":"unknown tenant"}`, http.StatusNotFound)
				default:
					http.Error(w, `{"title":"Unauthorized","status":401,"detail":"tenant mismatch"}`, http.StatusUnauthorized)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}
