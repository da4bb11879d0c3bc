package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// ResolveActor resolves the request's actor once, through the tenant's
// configured claim mapping and identity adapter, and stores it in the
// context. Every identity-dependent handler reads the actor from here
// instead of interpreting token fields itself. Must be chained after
// ResolveTenant.
func ResolveActor(adminRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, okClaims := ClaimsFromContext(r.Context())
			t, okTenant := TenantFromContext(r.Context())
			if !okClaims || !okTenant {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			actor, err := t.Resolver().ResolveActor(r.Context(), claims, adminRole)
			if err != nil {
				log.Error().Err(err).Str("tenant", t.ID).Str("subject", claims.Subject).
					Msg("actor resolution failed")
				http.Error(w, `{"title":"Internal Server Error","status":500,"detail":"could not resolve actor identity"}`, http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin rejects actors without the bridge-admin authority. Must be
// chained after ResolveActor.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			}
			if !actor.IsAdmin {
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"admin authority required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
