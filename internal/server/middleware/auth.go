package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/auth"
)

// Auth extracts the validated bearer claims into the request context.
// Signature verification happens at the ingress gateway before requests
// reach the bridge; a token that does not parse at all is still rejected.
func Auth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}

			claims, err := auth.ExtractClaims(token)
			if err != nil {
				log.Debug().Err(err).Msg("auth: rejecting unparseable bearer token")
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"invalid bearer token"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	return ""
}
