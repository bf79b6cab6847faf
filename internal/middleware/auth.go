package middleware

import (
	"net/http"
	"strings"

	"github.com/moonwavetravel/backend/internal/auth"
)

// NewAuthenticator returns a middleware that reads a bearer token from the
// Authorization header, or from the access_token query parameter for
// WebSocket upgrades where browsers cannot set headers. A valid token puts
// an auth.Identity into the request context. A request without a token
// continues anonymously; a request with an invalid token is passed to reject.
func NewAuthenticator(secret string, reject func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(token, secret)
			if err != nil {
				reject(w, r, err)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: claims.UserID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}
