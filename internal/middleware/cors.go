// Package middleware provides reusable HTTP middleware for the Moonwave API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// NewCORSHandler applies CORS headers for the given origins. Each origin is a
// full scheme+host with no trailing slash; "*" allows any origin.
// Accept-Language is allowed so browsers can pick the error message language.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Accept-Language"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         600,
	})
	return c.Handler
}

// OriginChecker reports whether a WebSocket upgrade may proceed. Browsers
// always send Origin, so requests without one come from other clients and
// are accepted; browser requests must match an allowed origin.
func OriginChecker(allowedOrigins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowedOrigins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
