package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

const (
	localStorefrontOrigin = "http://localhost:3000"
	// accessTokenHeader is set by the login, signup and refresh handlers.
	accessTokenHeader = "X-Access-Token"
)

// CORS applies the allowed-origin policy. Credentials are allowed so the
// guest session cookie round-trips from the browser.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{localStorefrontOrigin}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			idempotencyKeyHeader, requestIDHeader,
		},
		ExposedHeaders:   []string{requestIDHeader, accessTokenHeader, replayedHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
