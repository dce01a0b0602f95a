// FilePath: api/middleware/api.middleware.cors.go
package middleware

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
)

// CORS wraps a handler with the cross-origin policy the mobile app and the
// ESP32 firmware need: JSON bodies, the four methods the API uses, any
// configured origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete,
		}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
}

// RequestLogging logs every request in Apache combined format
func RequestLogging(next http.Handler) http.Handler {
	return handlers.CombinedLoggingHandler(os.Stdout, next)
}
