package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// corsOptions allows the storefront and back office SPAs to call the API with
// bearer tokens. Any localhost port is accepted in development when no origin
// is configured.
func corsOptions(allowedOrigins []string, isDevelopment bool) cors.Options {
	if isDevelopment && len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{
			middleware.RequestIDHeader, "Retry-After",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
		},
		// Tokens travel in the Authorization header, never in cookies.
		AllowCredentials: false,
		MaxAge:           600,
	}
}

func CORSMiddleware(allowedOrigins []string, isDevelopment bool) func(http.Handler) http.Handler {
	return cors.Handler(corsOptions(allowedOrigins, isDevelopment))
}

// DefaultMiddlewareStack is the router prelude shared by every route:
// request ids, client address from proxy headers and gzip.
func DefaultMiddlewareStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Compress(5, "application/json", "text/plain"),
	}
}
