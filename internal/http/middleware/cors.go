package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS creates middleware allowing the dashboard origin to call the API
// with credentials (the refresh cookie rides on cross-origin requests).
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			WorkspaceHeader,
		},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
