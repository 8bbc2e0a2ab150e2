package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// corsHeaders are the request headers sent by pkg/client
var corsHeaders = []string{
	"Accept",
	"Authorization",
	"Content-Type",
	RequestIDHeader,
}

// CORS allows the dashboard API to be called from allowedOrigins. An empty
// list or "*" allows any origin without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(corsOptions(allowedOrigins))
}

func corsOptions(allowedOrigins []string) cors.Options {
	wildcard := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		allowedOrigins = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins: allowedOrigins,
		// The dashboard routes use no other verbs
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders:   corsHeaders,
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}
}
