package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS разрешает запросы SPA с перечисленных через запятую origins
func CORS(allowedOrigins string, maxAge int) func(http.Handler) http.Handler {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		// Убираем пробелы из origins
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	if maxAge == 0 {
		maxAge = 86400 // 24 часа по умолчанию
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Requested-With",
			RequestIDHeader,
		},
		ExposedHeaders:   []string{TraceIDHeader, "Location"},
		AllowCredentials: true,
		MaxAge:           maxAge,
	}).Handler
}
