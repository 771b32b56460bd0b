package middleware

import (
	"net/http"

	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"

	"notes-api/internal/api/http/response"
)

// RateLimitMessage текст ответа 429
const RateLimitMessage = "Too many requests. Please try again later."

// RateLimit ограничивает количество запросов (rate limiting)
// rps - запросов в секунду, burst - разрешает кратковременные всплески
func RateLimit(next http.Handler, rps int, burst int) http.Handler {
	// Значения по умолчанию если не указаны
	if rps <= 0 {
		rps = 100
	}
	if burst <= 0 {
		burst = 10
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			hlog.FromRequest(r).Warn().
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Msg("Rate limit exceeded")
			w.Header().Set("Retry-After", "1")
			response.Error(w, r, http.StatusTooManyRequests, RateLimitMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}
