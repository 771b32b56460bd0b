package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notes-api/internal/api/http/response"
)

const (
	RequestIDHeader = "X-Request-ID"
	TraceIDHeader   = "X-Trace-Id"

	maxRequestIDLength = 128
)

// Trace назначает запросу идентификатор трассировки: берет X-Request-ID клиента
// или генерирует UUID. Идентификатор возвращается в X-Trace-Id и добавляется
// в логгер запроса.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		w.Header().Set(TraceIDHeader, id)

		ctx := response.WithTraceID(r.Context(), id)
		zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("traceId", id)
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
