package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const (
	// maxLoggedRequestBody тела POST/PUT длиннее не логируются
	maxLoggedRequestBody = 10000
	// maxLoggedErrorBody тела ответов с ошибкой длиннее не логируются
	maxLoggedErrorBody = 5000
)

// responseWriter обертка для ResponseWriter для логирования статуса ответа.
// Для ответов с ошибкой копирует начало тела.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	size        int
	errBody     bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.statusCode >= http.StatusBadRequest && rw.errBody.Len() <= maxLoggedErrorBody {
		rw.errBody.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Logging логирует все HTTP запросы с информацией о времени выполнения.
// Логгер запроса берется из контекста (hlog.NewHandler должен стоять раньше).
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := hlog.FromRequest(r)

		// Логирование запроса
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP request started")

		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && log.GetLevel() <= zerolog.DebugLevel {
			logRequestBody(log, r)
		}

		// Обертка ResponseWriter для логирования статуса
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		// Логирование ответа
		duration := time.Since(start)
		event := log.Info()
		if ww.statusCode >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Int("size", ww.size).
			Dur("duration", duration).
			Msg("HTTP request completed")

		if ww.statusCode >= http.StatusBadRequest && ww.errBody.Len() > 0 && ww.errBody.Len() < maxLoggedErrorBody {
			log.Debug().
				Int("status", ww.statusCode).
				Str("body", ww.errBody.String()).
				Msg("HTTP error response body")
		}
	})
}

// logRequestBody читает тело запроса, логирует его и возвращает обратно в запрос
func logRequestBody(log *zerolog.Logger, r *http.Request) {
	if r.Body == nil || r.Body == http.NoBody {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedRequestBody))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), r.Body), r.Body}
	if err != nil || len(body) == 0 || len(body) >= maxLoggedRequestBody {
		return
	}
	log.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("body", string(body)).
		Msg("HTTP request body")
}
