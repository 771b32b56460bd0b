package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/hlog"

	"notes-api/internal/api/http/response"
)

// Recovery перехватывает панику обработчика, логирует ее и отвечает 500
// без подробностей. http.ErrAbortHandler пробрасывается дальше.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("Unhandled panic")
			response.Error(w, r, http.StatusInternalServerError, response.InternalErrorMessage)
		}()
		next.ServeHTTP(w, r)
	})
}
