// Package response единый JSON-конверт ответов HTTP API.
package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// InternalErrorMessage текст ответа на непредвиденную ошибку; детали не раскрываются
const InternalErrorMessage = "An internal server error occurred."

// Envelope конверт всех ответов API. Все ключи присутствуют всегда,
// отсутствующие значения сериализуются как null.
type Envelope struct {
	Success   bool     `json:"success"`
	Data      any      `json:"data"`
	Message   *string  `json:"message"`
	Errors    []string `json:"errors"`
	Timestamp string   `json:"timestamp"`
	TraceID   *string  `json:"traceId"`
}

type traceIDKey struct{}

// WithTraceID кладет идентификатор трассировки запроса в контекст
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceID идентификатор трассировки запроса или пустая строка
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// now подменяется в тестах
var now = time.Now

// OK пишет успешный ответ
func OK(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	Write(w, status, Envelope{
		Success:   true,
		Data:      data,
		Message:   optional(message),
		Timestamp: now().UTC().Format(time.RFC3339),
		TraceID:   optional(TraceID(r.Context())),
	})
}

// Error пишет ответ с ошибкой
func Error(w http.ResponseWriter, r *http.Request, status int, message string, errs ...string) {
	Write(w, status, Envelope{
		Success:   false,
		Message:   optional(message),
		Errors:    errs,
		Timestamp: now().UTC().Format(time.RFC3339),
		TraceID:   optional(TraceID(r.Context())),
	})
}

// optional пустую строку превращает в nil
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Write сериализует payload в JSON с указанным статусом
func Write(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, InternalErrorMessage, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
