// Package auth аутентифицирует запросы к API: заглушка для разработки
// или проверка bearer-токена внешнего OIDC-провайдера.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const (
	ModeDevelopment = "development"
	ModeOIDC        = "oidc"
)

var (
	// ErrNoToken заголовок Authorization отсутствует
	ErrNoToken = errors.New("auth: no bearer token provided")
	// ErrMalformedHeader заголовок Authorization не в формате "Bearer <token>"
	ErrMalformedHeader = errors.New("auth: invalid authorization header format")
	// ErrInvalidToken токен не прошел проверку
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Principal аутентифицированный вызывающий
type Principal struct {
	Subject string
	Name    string
	Email   string
	Scheme  string
	Claims  map[string]any
}

// Authenticator проверяет учетные данные запроса
type Authenticator interface {
	// Authenticate возвращает личность вызывающего или ошибку
	Authenticate(r *http.Request) (*Principal, error)
	// Mode имя схемы аутентификации
	Mode() string
}

type principalKey struct{}

// WithPrincipal кладет личность вызывающего в контекст
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext достает личность вызывающего из контекста
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// UserID возвращает идентификатор вызывающего или пустую строку
func UserID(r *http.Request) string {
	if p, ok := FromContext(r.Context()); ok {
		return p.Subject
	}
	return ""
}

// Middleware пропускает дальше только аутентифицированные запросы.
// При ошибке вызывается onError, который пишет ответ 401.
func Middleware(a Authenticator, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// bearerToken извлекает токен из заголовка "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedHeader
	}
	return token, nil
}
