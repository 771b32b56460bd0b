package auth

import "net/http"

// DevAuthenticator принимает любой запрос как фиксированного пользователя.
// Используется только в окружении development.
type DevAuthenticator struct {
	principal Principal
}

var _ Authenticator = (*DevAuthenticator)(nil)

// NewDevAuthenticator создает заглушку с пользователем разработки
func NewDevAuthenticator() *DevAuthenticator {
	return &DevAuthenticator{
		principal: Principal{
			Subject: "dev-user-123",
			Name:    "Development User",
			Email:   "developer@notesapp.local",
			Scheme:  ModeDevelopment,
			Claims: map[string]any{
				"sub":   "dev-user-123",
				"name":  "Development User",
				"email": "developer@notesapp.local",
			},
		},
	}
}

// Authenticate всегда успешен
func (d *DevAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	p := d.principal
	return &p, nil
}

func (d *DevAuthenticator) Mode() string {
	return ModeDevelopment
}
