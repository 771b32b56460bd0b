package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCAuthenticator проверяет bearer-токены (JWT), выпущенные OIDC-провайдером:
// подпись по JWKS провайдера, issuer, audience и срок действия.
type OIDCAuthenticator struct {
	verifier *oidc.IDTokenVerifier
}

var _ Authenticator = (*OIDCAuthenticator)(nil)

// NewOIDCAuthenticator получает конфигурацию провайдера по discovery-документу
// issuer и создает проверяющего токены для audience.
func NewOIDCAuthenticator(ctx context.Context, issuer, audience string) (*OIDCAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return NewOIDCAuthenticatorWithVerifier(provider.Verifier(&oidc.Config{
		ClientID: audience,
	})), nil
}

// NewOIDCAuthenticatorWithVerifier создает аутентификатор поверх готового verifier
func NewOIDCAuthenticatorWithVerifier(verifier *oidc.IDTokenVerifier) *OIDCAuthenticator {
	return &OIDCAuthenticator{verifier: verifier}
}

// Authenticate проверяет токен из заголовка Authorization
func (o *OIDCAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return nil, err
	}

	token, err := o.verifier.Verify(r.Context(), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims map[string]any
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims: %v", ErrInvalidToken, err)
	}

	p := &Principal{
		Subject: token.Subject,
		Scheme:  ModeOIDC,
		Claims:  claims,
	}
	p.Name = stringClaim(claims, "name", "preferred_username")
	p.Email = stringClaim(claims, "email", "upn")

	return p, nil
}

func (o *OIDCAuthenticator) Mode() string {
	return ModeOIDC
}

// stringClaim возвращает первое непустое строковое значение из перечисленных claims
func stringClaim(claims map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
