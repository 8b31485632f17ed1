package services

import (
	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

type AuthService struct {
	gate     domain.Authenticator
	tokens   *TokenService
	identity domain.IdentityProvider
}

func NewAuthService(gate domain.Authenticator, tokens *TokenService, identity domain.IdentityProvider) *AuthService {
	return &AuthService{
		gate:     gate,
		tokens:   tokens,
		identity: identity,
	}
}

// Enabled reports whether the dashboard is password protected.
func (s *AuthService) Enabled() bool {
	return s.gate.Enabled()
}

// Login checks password against the gate and issues a session token for the
// configured user.
func (s *AuthService) Login(password string) (string, error) {
	if err := s.gate.Authenticate(password); err != nil {
		return "", err
	}
	return s.tokens.GenerateToken(s.identity.UserID())
}
