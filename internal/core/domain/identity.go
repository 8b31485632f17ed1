package domain

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password must be at least 4 characters long")
)

const (
	MinPasswordLen = 4
	bcryptCost     = 12
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// IdentityProvider resolves the per-installation user every remote row is
// keyed by.
type IdentityProvider interface {
	UserID() string
}

type StaticIdentity struct {
	id string
}

// NewStaticIdentity normalizes raw, or generates a fresh id when raw is blank.
func NewStaticIdentity(raw string) StaticIdentity {
	id := NormalizeUserID(raw)
	if id == "" {
		id = GenerateUserID()
	}
	return StaticIdentity{id: id}
}

func (s StaticIdentity) UserID() string {
	return s.id
}

// NormalizeUserID trims, lowercases and dashes whitespace in a user supplied id.
func NormalizeUserID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	return whitespaceRun.ReplaceAllString(id, "-")
}

func GenerateUserID() string {
	return "user_" + uuid.NewString()
}

// Authenticator gates access to the dashboard.
type Authenticator interface {
	Enabled() bool
	Authenticate(password string) error
}

// PasswordGate checks a single shared password against a bcrypt hash. A gate
// without a hash is disabled and admits everyone.
type PasswordGate struct {
	hash []byte
}

func NewPasswordGate(plainPassword string) (*PasswordGate, error) {
	if utf8.RuneCountInString(plainPassword) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &PasswordGate{hash: hash}, nil
}

func NewPasswordGateFromHash(hash string) *PasswordGate {
	if hash == "" {
		return &PasswordGate{}
	}
	return &PasswordGate{hash: []byte(hash)}
}

func (g *PasswordGate) Enabled() bool {
	return len(g.hash) > 0
}

func (g *PasswordGate) Authenticate(password string) error {
	if !g.Enabled() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
