package domain

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
)

// Principal is the capability shared by the three account kinds. Login and
// the access guard work against this interface only.
type Principal interface {
	Ref() PrincipalRef
	MatchPassword(password string) bool
	Public() PublicPrincipal
}

// PublicPrincipal is the outward projection of a principal. It never carries
// the password hash.
type PublicPrincipal struct {
	ID         string
	Role       Role
	Name       string
	Email      string
	Department string
	Batch      string
}

var ErrInvalidEmail = errors.New("invalid email address")

// NormalizeEmail trims and lowercases an address. Every email is stored and
// compared in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseEmail normalises email and checks it is a bare address (no display
// name, no angle brackets).
func ParseEmail(email string) (string, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func matchPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return cryptox.VerifyPassword(password, hash) == nil
}
