// Package security provides the credential hasher backed by bcrypt: slow,
// salted, and constant-time on verification.
package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/identitydesk/identity-api/internal/core/ports"
)

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using the given cost. A cost outside the
// valid bcrypt range falls back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

var _ ports.PasswordHasher = (*BcryptHasher)(nil)

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
