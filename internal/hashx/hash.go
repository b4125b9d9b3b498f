// Package hashx provides one-way password hashing and verification on top
// of bcrypt. Each Hash call salts independently, so the same plaintext
// yields a different digest every time.
package hashx

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost factor used unless config overrides it.
const DefaultCost = 10

// ErrEmptyPassword is returned by Hash for empty input; hashing "" is a
// caller contract violation.
var ErrEmptyPassword = errors.New("empty password")

// Hasher hashes and verifies passwords with a fixed cost factor.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher. A cost outside bcrypt's supported range
// falls back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt digest of password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. Missing or malformed
// inputs count as a non-match rather than an error: the caller cannot tell
// a bad credential from a broken one, and must not.
func (h *Hasher) Verify(password, digest string) bool {
	if password == "" || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
