package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const hashCost = 10

// PasswordHasher wraps bcrypt hashing and verification. Hashing is the
// only way a password ever reaches storage; nothing in this package
// persists or logs the plaintext.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: hashCost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

// Verify reports whether password matches digest. A malformed digest
// fails closed: the caller only ever sees false.
func (h *PasswordHasher) Verify(password, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	return err == nil
}
