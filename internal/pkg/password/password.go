package password

import (
	"fmt"

	"github.com/go-api-authsession/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// MaxBytes is the longest input bcrypt accepts. Validation tags count runes,
// so a short non-ASCII password can still exceed it.
const MaxBytes = 72

// Hash returns a salted bcrypt digest of plaintext. Inputs over MaxBytes fail
// with domain.ErrBadRequest.
func Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxBytes {
		return "", fmt.Errorf("password exceeds %d bytes: %w", MaxBytes, domain.ErrBadRequest)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches digest. Malformed digests never match.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// dummyDigest is compared against when no account exists so unknown emails
// cost the same bcrypt work as wrong passwords.
var dummyDigest, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)

// Burn performs one throwaway comparison.
func Burn(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(dummyDigest, []byte(plaintext))
}
