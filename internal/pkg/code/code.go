package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of digits in a verification code.
const Length = 6

var upper = big.NewInt(1_000_000)

// New returns a uniformly random 6-digit code, zero padded.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
