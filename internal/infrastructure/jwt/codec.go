package jwtinfra

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-api-authsession/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

// Token verification failure kinds. AuthService collapses all of them into
// domain.ErrUnauthenticated for callers; they stay distinct for logging.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims holds the session token payload: the account id as subject,
// issued-at and expiry as numeric dates, and a unique token id.
type Claims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 session tokens with a process-wide secret.
// The secret is fixed at construction and never rotated.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec returns a Codec bound to secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// WithClock returns a copy of c that reads the current time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	return &Codec{secret: c.secret, now: now}
}

// Issue returns a signed token for subjectID valid from issuedAt for lifetime.
// Each token carries a fresh jti, so two logins within the same second still
// yield distinct tokens and the later binding evicts the earlier one.
func (c *Codec) Issue(subjectID int64, issuedAt time.Time, lifetime time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks structure, signature and expiry (rejecting when now >= exp)
// and returns the subject id.
func (c *Codec) Verify(tokenStr string) (int64, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return 0, classify(err)
	}
	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || subject <= 0 {
		return 0, fmt.Errorf("subject %q: %w", claims.Subject, ErrMalformedToken)
	}
	return subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
