package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-api-authsession/internal/domain"
	"github.com/go-api-authsession/internal/pkg/password"
)

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Profile   *domain.Profile
}

type Service interface {
	Login(ctx context.Context, email, plaintext string) (*Session, error)
	// Authenticate resolves a bearer token to the account it currently
	// represents. Every failure wraps domain.ErrUnauthenticated except
	// domain.ErrNoToken and domain.ErrStoreUnavailable, which stay distinct
	// so callers can log them apart.
	Authenticate(ctx context.Context, rawToken string) (*domain.Account, error)
	Logout(ctx context.Context, rawToken string) error
}

type accountFinder interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, accountID int64) (*domain.Account, error)
}

type sessionStore interface {
	Bind(ctx context.Context, accountID int64, token string, ttl time.Duration) error
	Lookup(ctx context.Context, accountID int64) (string, error)
	Unbind(ctx context.Context, accountID int64) error
}

type tokenCodec interface {
	Issue(subjectID int64, issuedAt time.Time, lifetime time.Duration) (string, error)
	Verify(token string) (int64, error)
}

// ServiceDeps holds the service's collaborators and settings.
type ServiceDeps struct {
	Accounts     accountFinder
	Sessions     sessionStore
	Codec        tokenCodec
	SessionTTL   time.Duration
	BearerPrefix string
	Now          func() time.Time // defaults to time.Now
}

type service struct {
	accounts     accountFinder
	sessions     sessionStore
	codec        tokenCodec
	sessionTTL   time.Duration
	bearerPrefix string
	now          func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		accounts:     deps.Accounts,
		sessions:     deps.Sessions,
		codec:        deps.Codec,
		sessionTTL:   deps.SessionTTL,
		bearerPrefix: deps.BearerPrefix,
		now:          now,
	}
}

// Login is the only path that creates a session binding. A later Login for the
// same account overwrites the binding and so evicts the earlier token.
func (s *service) Login(ctx context.Context, email, plaintext string) (*Session, error) {
	acct, err := s.accounts.FindByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		password.Burn(plaintext)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !password.Verify(plaintext, acct.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	issuedAt := s.now()
	token, err := s.codec.Issue(acct.AccountID, issuedAt, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.sessions.Bind(ctx, acct.AccountID, token, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("bind session: %w", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: issuedAt.Add(s.sessionTTL),
		Profile:   domain.ProfileOf(acct),
	}, nil
}

func (s *service) Authenticate(ctx context.Context, rawToken string) (*domain.Account, error) {
	token := s.stripBearer(rawToken)
	if token == "" {
		return nil, domain.ErrNoToken
	}
	accountID, err := s.codec.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	acct, err := s.accounts.FindByID(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w %d", domain.ErrUnauthenticated, domain.ErrUnknownSubject, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load account: %v", domain.ErrStoreUnavailable, err)
	}

	bound, err := s.sessions.Lookup(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: no session bound for account %d", domain.ErrUnauthenticated, accountID)
	}
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(bound), []byte(token)) != 1 {
		return nil, fmt.Errorf("%w: token superseded for account %d", domain.ErrUnauthenticated, accountID)
	}
	return acct, nil
}

// Logout unbinds the session of whichever account the token names. The token
// must still verify, but it need not be the currently bound one.
func (s *service) Logout(ctx context.Context, rawToken string) error {
	token := s.stripBearer(rawToken)
	if token == "" {
		return fmt.Errorf("%w: %w", domain.ErrInvalidToken, domain.ErrNoToken)
	}
	accountID, err := s.codec.Verify(token)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if err := s.sessions.Unbind(ctx, accountID); err != nil {
		return fmt.Errorf("unbind session: %w", err)
	}
	slog.Info("session unbound", "account_id", accountID)
	return nil
}

// stripBearer accepts either a full header value or a bare token.
func (s *service) stripBearer(raw string) string {
	return strings.TrimSpace(strings.TrimPrefix(raw, s.bearerPrefix))
}
