package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-authsession/internal/domain"
	"github.com/go-api-authsession/internal/pkg/code"
)

type Service interface {
	// RequestCode issues a fresh code for identifier and mails it. A second
	// request inside the cooldown window fails with domain.ErrThrottled.
	RequestCode(ctx context.Context, purpose domain.Purpose, identifier string) error
	// Redeem consumes the code if it matches. Codes are single-use.
	Redeem(ctx context.Context, purpose domain.Purpose, identifier, code string) error
}

type codeStore interface {
	Put(ctx context.Context, purpose domain.Purpose, identifier, code string, ttl time.Duration) error
	Lookup(ctx context.Context, purpose domain.Purpose, identifier string) (string, error)
	ConsumeIfEqual(ctx context.Context, purpose domain.Purpose, identifier, code string) (bool, error)
	AcquireSendSlot(ctx context.Context, purpose domain.Purpose, identifier string, window time.Duration) (bool, error)
	ReleaseSendSlot(ctx context.Context, purpose domain.Purpose, identifier string) error
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type ServiceDeps struct {
	Codes    codeStore
	Mailer   mailer
	CodeTTL  time.Duration
	Cooldown time.Duration
	Generate func() (string, error) // defaults to code.New
}

type service struct {
	codes    codeStore
	mailer   mailer
	codeTTL  time.Duration
	cooldown time.Duration
	generate func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	gen := deps.Generate
	if gen == nil {
		gen = code.New
	}
	return &service{
		codes:    deps.Codes,
		mailer:   deps.Mailer,
		codeTTL:  deps.CodeTTL,
		cooldown: deps.Cooldown,
		generate: gen,
	}
}

func (s *service) RequestCode(ctx context.Context, purpose domain.Purpose, identifier string) error {
	if !purpose.Valid() {
		return fmt.Errorf("purpose %q: %w", purpose, domain.ErrBadRequest)
	}
	identifier = domain.NormalizeEmail(identifier)

	ok, err := s.codes.AcquireSendSlot(ctx, purpose, identifier, s.cooldown)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrThrottled
	}

	c, err := s.generate()
	if err != nil {
		s.release(ctx, purpose, identifier)
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.codes.Put(ctx, purpose, identifier, c, s.codeTTL); err != nil {
		s.release(ctx, purpose, identifier)
		return err
	}

	subject, body := message(purpose, c, s.codeTTL)
	// The code and throttle flag stay in place on mail failure; the caller
	// waits out the cooldown before retrying.
	if err := s.mailer.SendEmail(ctx, identifier, subject, body); err != nil {
		slog.Warn("verification mail failed", "purpose", purpose, "to", identifier, "err", err)
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}
	return nil
}

func (s *service) Redeem(ctx context.Context, purpose domain.Purpose, identifier, submitted string) error {
	identifier = domain.NormalizeEmail(identifier)

	stored, err := s.codes.Lookup(ctx, purpose, identifier)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrCodeExpired
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return domain.ErrCodeMismatch
	}

	consumed, err := s.codes.ConsumeIfEqual(ctx, purpose, identifier, stored)
	if err != nil {
		return err
	}
	if !consumed {
		// Lost a race with another redeem or a fresh RequestCode.
		return domain.ErrCodeExpired
	}
	return nil
}

func (s *service) release(ctx context.Context, purpose domain.Purpose, identifier string) {
	if err := s.codes.ReleaseSendSlot(ctx, purpose, identifier); err != nil {
		slog.Warn("release send slot", "purpose", purpose, "err", err)
	}
}

func message(purpose domain.Purpose, c string, ttl time.Duration) (subject, body string) {
	minutes := int(ttl / time.Minute)
	switch purpose {
	case domain.PurposeVerifyEmail:
		return "Confirm your email address",
			fmt.Sprintf("Your email confirmation code is %s. It expires in %d minutes.", c, minutes)
	default:
		return "Your registration code",
			fmt.Sprintf("Your registration code is %s. It expires in %d minutes.", c, minutes)
	}
}
