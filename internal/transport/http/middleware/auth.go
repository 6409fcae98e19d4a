package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-api-authsession/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// Authenticator resolves a raw Authorization header value to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.Account, error)
}

// Authenticate resolves the bearer token on every request and records the
// principal for the Authed gate. It never rejects: a missing, invalid or
// superseded token, a store outage, or a panic inside the authenticator all
// leave the request unauthenticated and continue down the chain.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			if p := resolve(r.Context(), a, raw); p != nil {
				r = r.WithContext(context.WithValue(r.Context(), principalKey, p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolve(ctx context.Context, a Authenticator, raw string) (p *domain.Account) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("authenticate panicked", "panic", rec)
			p = nil
		}
	}()
	p, err := a.Authenticate(ctx, raw)
	if err == nil {
		return p
	}
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		slog.Warn("session check unavailable", "err", err)
	case errors.Is(err, domain.ErrNoToken):
	default:
		slog.Info("request unauthenticated", "reason", err)
	}
	return nil
}

// principalFrom is read only by Authed; handlers receive the principal as an argument.
func principalFrom(ctx context.Context) (*domain.Account, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Account)
	return p, ok && p != nil
}
