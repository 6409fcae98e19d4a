package http

import (
	"context"

	"github.com/go-api-authsession/internal/application/account"
	"github.com/go-api-authsession/internal/application/auth"
	"github.com/go-api-authsession/internal/application/verification"
	"github.com/go-api-authsession/internal/config"
	"github.com/go-api-authsession/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-api-authsession/internal/infrastructure/jwt"
	redisinfra "github.com/go-api-authsession/internal/infrastructure/redis"
	s3infra "github.com/go-api-authsession/internal/infrastructure/s3"
	"github.com/go-api-authsession/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo  *dynamo.AccountRepo
	SessionStore *redisinfra.SessionStore
	CodeStore    *redisinfra.CodeStore
	AvatarStore  *s3infra.AvatarStore
	Codec        *jwtinfra.Codec
	Mailer       smtp.Mailer
	// Ping checks the key-value store for the readiness check.
	Ping func(ctx context.Context) error
}

// Services are the application services the handlers call.
type Services struct {
	Auth         auth.Service
	Verification verification.Service
	Account      account.Service
}

// NewServices wires the application layer from cfg and deps.
func NewServices(cfg *config.Config, deps *Deps) Services {
	verifySvc := verification.NewService(verification.ServiceDeps{
		Codes:    deps.CodeStore,
		Mailer:   deps.Mailer,
		CodeTTL:  cfg.CodeTTL,
		Cooldown: cfg.SendCooldown,
	})
	return Services{
		Auth: auth.NewService(auth.ServiceDeps{
			Accounts:     deps.AccountRepo,
			Sessions:     deps.SessionStore,
			Codec:        deps.Codec,
			SessionTTL:   cfg.SessionTTL,
			BearerPrefix: cfg.BearerPrefix,
		}),
		Verification: verifySvc,
		Account: account.NewService(account.ServiceDeps{
			Accounts:       deps.AccountRepo,
			Codes:          verifySvc,
			Avatars:        deps.AvatarStore,
			AvatarMaxBytes: cfg.AvatarMaxBytes,
		}),
	}
}
