package http

import (
	"context"
	"net/http"

	"github.com/go-api-authsession/internal/config"
	"github.com/go-api-authsession/internal/transport/http/handler"
	appmiddleware "github.com/go-api-authsession/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	return newRouter(cfg, NewServices(cfg, deps), deps.Ping)
}

func newRouter(cfg *config.Config, svc Services, ping func(ctx context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	// Runs on every route and never rejects; Authed does the gating.
	r.Use(appmiddleware.Authenticate(svc.Auth))

	// 5 requests/second, burst of 10, applied to login and code-sending endpoints.
	// Validate has already rejected malformed proxy entries.
	proxies, _ := cfg.ProxyPrefixes()
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10, proxies...)

	healthH := handler.NewHealthHandler(ping)
	authH := handler.NewAuthHandler(svc.Auth, svc.Account)
	userH := handler.NewUserHandler(svc.Account, cfg.AvatarMaxBytes)
	authed := appmiddleware.Authed

	r.Route("/api", func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Post("/auth/logout", authH.Logout)
		r.With(sensitiveRL.Limit).Get("/auth/send-register-code", authH.SendRegisterCode)
		r.Post("/auth/register", authH.Register)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Route("/user", func(r chi.Router) {
			r.Get("/profile", authed(userH.GetProfile))
			r.Put("/profile", authed(userH.UpdateProfile))
			r.Get("/info", authed(userH.Info))
			r.Put("/password", authed(userH.ChangePassword))
			r.Post("/avatar", authed(userH.UploadAvatar))
			r.With(sensitiveRL.Limit).Get("/email/send-verify", authed(userH.SendVerifyEmail))
			r.Post("/email/verify", authed(userH.VerifyEmail))
		})
	})

	return r
}
