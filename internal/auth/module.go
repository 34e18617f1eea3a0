package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/followmee/crm/internal/audit"
	"github.com/followmee/crm/internal/config"
	"github.com/followmee/crm/internal/database"
	"github.com/followmee/crm/internal/mail"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(manager *database.Manager) Repository {
					return NewRepository(manager.DB())
				},
			),
			fx.Annotate(
				func() Hasher {
					return NewPasswordHasher()
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig) *TokenIssuer {
					return NewTokenIssuer(&cfg.Auth)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig) *LockoutPolicy {
					return NewLockoutPolicy(&cfg.Auth)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig, log *zap.Logger, repo Repository, hasher Hasher, tokens *TokenIssuer, lockout *LockoutPolicy, recorder audit.Recorder, mailer mail.Mailer) *Service {
					return NewService(&cfg.Auth, log, repo, hasher, tokens, lockout, recorder, mailer)
				},
			),
			fx.Annotate(
				func(svc *Service, cfg *config.AppConfig, log *zap.Logger) *Handler {
					return NewHandler(svc, &cfg.Auth, log)
				},
			),
			fx.Annotate(
				func(tokens *TokenIssuer) *Middleware {
					return NewMiddleware(tokens)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig) *LoginRateLimiter {
					return NewLoginRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
				},
			),
		),
	)
}
