package mail

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/followmee/crm/internal/config"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(cfg *config.AppConfig, log *zap.Logger) Mailer {
					return NewMailer(&cfg.Mail, log)
				},
			),
		),
	)
}
