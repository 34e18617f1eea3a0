package user

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/followmee/crm/internal/auth"
	"github.com/followmee/crm/internal/database"
)

// NewModule returns the user administration module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(manager *database.Manager) Repository {
					return NewRepository(manager.DB())
				},
			),
			fx.Annotate(
				func(log *zap.Logger, repo Repository, hasher auth.Hasher) *Service {
					return NewService(log, repo, hasher)
				},
			),
			fx.Annotate(
				func(svc *Service, log *zap.Logger) *Handler {
					return NewHandler(svc, log)
				},
			),
		),
	)
}
