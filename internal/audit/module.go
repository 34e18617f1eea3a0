package audit

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/followmee/crm/internal/database"
)

// NewModule returns the audit module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(manager *database.Manager, log *zap.Logger) Recorder {
					return NewStore(manager.DB(), log)
				},
			),
			fx.Annotate(
				func(recorder Recorder, log *zap.Logger) *Handler {
					return NewHandler(recorder, log)
				},
			),
		),
	)
}
