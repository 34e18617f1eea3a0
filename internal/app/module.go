package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/followmee/crm/internal/audit"
	"github.com/followmee/crm/internal/auth"
	"github.com/followmee/crm/internal/customer"
	"github.com/followmee/crm/internal/database"
	"github.com/followmee/crm/internal/mail"
	"github.com/followmee/crm/internal/migration"
	"github.com/followmee/crm/internal/server"
	"github.com/followmee/crm/internal/user"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(server.LoadConfig),

		// Database
		migration.Module(),
		database.Module(),

		// Domain modules
		audit.NewModule(),
		mail.Module(),
		auth.NewModule(),
		customer.NewModule(),
		user.NewModule(),

		// Server
		fx.Provide(server.NewServer),

		// Start the server
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *server.Server,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			server.FlushSentry()
			return srv.Stop(ctx)
		},
	})
}
