package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/followmee/crm/internal/audit"
	"github.com/followmee/crm/internal/auth"
	"github.com/followmee/crm/internal/config"
	"github.com/followmee/crm/internal/customer"
	"github.com/followmee/crm/internal/user"
)

type Server struct {
	config     *config.AppConfig
	log        *zap.Logger
	httpServer *http.Server
}

type Params struct {
	fx.In

	Config          *config.AppConfig
	Logger          *zap.Logger
	AuthHandler     *auth.Handler
	AuthMiddleware  *auth.Middleware
	LoginLimiter    *auth.LoginRateLimiter
	CustomerHandler *customer.Handler
	UserHandler     *user.Handler
	AuditHandler    *audit.Handler
}

func NewServer(p Params) *Server {
	mux := http.NewServeMux()

	// Public auth endpoints
	mux.HandleFunc("POST /api/auth/register", p.AuthHandler.Register)
	mux.Handle("POST /api/auth/login", p.LoginLimiter.Wrap(http.HandlerFunc(p.AuthHandler.Login)))
	mux.HandleFunc("POST /api/auth/refresh", p.AuthHandler.Refresh)
	mux.HandleFunc("POST /api/auth/forgot-password", p.AuthHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", p.AuthHandler.ResetPassword)

	// Protected auth endpoints
	mux.Handle("GET /api/auth/me", p.AuthMiddleware.Wrap(http.HandlerFunc(p.AuthHandler.CurrentUser)))
	mux.Handle("POST /api/auth/logout", p.AuthMiddleware.Wrap(http.HandlerFunc(p.AuthHandler.Logout)))
	mux.Handle("PUT /api/auth/update-password", p.AuthMiddleware.Wrap(http.HandlerFunc(p.AuthHandler.UpdatePassword)))

	// Customer endpoints
	mux.Handle("GET /api/customers", p.AuthMiddleware.Wrap(http.HandlerFunc(p.CustomerHandler.List)))
	mux.Handle("GET /api/customers/{id}", p.AuthMiddleware.Wrap(http.HandlerFunc(p.CustomerHandler.Get)))
	mux.Handle("POST /api/customers", p.AuthMiddleware.Wrap(http.HandlerFunc(p.CustomerHandler.Create)))
	mux.Handle("PUT /api/customers/{id}", p.AuthMiddleware.Wrap(http.HandlerFunc(p.CustomerHandler.Update)))
	mux.Handle("DELETE /api/customers/{id}", p.AuthMiddleware.Wrap(http.HandlerFunc(p.CustomerHandler.Delete)))

	// User administration endpoints
	mux.Handle("GET /api/users", p.AuthMiddleware.Wrap(http.HandlerFunc(p.UserHandler.List)))
	mux.Handle("GET /api/users/{id}", p.AuthMiddleware.Wrap(http.HandlerFunc(p.UserHandler.Get)))
	mux.Handle("POST /api/users", p.AuthMiddleware.Wrap(http.HandlerFunc(p.UserHandler.Create)))
	mux.Handle("PUT /api/users/{id}", p.AuthMiddleware.Wrap(http.HandlerFunc(p.UserHandler.Update)))
	mux.Handle("DELETE /api/users/{id}", p.AuthMiddleware.Wrap(http.HandlerFunc(p.UserHandler.Delete)))

	// Audit trail
	mux.Handle("GET /api/audit", p.AuthMiddleware.Wrap(http.HandlerFunc(p.AuditHandler.List)))

	var handler http.Handler = mux
	handler = RequestLogging(p.Logger, handler)
	handler = Recover(p.Logger, handler)

	addr := fmt.Sprintf("%s:%s", p.Config.Server.Host, p.Config.Server.Port)

	return &Server{
		config: p.Config,
		log:    p.Logger,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  p.Config.Server.ReadTimeout,
			WriteTimeout: p.Config.Server.WriteTimeout,
		},
	}
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

func serverConfigToField(cfg *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddBool("secure_cookies", cfg.Auth.SecureCookies)
		enc.AddDuration("read_timeout", cfg.Server.ReadTimeout)
		enc.AddDuration("write_timeout", cfg.Server.WriteTimeout)
		return nil
	})
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
