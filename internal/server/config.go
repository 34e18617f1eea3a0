package server

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/followmee/crm/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

func LoadConfig() (*config.AppConfig, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("./config/server")

	// Secrets come from the environment, never from the config file.
	v.SetEnvPrefix("CRM")
	v.AutomaticEnv()
	_ = v.BindEnv("auth.jwt_secret", "CRM_JWT_SECRET")
	_ = v.BindEnv("database.password", "CRM_DB_PASSWORD")
	_ = v.BindEnv("mail.password", "CRM_SMTP_PASSWORD")
	_ = v.BindEnv("sentry.dsn", "CRM_SENTRY_DSN")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg config.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Load environment-specific configurations
	if envSettings := v.GetStringMap(fmt.Sprintf("server.%s", env)); len(envSettings) > 0 {
		if err := v.UnmarshalKey(fmt.Sprintf("server.%s", env), &cfg.Server); err != nil {
			return nil, fmt.Errorf("error unmarshaling env config: %w", err)
		}
	}

	if env == EnvProduction {
		cfg.Auth.SecureCookies = true
	}

	return &cfg, nil
}
