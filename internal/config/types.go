package config

import "time"

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	ResetTokenDuration   time.Duration `mapstructure:"reset_token_duration"`
	LockoutThreshold     int           `mapstructure:"lockout_threshold"`
	AttemptWindow        time.Duration `mapstructure:"attempt_window"`
	LockoutDuration      time.Duration `mapstructure:"lockout_duration"`
	LoginRateLimit       int           `mapstructure:"login_rate_limit"`
	LoginRateWindow      time.Duration `mapstructure:"login_rate_window"`
	SecureCookies        bool          `mapstructure:"secure_cookies"`
}

type MailConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	From        string `mapstructure:"from"`
	FrontendURL string `mapstructure:"frontend_url"`
	// LogOnly routes reset mails to the application log instead of SMTP.
	LogOnly bool `mapstructure:"log_only"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
}
