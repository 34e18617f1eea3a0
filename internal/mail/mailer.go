// Package mail dispatches the password-reset email. Delivery is a
// collaborator of the auth service: the service only hands over an
// address and a token.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/followmee/crm/internal/config"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// NewMailer selects the SMTP mailer or, in development, the log mailer.
func NewMailer(cfg *config.MailConfig, log *zap.Logger) Mailer {
	if cfg.LogOnly || cfg.Host == "" {
		return &LogMailer{log: log, frontendURL: cfg.FrontendURL}
	}
	return &SMTPMailer{config: cfg, log: log}
}

type SMTPMailer struct {
	config *config.MailConfig
	log    *zap.Logger
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(m.config.FrontendURL, "/"), token)

	var body strings.Builder
	body.WriteString(fmt.Sprintf("From: FollowMee <%s>\r\n", m.config.From))
	body.WriteString(fmt.Sprintf("To: %s\r\n", email))
	body.WriteString("Subject: Reset Your FollowMee Password\r\n")
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	body.WriteString("\r\n")
	body.WriteString("<html><body>")
	body.WriteString("<h2>Reset Your Password</h2>")
	body.WriteString("<p>We received a request to reset your FollowMee account password.</p>")
	body.WriteString(fmt.Sprintf(`<p><a href="%s">Reset Password</a></p>`, resetURL))
	body.WriteString("<p>This link will expire in 1 hour. If you didn't request this, you can safely ignore this email.</p>")
	body.WriteString("</body></html>")

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.config.From, []string{email}, []byte(body.String()))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send password reset mail: %w", err)
		}
		m.log.Info("password reset mail sent", zap.String("email", email))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer writes the reset link to the application log instead of
// sending mail. Development only.
type LogMailer struct {
	log         *zap.Logger
	frontendURL string
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(m.frontendURL, "/"), token)
	m.log.Info("password reset requested",
		zap.String("email", email),
		zap.String("reset_url", resetURL))
	return nil
}
