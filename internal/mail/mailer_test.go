package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/followmee/crm/internal/config"
)

func TestNewMailer_Selection(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name    string
		cfg     config.MailConfig
		wantLog bool
	}{
		{
			name:    "log only flag",
			cfg:     config.MailConfig{LogOnly: true, Host: "smtp.example.com"},
			wantLog: true,
		},
		{
			name:    "no host configured",
			cfg:     config.MailConfig{},
			wantLog: true,
		},
		{
			name:    "smtp configured",
			cfg:     config.MailConfig{Host: "smtp.example.com", Port: 587},
			wantLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := NewMailer(&tt.cfg, logger)
			_, isLog := mailer.(*LogMailer)
			assert.Equal(t, tt.wantLog, isLog)
		})
	}
}

func TestLogMailer_SendPasswordReset(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mailer := &LogMailer{
		log:         zap.New(core),
		frontendURL: "http://localhost:5173/",
	}

	err := mailer.SendPasswordReset(context.Background(), "ana@example.com", "tok-123")
	require.NoError(t, err)

	entries := logs.FilterMessage("password reset requested").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "ana@example.com", fields["email"])
	assert.Equal(t, "http://localhost:5173/reset-password?token=tok-123", fields["reset_url"])
}
