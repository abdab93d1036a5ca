package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", validSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "alumnet", cfg.Issuer)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 7*24*time.Hour, cfg.InvitationTTL)
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, "log", cfg.MailDriver)
	require.Equal(t, 10*time.Second, cfg.MailDispatchTimeout)
	require.Equal(t, 4, cfg.BulkInviteConcurrency)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 5, cfg.RateLimits.Strict.RequestsPerWindow)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", validSecret)
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://alumnet@localhost/alumnet?sslmode=disable")
	t.Setenv("INVITATION_TTL", "48h")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "20")
	t.Setenv("RATELIMIT_STRICT_WINDOW", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, 48*time.Hour, cfg.InvitationTTL)
	require.Equal(t, 20, cfg.RateLimits.Strict.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.RateLimits.Strict.Window)
	// Profiles not named in the environment keep their defaults.
	require.NotZero(t, cfg.RateLimits.Moderate.RequestsPerWindow)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "SESSION_SECRET is required"},
		{"short secret", map[string]string{"SESSION_SECRET": "short"}, "at least 32 bytes"},
		{"unknown database", map[string]string{"SESSION_SECRET": validSecret, "DATABASE_DRIVER": "mysql"}, "DATABASE_DRIVER"},
		{"postgres without url", map[string]string{"SESSION_SECRET": validSecret, "DATABASE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"unknown mail driver", map[string]string{"SESSION_SECRET": validSecret, "MAIL_DRIVER": "pigeon"}, "MAIL_DRIVER"},
		{"resend without key", map[string]string{"SESSION_SECRET": validSecret, "MAIL_DRIVER": "resend"}, "RESEND_API_KEY"},
		{"smtp without host", map[string]string{"SESSION_SECRET": validSecret, "MAIL_DRIVER": "smtp"}, "SMTP_HOST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
