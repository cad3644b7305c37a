package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, 5*time.Second, cfg.Toast.TTL)
	assert.Equal(t, time.Hour, cfg.Recap.Interval)
	assert.Equal(t, 1_000_000, cfg.GenAI.MaxTextLength)
	assert.Equal(t, []string{"STUDENT", "MEMBER"}, cfg.Auth.SignupRoles)
	assert.False(t, cfg.MailConfigured())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: from-file
recap:
  interval: 30m
toast:
  ttl: 3s
auth:
  signup_roles: [STUDENT]
`)
	t.Setenv("RECAP_INTERVAL", "10m")
	t.Setenv("AUTH_SIGNUP_ROLES", "STUDENT, MEMBER ,ADMIN")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 10*time.Minute, cfg.Recap.Interval)
	assert.Equal(t, 3*time.Second, cfg.Toast.TTL)
	assert.Equal(t, []string{"STUDENT", "MEMBER", "ADMIN"}, cfg.Auth.SignupRoles)
	assert.True(t, cfg.MailConfigured())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "missing secret", body: "server:\n  port: \"9090\"\n"},
		{name: "unknown role", body: "jwt:\n  secret: s\nauth:\n  signup_roles: [GUEST]\n"},
		{name: "origin without scheme", body: "jwt:\n  secret: s\nserver:\n  allowed_origins: [localhost:3000]\n"},
		{name: "zero top n", body: "jwt:\n  secret: s\nrecap:\n  top_n: 0\n"},
		{name: "bad env duration", body: "jwt:\n  secret: s\n", env: map[string]string{"TOAST_TTL": "soon"}},
		{name: "bad env int", body: "jwt:\n  secret: s\n", env: map[string]string{"AUTH_BCRYPT_COST": "high"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
