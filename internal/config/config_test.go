package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_TTL", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("BASE_URL", "http://localhost:3000/")

	cfg := Load()
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 10*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.SMTPTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")
	t.Setenv("SMTP_TIMEOUT", "3s")

	cfg := Load()
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 3*time.Second, cfg.SMTPTimeout)
}

func TestValidate(t *testing.T) {
	cfg := &Config{JWTSecret: "s", BcryptCost: 12, MailDriver: "log"}
	require.NoError(t, cfg.Validate())

	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "s"
	cfg.MailDriver = "pigeon"
	assert.Error(t, cfg.Validate())

	cfg.MailDriver = "smtp"
	cfg.BcryptCost = 2
	assert.Error(t, cfg.Validate())
}
