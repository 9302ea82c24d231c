package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_RPS", "5.5")
	t.Setenv("READ_TIMEOUT", "30s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5.5, cfg.RateLimitRPS)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("WRITE_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, 15*time.Second, cfg.WriteTimeout)
}
