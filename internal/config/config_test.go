package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "TYPING_DELAY_MIN", "TYPING_DELAY_MAX", "CHAT_STALE_RESPONSES", "NATS_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, time.Second, cfg.TypingDelayMin)
	assert.Equal(t, 2*time.Second, cfg.TypingDelayMax)
	assert.Equal(t, "deliver", cfg.StaleResponses)
	assert.Empty(t, cfg.NATSURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TYPING_DELAY_MIN", "10ms")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.eduworld.edu, ,https://admin.eduworld.edu")
	t.Setenv("CHAT_STALE_RESPONSES", "drop")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 10*time.Millisecond, cfg.TypingDelayMin)
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, []string{"https://portal.eduworld.edu", "https://admin.eduworld.edu"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "drop", cfg.StaleResponses)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "many")
	t.Setenv("JWT_EXPIRATION", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 120, cfg.RateLimitRequests)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoad_NonPositivePeriodsFallBack(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"zero", "0s"},
		{"negative", "-5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CHAT_SESSION_SWEEP_PERIOD", tt.value)
			t.Setenv("RATE_LIMIT_WINDOW", tt.value)

			cfg := Load()

			assert.Equal(t, time.Minute, cfg.SessionSweepPeriod)
			assert.Equal(t, time.Minute, cfg.RateLimitWindow)
		})
	}
}
