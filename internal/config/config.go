// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// NATS settings; an empty URL keeps users in memory and disables the
	// chat event feed.
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings
	JWTSecret     string
	JWTExpiration time.Duration

	// Rate limiting
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitRequests int

	// CORS
	CORSAllowedOrigins []string

	// Chat assistant
	KnowledgeFile      string
	TypingDelayMin     time.Duration
	TypingDelayMax     time.Duration
	StaleResponses     string
	SessionIdleTTL     time.Duration
	SessionSweepPeriod time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; variables already set
// in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret:     getEnv("JWT_SECRET", "development-secret-change-in-production"),
		JWTExpiration: getDurationEnv("JWT_EXPIRATION", 24*time.Hour),

		// Rate limiting
		RateLimitRequests:     getIntEnv("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:       getPositiveDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		AuthRateLimitRequests: getIntEnv("AUTH_RATE_LIMIT_REQUESTS", 10),

		// CORS
		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"https://*", "http://*"}),

		// Chat assistant
		KnowledgeFile:      getEnv("KNOWLEDGE_FILE", ""),
		TypingDelayMin:     getDurationEnv("TYPING_DELAY_MIN", time.Second),
		TypingDelayMax:     getDurationEnv("TYPING_DELAY_MAX", 2*time.Second),
		StaleResponses:     getEnv("CHAT_STALE_RESPONSES", "deliver"),
		SessionIdleTTL:     getDurationEnv("CHAT_SESSION_IDLE_TTL", 30*time.Minute),
		SessionSweepPeriod: getPositiveDurationEnv("CHAT_SESSION_SWEEP_PERIOD", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getPositiveDurationEnv is getDurationEnv for settings that feed tickers
// and windows, where zero or negative values are invalid.
func getPositiveDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if d := getDurationEnv(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
