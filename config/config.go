package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	Port        string
	DBPath      string
	RedisAddr   string
	CORSOrigins string

	// Session expiry policy
	SessionTTL    time.Duration
	SweepInterval time.Duration

	// Per-connection send-message rate limiting
	MessageRate  int // tokens per second
	MessageBurst int
}

// Load reads configuration from environment variables. A .env file is
// loaded first if present, for development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "5000"),
		DBPath:        getEnv("DB_PATH", "mernverse.db"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		SessionTTL:    getDuration("SESSION_TTL", 30*24*time.Hour),
		SweepInterval: getDuration("SESSION_SWEEP_INTERVAL", time.Hour),
		MessageRate:   10,
		MessageBurst:  20,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
