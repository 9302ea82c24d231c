package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds delivery-service configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	PublicAPIBase      string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		PublicAPIBase:      getEnv("PUBLIC_API_BASE", ""),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
		ReadTimeout:        getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:       getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:        getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
