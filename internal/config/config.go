package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	Port        string
	Environment string

	// CORS allow-list for the frontend(s)
	AllowedOrigins []string

	// Defaults for the /top flip ranking
	FlipCapital     float64
	FlipMarketShare float64
}

func Load() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS",
			"http://localhost:3000")),

		FlipCapital:     getFloat("FLIP_CAPITAL", 1_000_000_000),
		FlipMarketShare: getFloat("FLIP_MARKET_SHARE", 0.10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
