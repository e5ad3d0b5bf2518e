package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port            int
	JWTSecret       string
	DatabaseURL     string
	CORSOrigins     []string
	GumroadSellerID string
	TrialDays       int
	GroqAPIKey      string
	GroqModel       string
	LogLevel        string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, _ := strconv.Atoi(getEnv("PORT", "4000"))

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	trialDays, err := strconv.Atoi(getEnv("TRIAL_DAYS", "14"))
	if err != nil || trialDays < 0 {
		return nil, fmt.Errorf("TRIAL_DAYS must be a non-negative integer")
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,https://app.recruiterops.io"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		Port:        port,
		JWTSecret:   jwtSecret,
		DatabaseURL: dbURL,
		CORSOrigins: origins,
		// Empty seller id disables the webhook authenticity check.
		GumroadSellerID: getEnv("GUMROAD_SELLER_ID", ""),
		TrialDays:       trialDays,
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
