// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	FirebaseProjectID    string
	FirebaseCredentials  string
	GeminiAPIKey         string
	UserID               string
	LogLevel             string
	AIPreviewDebounce    time.Duration
	NotificationsEnabled bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		UserID:              os.Getenv("USER_ID"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
	}

	cfg.NotificationsEnabled = os.Getenv("NOTIFICATIONS_ENABLED") != "false"

	cfg.AIPreviewDebounce = 800 * time.Millisecond
	if msStr := os.Getenv("AI_PREVIEW_DEBOUNCE_MS"); msStr != "" {
		if ms, err := strconv.Atoi(msStr); err == nil && ms > 0 {
			cfg.AIPreviewDebounce = time.Duration(ms) * time.Millisecond
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.UserID == "" {
		errs = append(errs, "USER_ID is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
