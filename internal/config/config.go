package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings.
type Config struct {
	Env           string
	TelegramToken string
	OwnerChatID   int64
	DatabaseURL   string
	DigestTime    string
	Location      *time.Location
}

// Load reads configuration from environment variables, after merging a .env
// file from the working directory when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:           getEnv("APP_ENV", "development"),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:   getEnv("DATABASE_URL", "taskflow.db"),
		DigestTime:    getEnv("DIGEST_TIME", "09:00"),
		Location:      time.Local,
	}

	if raw := strings.TrimSpace(os.Getenv("OWNER_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("OWNER_CHAT_ID must be a number: %w", err)
		}
		cfg.OwnerChatID = id
	}

	if tz := strings.TrimSpace(os.Getenv("TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

// ValidateBot checks the settings only the Telegram front-end needs.
func (c Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.OwnerChatID == 0 {
		return fmt.Errorf("OWNER_CHAT_ID is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
