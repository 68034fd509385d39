package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath        string
	TwilioSID           string
	TwilioAuthToken     string
	TwilioBaseURL       string
	WhatsAppFrom        string
	WhatsAppTo          string
	ReminderSchedule    string // cron spec with seconds field
	DefaultCreditPeriod int    // days, used when an import row references a new client
	ImportHeaderOffset  int    // leading non-data rows to skip in uploaded statements
	LogLevel            string
	Port                int
	DevMode             bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvAsInt("GO_PORT", 8001),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		DatabasePath:        getEnv("DATABASE_PATH", "./data/reminder.db"),
		TwilioSID:           getEnv("TWILIO_SID", ""),
		TwilioAuthToken:     getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioBaseURL:       getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		WhatsAppFrom:        getEnv("WHATSAPP_FROM", "whatsapp:+14155238886"),
		WhatsAppTo:          getEnv("TO_WHATSAPP", ""),
		ReminderSchedule:    getEnv("REMINDER_SCHEDULE", "0 0 6 * * *"), // daily at 06:00
		DefaultCreditPeriod: getEnvAsInt("DEFAULT_CREDIT_PERIOD", 30),
		ImportHeaderOffset:  getEnvAsInt("IMPORT_HEADER_OFFSET", 0),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	if c.DefaultCreditPeriod < 0 {
		return fmt.Errorf("DEFAULT_CREDIT_PERIOD must be non-negative")
	}

	if c.ImportHeaderOffset < 0 {
		return fmt.Errorf("IMPORT_HEADER_OFFSET must be non-negative")
	}

	// Note: Twilio credentials optional - reminders are skipped without them
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
