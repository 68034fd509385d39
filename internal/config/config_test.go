package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "./data/reminder.db", cfg.DatabasePath)
	assert.Equal(t, "0 0 6 * * *", cfg.ReminderSchedule)
	assert.Equal(t, 30, cfg.DefaultCreditPeriod)
	assert.Equal(t, 0, cfg.ImportHeaderOffset)
	assert.Equal(t, "whatsapp:+14155238886", cfg.WhatsAppFrom)
	assert.False(t, cfg.DevMode)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_PORT", "9000")
	t.Setenv("DEFAULT_CREDIT_PERIOD", "45")
	t.Setenv("REMINDER_SCHEDULE", "0 30 7 * * *")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 45, cfg.DefaultCreditPeriod)
	assert.Equal(t, "0 30 7 * * *", cfg.ReminderSchedule)
	assert.True(t, cfg.DevMode)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("GO_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "missing database path",
			mutate: func(c *Config) { c.DatabasePath = "" },
			errMsg: "DATABASE_PATH",
		},
		{
			name:   "negative credit period",
			mutate: func(c *Config) { c.DefaultCreditPeriod = -1 },
			errMsg: "DEFAULT_CREDIT_PERIOD",
		},
		{
			name:   "negative header offset",
			mutate: func(c *Config) { c.ImportHeaderOffset = -1 },
			errMsg: "IMPORT_HEADER_OFFSET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
