package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DefaultYieldWindowMonths, cfg.YieldWindowMonths)
	assert.Equal(t, DefaultYieldDecayDays, cfg.YieldDecayDays)
	assert.Equal(t, DefaultLowStockPercent, cfg.LowStockPercent)
	assert.Equal(t, time.Duration(DefaultTransitionPollSeconds)*time.Second, cfg.TransitionPollInterval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "PORT", "not-a-port"},
		{"port out of range", "PORT", "99999"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"negative decay", "YIELD_DECAY_DAYS", "-1"},
		{"threshold above 100", "LOW_STOCK_PERCENT", "150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{
		DBUser:     "grower",
		DBPassword: "seeds",
		DBHost:     "db",
		DBPort:     "5432",
		DBName:     "microfarm",
	}
	assert.Equal(t, "postgres://grower:seeds@db:5432/microfarm?sslmode=disable", cfg.GetDBConnString())
}
