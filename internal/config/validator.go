package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// configRules mirrors Config with validation tags so bad values fail at
// startup instead of surfacing mid-plan.
type configRules struct {
	Port              int     `validate:"min=1,max=65535"`
	Environment       string  `validate:"oneof=dev development staging prod test"`
	LogLevel          string  `validate:"oneof=debug info warn warning error"`
	LogFormat         string  `validate:"oneof=json text"`
	DBHost            string  `validate:"required"`
	DBName            string  `validate:"required"`
	YieldWindowMonths int     `validate:"min=1"`
	YieldDecayDays    float64 `validate:"gt=0"`
	LowStockPercent   float64 `validate:"gte=0,lte=100"`
}

var validate = validator.New()

// Validate checks the loaded configuration for out-of-range values
func (c *Config) Validate() error {
	rules := configRules{
		Port:              c.Port,
		Environment:       c.Environment,
		LogLevel:          c.LogLevel,
		LogFormat:         c.LogFormat,
		DBHost:            c.DBHost,
		DBName:            c.DBName,
		YieldWindowMonths: c.YieldWindowMonths,
		YieldDecayDays:    c.YieldDecayDays,
		LowStockPercent:   c.LowStockPercent,
	}

	if err := validate.Struct(rules); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.TransitionPollInterval <= 0 {
		return fmt.Errorf("invalid configuration: transition poll interval must be positive")
	}

	return nil
}
