package config

// Planning defaults
const (
	DefaultYieldWindowMonths = 6
	DefaultYieldDecayDays    = 30.0
	DefaultLowStockPercent   = 15.0
)

// Scheduling defaults
const (
	DefaultTransitionPollSeconds = 60
)

// Validation bounds
const (
	MinPort = 1
	MaxPort = 65535
)
