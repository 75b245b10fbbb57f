package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port           int
	Environment    string
	ServiceName    string
	Version        string
	LogLevel       string
	LogFormat      string
	LogDir         string
	APIKey         string
	TrustedProxies []string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	CatalogPath string // JSON catalog of products and varieties

	// Planning parameters
	YieldWindowMonths int     // trailing window for harvest history
	YieldDecayDays    float64 // exponential decay factor for yield weighting
	LowStockPercent   float64 // low-stock threshold, percent of total

	// Scheduling parameters
	TransitionPollInterval time.Duration // due-transition scan interval
	DepletionSweepSpec     string        // cron spec for the depletion sweep
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "dev"),
		ServiceName: getEnv("SERVICE_NAME", "microfarm"),
		Version:     getEnv("VERSION", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		LogDir:      getEnv("LOG_DIR", "logs"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "microfarm"),
		CatalogPath: getEnv("CATALOG_PATH", "configs/catalog.json"),

		APIKey:             getEnv("API_KEY", ""),
		DepletionSweepSpec: getEnv("DEPLETION_SWEEP_SPEC", "0 6 * * *"),
	}

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		for _, p := range strings.Split(proxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, p)
			}
		}
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	cfg.YieldWindowMonths, err = getEnvInt("YIELD_WINDOW_MONTHS", DefaultYieldWindowMonths)
	if err != nil {
		return nil, err
	}

	cfg.YieldDecayDays, err = getEnvFloat("YIELD_DECAY_DAYS", DefaultYieldDecayDays)
	if err != nil {
		return nil, err
	}

	cfg.LowStockPercent, err = getEnvFloat("LOW_STOCK_PERCENT", DefaultLowStockPercent)
	if err != nil {
		return nil, err
	}

	pollSeconds, err := getEnvInt("TRANSITION_POLL_SECONDS", DefaultTransitionPollSeconds)
	if err != nil {
		return nil, err
	}
	cfg.TransitionPollInterval = time.Duration(pollSeconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
