package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix is prepended to every variable name, e.g. LEDGER_CATALOG_FILE
const envPrefix = "LEDGER"

// Config holds all configuration for the ledger
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"ledger"`
	CatalogFile string `envconfig:"CATALOG_FILE" default:"inventory.csv"`
	SalesFile   string `envconfig:"SALES_FILE" default:"sales.csv"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFile     string `envconfig:"LOG_FILE"`
	MetricsFile string `envconfig:"METRICS_FILE"`
	TopSellers  int    `envconfig:"TOP_SELLERS" default:"3"`
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// A missing .env file is fine; the defaults cover every setting.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s_LOG_LEVEL: unknown level %q", envPrefix, c.LogLevel)
	}
	if strings.TrimSpace(c.CatalogFile) == "" || strings.TrimSpace(c.SalesFile) == "" {
		return fmt.Errorf("%s_CATALOG_FILE and %s_SALES_FILE must not be empty", envPrefix, envPrefix)
	}
	if c.CatalogFile == c.SalesFile {
		return fmt.Errorf("catalog and sales must use different files, both are %q", c.CatalogFile)
	}
	if c.TopSellers < 1 {
		return fmt.Errorf("%s_TOP_SELLERS must be at least 1, got %d", envPrefix, c.TopSellers)
	}
	return nil
}
