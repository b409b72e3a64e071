package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard.
type Config struct {
	// World Bank provider
	WorldBankBaseURL   string        `mapstructure:"worldbank_base_url"`
	WorldBankPerPage   int           `mapstructure:"worldbank_per_page"`
	WorldBankRateLimit float64       `mapstructure:"worldbank_rate_limit"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Web API listen address
	HTTPAddr string `mapstructure:"http_addr"`

	// Optional sqlite file for summary snapshots
	SnapshotDB string `mapstructure:"snapshot_db"`
}

// Flags returns the command-line flags Load understands.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("econdash", pflag.ContinueOnError)
	fs.String("worldbank-base-url", "", "World Bank API root")
	fs.Int("worldbank-per-page", 0, "points requested per indicator")
	fs.Float64("worldbank-rate-limit", 0, "max provider requests per second (0 = unlimited)")
	fs.Duration("http-timeout", 0, "provider request timeout (0 = client default)")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-file", "", "also append logs to this file")
	fs.String("http-addr", "", "listen address for serve")
	fs.String("snapshot-db", "", "sqlite file used by export")
	return fs
}

// Load reads configuration from defaults, an optional config file, environment
// variables and flags, in increasing order of precedence. flags may be nil.
//
// Environment variables:
//   - WORLDBANK_BASE_URL (optional, defaults to production)
//   - WORLDBANK_PER_PAGE (optional, defaults to 200)
//   - WORLDBANK_RATE_LIMIT (optional, requests per second)
//   - HTTP_TIMEOUT (optional, Go duration)
//   - LOG_LEVEL, LOG_FILE
//   - HTTP_ADDR
//   - SNAPSHOT_DB
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("worldbank_base_url", "https://api.worldbank.org/v2")
	v.SetDefault("worldbank_per_page", 200)
	v.SetDefault("worldbank_rate_limit", 0)
	v.SetDefault("http_timeout", "0s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("http_addr", ":8050")
	v.SetDefault("snapshot_db", "")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.econdash")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, env := range map[string]string{
		"worldbank_base_url":   "WORLDBANK_BASE_URL",
		"worldbank_per_page":   "WORLDBANK_PER_PAGE",
		"worldbank_rate_limit": "WORLDBANK_RATE_LIMIT",
		"http_timeout":         "HTTP_TIMEOUT",
		"log_level":            "LOG_LEVEL",
		"log_file":             "LOG_FILE",
		"http_addr":            "HTTP_ADDR",
		"snapshot_db":          "SNAPSHOT_DB",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if bindErr == nil {
				bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var invalid []string
	if strings.TrimSpace(config.WorldBankBaseURL) == "" {
		invalid = append(invalid, "WORLDBANK_BASE_URL must not be empty")
	}
	if config.WorldBankPerPage <= 0 {
		invalid = append(invalid, "WORLDBANK_PER_PAGE must be positive")
	}
	if config.WorldBankRateLimit < 0 {
		invalid = append(invalid, "WORLDBANK_RATE_LIMIT must not be negative")
	}
	if config.HTTPTimeout < 0 {
		invalid = append(invalid, "HTTP_TIMEOUT must not be negative")
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(invalid, "; "))
	}

	return config, nil
}
