// Package config loads tmsctl configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.rahtash-tms.ir"
	defaultTimeout = 30 * time.Second
)

// Config holds runtime configuration for the CLI and SDK wiring.
type Config struct {
	BaseURL  string
	LogLevel string
	Timeout  time.Duration

	// RequestsPerSecond throttles outbound API calls. Zero disables it.
	RequestsPerSecond float64

	AllowCLIConfigToken bool
	CLIConfigPath       string
}

// Load returns configuration parsed from environment variables.
func Load() (Config, error) {
	cfg := Config{
		BaseURL:             strings.TrimRight(strings.TrimSpace(envOrDefault("TMS_BASE_URL", defaultBaseURL)), "/"),
		LogLevel:            strings.ToLower(strings.TrimSpace(envOrDefault("TMS_LOG_LEVEL", "info"))),
		AllowCLIConfigToken: envBool("TMS_ALLOW_CLI_CONFIG_TOKEN", true),
		CLIConfigPath:       strings.TrimSpace(os.Getenv("TMS_CLI_CONFIG_PATH")),
	}

	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("TMS_BASE_URL must not be empty")
	}

	timeout, err := envDuration("TMS_TIMEOUT", defaultTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.Timeout = timeout

	rps, err := envFloat("TMS_RATE_LIMIT", 0)
	if err != nil {
		return Config{}, err
	}
	if rps < 0 {
		return Config{}, fmt.Errorf("TMS_RATE_LIMIT must not be negative")
	}
	cfg.RequestsPerSecond = rps

	return cfg, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		switch strings.ToLower(value) {
		case "yes", "on":
			return true
		case "no", "off":
			return false
		default:
			return defaultVal
		}
	}
	return parsed
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultVal, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

func envFloat(key string, defaultVal float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}
