// Package config loads process configuration from the environment, with an
// optional .env file in the working directory.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIBaseURL = "http://localhost:5000/api"

	// The service trains a model for every request, so responses are slow.
	DefaultTimeoutMs = 120000
)

type Config struct {
	APIBaseURL  string
	TimeoutMs   int
	CatalogFile string
	LogLevel    string
	ConfigPath  string
	FontFile    string
}

// Load reads .env (if present) and the JAJAERO_* environment variables.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (Config, error) {
	cfg := Config{
		APIBaseURL:  strings.TrimRight(getEnv("JAJAERO_API_URL", DefaultAPIBaseURL), "/"),
		TimeoutMs:   getEnvInt("JAJAERO_TIMEOUT_MS", DefaultTimeoutMs),
		CatalogFile: strings.TrimSpace(getEnv("JAJAERO_CATALOG_FILE", "")),
		LogLevel:    getEnv("JAJAERO_LOG_LEVEL", "info"),
		ConfigPath:  strings.TrimSpace(getEnv("JAJAERO_CONFIG_PATH", "")),
		FontFile:    strings.TrimSpace(getEnv("JAJAERO_FONT_FILE", "")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the service address is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid JAJAERO_API_URL %q: %w", c.APIBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid JAJAERO_API_URL %q: scheme must be http or https", c.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid JAJAERO_API_URL %q: missing host", c.APIBaseURL)
	}
	return nil
}

// Timeout returns the transport timeout for service requests.
func (c Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return time.Duration(DefaultTimeoutMs) * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
