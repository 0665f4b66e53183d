package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DSN      string
	HTTPHost string
	HTTPPort string

	LogLevel string
	LogJSON  bool

	MergeLocale          string
	MergeAuthorsCanMerge bool

	CORSOrigins []string
}

// Load reads the optional .env files first; variables already present in the
// environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{
		DSN:         os.Getenv("PG_DSN"),
		HTTPHost:    os.Getenv("HTTP_HOST"),
		HTTPPort:    os.Getenv("HTTP_PORT"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogJSON:     strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
		MergeLocale: getEnv("MERGE_LOCALE", "en"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:8080")),
	}

	if raw := os.Getenv("MERGE_AUTHORS_CAN_MERGE"); raw != "" {
		allow, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MERGE_AUTHORS_CAN_MERGE %q: %w", raw, err)
		}
		cfg.MergeAuthorsCanMerge = allow
	}

	if cfg.DSN == "" {
		return nil, errors.New("PG_DSN is not set")
	}
	return cfg, nil
}

func (c *Config) ServerAddress() (string, error) {
	if len(c.HTTPHost) == 0 {
		return "", errors.New("HTTP_HOST is not set")
	}
	if len(c.HTTPPort) == 0 {
		return "", errors.New("HTTP_PORT is not set")
	}
	return net.JoinHostPort(c.HTTPHost, c.HTTPPort), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
