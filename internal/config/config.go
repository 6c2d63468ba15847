// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Addr             string        `yaml:"addr"`
	DatabaseURL      string        `yaml:"database_url"`
	LogLevel         string        `yaml:"log_level"`
	LogJSON          bool          `yaml:"log_json"`
	ImportMaxBytes   int64         `yaml:"import_max_bytes"`
	ImportRateLimit  int           `yaml:"import_rate_limit"`
	ImportRateWindow time.Duration `yaml:"import_rate_window"`
}

func Default() Config {
	return Config{
		Addr:             ":8080",
		DatabaseURL:      "postgres://postgres:postgres@db:5432/trelloimport?sslmode=disable",
		LogLevel:         "info",
		LogJSON:          true,
		ImportMaxBytes:   32 << 20,
		ImportRateLimit:  10,
		ImportRateWindow: time.Minute,
	}
}

// Load reads the file named by CONFIG_FILE (when set) over the defaults and
// then applies environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if path := Getenv("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Addr = Getenv("ADDR", cfg.Addr)
	cfg.DatabaseURL = Getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = Getenv("LOG_LEVEL", cfg.LogLevel)
	if v := Getenv("LOG_JSON", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_JSON: %w", err)
		}
		cfg.LogJSON = b
	}
	if v := Getenv("IMPORT_MAX_BYTES", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("IMPORT_MAX_BYTES: %w", err)
		}
		cfg.ImportMaxBytes = n
	}
	if v := Getenv("IMPORT_RATE_LIMIT", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IMPORT_RATE_LIMIT: %w", err)
		}
		cfg.ImportRateLimit = n
	}
	if v := Getenv("IMPORT_RATE_WINDOW", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IMPORT_RATE_WINDOW: %w", err)
		}
		cfg.ImportRateWindow = d
	}
	return nil
}

// Getenv returns the value of key, or def when it is unset or empty.
func Getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
