// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/quizdeck/config.yaml",
	"/etc/quizdeck/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     30 * time.Second,
			BaseURL:     "http://localhost:8080",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path:      "/data/quizdeck.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Security: SecurityConfig{
			SecretKey:        "",
			RememberSecret:   "",
			SessionTTL:       24 * time.Hour,
			RememberTTL:      30 * 24 * time.Hour,
			SessionStore:     "badger",
			SessionStorePath: "/data/sessions",
			CookieSecure:     true,
			LoginRateLimit:   10,
		},
		Telemetry: TelemetryConfig{
			DSN:         "",
			MinInterval: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			Path:          "/data/storage",
			MaxUploadSize: 8 << 20, // 8 MB
		},
		Scheduler: SchedulerConfig{
			ImageCleanupInterval: 6 * time.Hour,
			ImageOrphanAge:       24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf config
// paths. Unmapped variables are skipped so unrelated environment
// entries cannot pollute the configuration.
func envTransformFunc(key string) string {
	mappings := map[string]string{
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"base_url":     "server.base_url",
		"cors_origins": "server.cors_origins",

		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		"secret_key":         "security.secret_key",
		"rememberme_secret":  "security.remember_secret",
		"session_ttl":        "security.session_ttl",
		"rememberme_ttl":     "security.remember_ttl",
		"session_store":      "security.session_store",
		"session_store_path": "security.session_store_path",
		"cookie_secure":      "security.cookie_secure",
		"login_rate_limit":   "security.login_rate_limit",

		"telemetry_dsn":          "telemetry.dsn",
		"telemetry_min_interval": "telemetry.min_interval",

		"storage_path":    "storage.path",
		"max_upload_size": "storage.max_upload_size",

		"image_cleanup_interval": "scheduler.image_cleanup_interval",
		"image_orphan_age":       "scheduler.image_orphan_age",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := mappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
