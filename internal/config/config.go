// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package config loads and validates the process-wide QuizDeck
// configuration. Configuration is layered via Koanf v2 (highest
// priority wins): environment variables > optional YAML file >
// built-in defaults. The resulting Config is immutable after Load.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration object, constructed once at boot and
// injected into every component.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Storage   StorageConfig   `koanf:"storage"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
	// BaseURL is the externally visible URL, used in the sitemap.
	BaseURL string `koanf:"base_url"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// SecurityConfig holds session and remember-me authentication settings.
type SecurityConfig struct {
	// SecretKey signs session cookies. Required, 32+ characters.
	SecretKey string `koanf:"secret_key"`

	// RememberSecret signs remember-me JWTs. Falls back to SecretKey.
	RememberSecret string `koanf:"remember_secret"`

	SessionTTL  time.Duration `koanf:"session_ttl"`
	RememberTTL time.Duration `koanf:"remember_ttl"`

	// SessionStore selects the backing store: badger or memory.
	SessionStore     string `koanf:"session_store"`
	SessionStorePath string `koanf:"session_store_path"`

	CookieSecure bool `koanf:"cookie_secure"`

	// LoginRateLimit caps login attempts per client per minute.
	LoginRateLimit int `koanf:"login_rate_limit"`
}

// TelemetryConfig holds the optional error-reporting sink.
type TelemetryConfig struct {
	// DSN is the HTTP endpoint receiving exception envelopes and the
	// startup ping. Empty disables telemetry entirely.
	DSN string `koanf:"dsn"`

	// MinInterval throttles capture delivery.
	MinInterval time.Duration `koanf:"min_interval"`
}

// StorageConfig holds the local file store settings.
type StorageConfig struct {
	Path          string `koanf:"path"`
	MaxUploadSize int64  `koanf:"max_upload_size"`
}

// SchedulerConfig holds cyclic background-job settings.
type SchedulerConfig struct {
	// ImageCleanupInterval is the period of the orphaned editor-image
	// cleanup job.
	ImageCleanupInterval time.Duration `koanf:"image_cleanup_interval"`

	// ImageOrphanAge is how old an unattached editor image must be
	// before cleanup removes it.
	ImageOrphanAge time.Duration `koanf:"image_orphan_age"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for fatal misconfiguration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Security.SecretKey == "" {
		return fmt.Errorf("security.secret_key is required (set SECRET_KEY)")
	}
	if len(c.Security.SecretKey) < 32 {
		return fmt.Errorf("security.secret_key must be at least 32 characters")
	}
	switch c.Security.SessionStore {
	case "badger", "memory":
	default:
		return fmt.Errorf("security.session_store must be badger or memory, got %q", c.Security.SessionStore)
	}
	if c.Security.SessionStore == "badger" && c.Security.SessionStorePath == "" {
		return fmt.Errorf("security.session_store_path is required with the badger session store")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Scheduler.ImageCleanupInterval <= 0 {
		return fmt.Errorf("scheduler.image_cleanup_interval must be positive")
	}
	return nil
}

// RememberSecretKey returns the remember-me signing secret, falling
// back to the session secret when none is configured.
func (c *Config) RememberSecretKey() string {
	if c.Security.RememberSecret != "" {
		return c.Security.RememberSecret
	}
	return c.Security.SecretKey
}

// TelemetryEnabled reports whether a telemetry DSN is configured.
func (c *Config) TelemetryEnabled() bool {
	return c.Telemetry.DSN != ""
}
