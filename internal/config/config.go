// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads and validates application configuration from
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"SHILOH_DB_PATH" envDefault:"./data/shiloh.db"`
	SessionSecret string `env:"SHILOH_SESSION_SECRET,required"`
	ServerHost    string `env:"SHILOH_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"SHILOH_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"SHILOH_ENV" envDefault:"development"`
	LogLevel      string `env:"SHILOH_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"SHILOH_UPLOADS_DIR" envDefault:"./uploads"`
	BaseURL       string `env:"SHILOH_BASE_URL" envDefault:"http://localhost:8080"`

	// Session configuration
	SessionLifetimeHours int `env:"SHILOH_SESSION_LIFETIME_HOURS" envDefault:"720"` // "remember me" lifetime

	// Cache configuration
	RedisURL     string `env:"SHILOH_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"SHILOH_CACHE_PREFIX" envDefault:"shiloh:"` // Redis key prefix
	CacheTTL     int    `env:"SHILOH_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"SHILOH_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// SMTP configuration for contact notifications
	SMTPHost     string `env:"SHILOH_SMTP_HOST"`
	SMTPPort     int    `env:"SHILOH_SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SHILOH_SMTP_USER"`
	SMTPPassword string `env:"SHILOH_SMTP_PASSWORD"`
	SMTPFrom     string `env:"SHILOH_SMTP_FROM"`
	ContactInbox string `env:"SHILOH_CONTACT_INBOX"` // where contact notifications are sent

	// GeoIP configuration
	GeoIPDBPath string `env:"SHILOH_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Audit retention
	AuditRetentionDays int `env:"SHILOH_AUDIT_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"SHILOH_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MailEnabled returns true if SMTP notifications are configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.ContactInbox != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("SHILOH_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("SHILOH_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("SHILOH_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
