// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

// Package config loads and validates Pawtrail configuration using Koanf v2
// with layered sources: built-in defaults, an optional YAML config file,
// and environment variables (highest priority).
package config

import (
	"fmt"
	"strings"
	"time"
)

// Authentication modes.
const (
	// AuthModeJWT requires a Bearer token whose subject names the tenant.
	AuthModeJWT = "jwt"

	// AuthModeNone disables credential verification: every request maps to
	// the configured fallback tenant. This is an explicit degrade policy,
	// threaded through configuration rather than flipped at runtime.
	AuthModeNone = "none"
)

// Config is the root configuration for the Pawtrail server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	BasePath string        `koanf:"base_path"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig holds the durable store location.
type StorageConfig struct {
	// Path is the single JSON file holding all tenants' data.
	Path string `koanf:"path"`
}

// SecurityConfig holds authentication and request-protection settings.
type SecurityConfig struct {
	AuthMode       string        `koanf:"auth_mode"`
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	AdminUsername  string        `koanf:"admin_username"`
	AdminPassword  string        `koanf:"admin_password"`

	// FallbackTenant is the shared tenant identifier used for every request
	// when AuthMode is "none".
	FallbackTenant string `koanf:"fallback_tenant"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range (1-65535)", c.Server.Port)
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("base path %q must start with /", c.Server.BasePath)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	switch c.Security.AuthMode {
	case AuthModeJWT:
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when auth mode is %q", AuthModeJWT)
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required when auth mode is %q", AuthModeJWT)
		}
		if len(c.Security.AdminPassword) < 8 {
			return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
		}
	case AuthModeNone:
		if c.Security.FallbackTenant == "" {
			return fmt.Errorf("fallback tenant is required when auth mode is %q", AuthModeNone)
		}
	default:
		return fmt.Errorf("auth mode %q is not supported (want %q or %q)", c.Security.AuthMode, AuthModeJWT, AuthModeNone)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("rate limit requests must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}

	return nil
}
