// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a config that passes Validate, for tests to break
// one field at a time.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = strings.Repeat("s", 32)
	cfg.Security.AdminUsername = "admin"
	cfg.Security.AdminPassword = "correct-horse"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid jwt config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid none mode without credentials",
			mutate: func(c *Config) {
				c.Security.AuthMode = AuthModeNone
				c.Security.JWTSecret = ""
				c.Security.AdminUsername = ""
				c.Security.AdminPassword = ""
			},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "out of range",
		},
		{
			name:    "base path without leading slash",
			mutate:  func(c *Config) { c.Server.BasePath = "api" },
			wantErr: "must start with /",
		},
		{
			name:    "missing storage path",
			mutate:  func(c *Config) { c.Storage.Path = "" },
			wantErr: "storage path",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "short" },
			wantErr: "JWT_SECRET",
		},
		{
			name: "jwt mode without admin credentials",
			mutate: func(c *Config) {
				c.Security.AdminUsername = ""
			},
			wantErr: "ADMIN_USERNAME",
		},
		{
			name:    "short admin password",
			mutate:  func(c *Config) { c.Security.AdminPassword = "tiny" },
			wantErr: "at least 8 characters",
		},
		{
			name: "none mode without fallback tenant",
			mutate: func(c *Config) {
				c.Security.AuthMode = AuthModeNone
				c.Security.FallbackTenant = ""
			},
			wantErr: "fallback tenant",
		},
		{
			name:    "unknown auth mode",
			mutate:  func(c *Config) { c.Security.AuthMode = "oauth" },
			wantErr: "not supported",
		},
		{
			name: "rate limit window must be positive",
			mutate: func(c *Config) {
				c.Security.RateLimitWindow = 0
			},
			wantErr: "rate limit window",
		},
		{
			name: "rate limit checks skipped when disabled",
			mutate: func(c *Config) {
				c.Security.RateLimitDisabled = true
				c.Security.RateLimitReqs = 0
				c.Security.RateLimitWindow = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_PATH", t.TempDir()+"/store.json")
	t.Setenv("AUTH_MODE", "none")
	t.Setenv("FALLBACK_TENANT", "default")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REQUEST_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Server.Timeout)
	}
	if cfg.Security.AuthMode != AuthModeNone {
		t.Errorf("AuthMode = %q, want none", cfg.Security.AuthMode)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected validation error for short JWT secret")
	}
}

func TestDefaultAddr(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.Server.Addr(); got != "0.0.0.0:8420" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8420", got)
	}
}
