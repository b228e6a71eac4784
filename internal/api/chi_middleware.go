// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/pawtrail/pawtrail/internal/config"
)

// ChiMiddleware provides Chi-compatible middleware factories built from
// production-hardened implementations in the Chi ecosystem.
type ChiMiddleware struct {
	cors              func(http.Handler) http.Handler
	rateLimitReqs     int
	rateLimitWindow   time.Duration
	rateLimitDisabled bool
}

// NewChiMiddleware builds the middleware factory from security
// configuration.
func NewChiMiddleware(cfg *config.SecurityConfig) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return &ChiMiddleware{
		cors:              corsHandler,
		rateLimitReqs:     cfg.RateLimitReqs,
		rateLimitWindow:   cfg.RateLimitWindow,
		rateLimitDisabled: cfg.RateLimitDisabled,
	}
}

// CORS returns the CORS middleware. Applied globally so OPTIONS preflight
// requests are handled before routing.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns a per-IP rate limiter for data endpoints.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.rateLimitDisabled {
		return passthrough
	}
	return httprate.LimitByIP(m.rateLimitReqs, m.rateLimitWindow)
}

// RateLimitAuth returns a stricter limiter for the login endpoint to slow
// credential brute forcing: 5 attempts per 5 minutes per IP.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	if m.rateLimitDisabled {
		return passthrough
	}
	return httprate.LimitByIP(5, 5*time.Minute)
}

func passthrough(next http.Handler) http.Handler {
	return next
}
