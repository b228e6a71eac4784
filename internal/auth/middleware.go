// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/pawtrail/pawtrail/internal/config"
	"github.com/pawtrail/pawtrail/internal/logging"
	"github.com/pawtrail/pawtrail/internal/models"
)

type contextKey string

// tenantKey holds the resolved tenant identifier in the request context.
const tenantKey contextKey = "tenant"

// Middleware resolves a tenant identifier for every request.
//
// In jwt mode the Bearer token's subject is the tenant; requests without a
// valid token are rejected with 401. In none mode every request maps to the
// fallback tenant, which is logged once at construction as the explicit
// degrade policy.
type Middleware struct {
	mode           string
	fallbackTenant string
	jwt            *JWTManager
}

// NewMiddleware builds the tenant-resolving middleware from security
// configuration. jwtManager may be nil when the mode is none.
func NewMiddleware(cfg *config.SecurityConfig, jwtManager *JWTManager) *Middleware {
	if cfg.AuthMode == config.AuthModeNone {
		logging.Warn().
			Str("tenant", cfg.FallbackTenant).
			Msg("Authentication disabled, all requests map to the fallback tenant")
	}
	return &Middleware{
		mode:           cfg.AuthMode,
		fallbackTenant: cfg.FallbackTenant,
		jwt:            jwtManager,
	}
}

// Authenticate resolves the tenant and stores it in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == config.AuthModeNone {
			next.ServeHTTP(w, r.WithContext(ContextWithTenant(r.Context(), m.fallbackTenant)))
			return
		}

		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "Missing bearer token")
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			logging.Debug().Err(err).Msg("Token validation failed")
			unauthorized(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithTenant(r.Context(), claims.Tenant)))
	})
}

// ContextWithTenant returns a context carrying the resolved tenant.
func ContextWithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantKey, tenant)
}

// TenantFromContext returns the resolved tenant identifier, if any.
func TenantFromContext(ctx context.Context) (string, bool) {
	tenant, ok := ctx.Value(tenantKey).(string)
	return tenant, ok && tenant != ""
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// unauthorized writes a 401 in the standard API envelope.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="pawtrail"`)
	w.WriteHeader(http.StatusUnauthorized)

	resp := &models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    "AUTHENTICATION_ERROR",
			Message: message,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to write unauthorized response")
	}
}
