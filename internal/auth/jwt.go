// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

// Package auth resolves request credentials into a tenant identifier.
//
// The resolver is deliberately thin: a signed JWT whose subject names the
// tenant, issued by the login endpoint after bcrypt verification of the
// configured admin credentials. When authentication is disabled
// (AUTH_MODE=none) every request maps to the configured fallback tenant;
// the degrade is configuration threaded through the middleware, never a
// process-wide flag flipped at runtime.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pawtrail/pawtrail/internal/config"
)

// Claims represents the JWT claims carried by a tenant token.
// Tenant duplicates the registered Subject for explicitness.
type Claims struct {
	Tenant string `json:"tenant"`
	jwt.RegisteredClaims
}

// JWTManager creates and validates tenant tokens using HMAC-SHA256.
type JWTManager struct {
	secret  []byte
	timeout time.Duration
}

// NewJWTManager creates a token manager with the configured secret and
// session timeout. The secret must be at least 32 characters.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters")
	}
	return &JWTManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: cfg.SessionTimeout,
	}, nil
}

// GenerateToken creates a signed token whose subject is the tenant
// identifier. Tokens are stateless and expire after the session timeout.
func (m *JWTManager) GenerateToken(tenant string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(m.timeout)

	claims := &Claims{
		Tenant: tenant,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenant,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// ValidateToken verifies signature, algorithm, and time claims, and returns
// the token's claims. Tokens signed with anything but HMAC are rejected to
// prevent algorithm confusion.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Tenant == "" {
		claims.Tenant = claims.Subject
	}
	if claims.Tenant == "" {
		return nil, fmt.Errorf("token carries no tenant identifier")
	}
	return claims, nil
}
