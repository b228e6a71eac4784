// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

// Package api provides the HTTP handlers and Chi routing for Pawtrail.
//
// All handlers follow a consistent pattern:
//  1. Tenant resolution from the request context
//  2. Payload decoding and validation
//  3. Store operation with the request context
//  4. JSON response in the standard envelope
package api

import (
	"net/http"

	"github.com/pawtrail/pawtrail/internal/auth"
	"github.com/pawtrail/pawtrail/internal/config"
	"github.com/pawtrail/pawtrail/internal/database"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	db    *database.DB
	cfg   *config.Config
	jwt   *auth.JWTManager
	creds *auth.CredentialVerifier
}

// NewHandler creates the API handler. jwt and creds may be nil when
// authentication is disabled.
func NewHandler(db *database.DB, cfg *config.Config, jwt *auth.JWTManager, creds *auth.CredentialVerifier) *Handler {
	return &Handler{db: db, cfg: cfg, jwt: jwt, creds: creds}
}

// tenant resolves the caller tenant from the request context, responding
// with 401 when none was resolved. Returns false if an error was sent.
func (h *Handler) tenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenant, ok := auth.TenantFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "No tenant resolved for request", nil)
		return "", false
	}
	return tenant, true
}
