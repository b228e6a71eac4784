// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package api

import (
	"net/http"
	"time"

	"github.com/pawtrail/pawtrail/internal/config"
	"github.com/pawtrail/pawtrail/internal/models"
	"github.com/pawtrail/pawtrail/internal/validation"
)

// Login exchanges admin credentials for a signed tenant token.
//
// Method: POST
// Path: /api/v1/auth/login
//
// Response:
//   - 200: token, tenant identifier, and expiry
//   - 400: missing username or password
//   - 401: invalid credentials
//   - 503: authentication disabled (no tokens are issued in none mode)
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Security.AuthMode == config.AuthModeNone || h.jwt == nil || h.creds == nil {
		respondError(w, http.StatusServiceUnavailable, "AUTHENTICATION_ERROR", "Authentication is disabled", nil)
		return
	}

	var payload models.LoginRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	if verr := validation.ValidateStruct(&payload); verr != nil {
		respondValidationError(w, verr)
		return
	}

	tenant, err := h.creds.Verify(payload.Username, payload.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid username or password", nil)
		return
	}

	start := time.Now()
	token, expires, err := h.jwt.GenerateToken(tenant)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Failed to issue token", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.LoginResponse{
		Token:   token,
		Tenant:  tenant,
		Expires: expires.Unix(),
	}, start)
}
