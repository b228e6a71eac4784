// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package api

import (
	"net/http"
	"time"
)

// HealthLive reports process liveness.
//
// Method: GET
// Path: /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady reports readiness: the durable store must be loadable.
//
// Method: GET
// Path: /api/v1/health/ready
//
// Response:
//   - 200: store readable
//   - 503: store unreadable
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Store not readable", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"}, start)
}
