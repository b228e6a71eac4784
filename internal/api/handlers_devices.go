// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package api

import (
	"net/http"
	"time"

	"github.com/pawtrail/pawtrail/internal/models"
	"github.com/pawtrail/pawtrail/internal/validation"
)

// ListDevices returns the tenant's device registrations in storage order.
//
// Method: GET
// Path: /api/v1/devices
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	start := time.Now()
	devices, err := h.db.ListDevices(r.Context(), tenant)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, devices, start)
}

// RegisterDevice upserts a device-to-pet binding.
//
// Method: POST
// Path: /api/v1/devices
//
// Response:
//   - 200: the resulting record (merged or newly created)
//   - 400: neither code nor deviceId given, or missing petId
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var payload models.DeviceRegistration
	if !decodeJSON(w, r, &payload) {
		return
	}
	if verr := validation.ValidateStruct(&payload); verr != nil {
		respondValidationError(w, verr)
		return
	}

	start := time.Now()
	device, err := h.db.RegisterDevice(r.Context(), tenant, payload)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, device, start)
}

// DetachDevice clears the pet binding of a registered device, keeping the
// registration.
//
// Method: POST
// Path: /api/v1/devices/detach
//
// Response:
//   - 200: the detached record
//   - 400: neither code nor deviceId given
//   - 404: no device matches
func (h *Handler) DetachDevice(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var payload models.DeviceSelector
	if !decodeJSON(w, r, &payload) {
		return
	}

	start := time.Now()
	device, err := h.db.DetachDevice(r.Context(), tenant, payload)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, device, start)
}

// DeleteDevices removes all devices matching the given code or deviceId.
//
// Method: DELETE
// Path: /api/v1/devices?code=<code>&deviceId=<id>
//
// Response:
//   - 200: count of removed registrations
//   - 400: neither code nor deviceId given
//   - 404: nothing matched (count 0)
func (h *Handler) DeleteDevices(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	sel := models.DeviceSelector{
		Code:     r.URL.Query().Get("code"),
		DeviceID: r.URL.Query().Get("deviceId"),
	}

	start := time.Now()
	count, err := h.db.DeleteDevices(r.Context(), tenant, sel)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if count == 0 {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No device matches", nil)
		return
	}

	respondSuccess(w, http.StatusOK, models.DeleteResult{Deleted: count}, start)
}
