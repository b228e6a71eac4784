// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pawtrail/pawtrail/internal/models"
	"github.com/pawtrail/pawtrail/internal/validation"
)

// ListLocations returns the tenant's location records, optionally filtered
// to one pet.
//
// Method: GET
// Path: /api/v1/locations?petId=<id>
//
// Response:
//   - 200: records in storage order (all records when petId is omitted)
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	start := time.Now()
	locations, err := h.db.QueryLocations(r.Context(), tenant, r.URL.Query().Get("petId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, locations, start)
}

// UpsertLocation creates or updates a location record.
//
// Method: POST
// Path: /api/v1/locations
//
// Response:
//   - 201: record created (payload had no id, or an unknown id)
//   - 200: record updated (payload id matched an existing record)
//   - 400: missing petId or malformed coordinates
func (h *Handler) UpsertLocation(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var payload models.LocationUpsert
	if !decodeJSON(w, r, &payload) {
		return
	}
	if verr := validation.ValidateStruct(&payload); verr != nil {
		respondValidationError(w, verr)
		return
	}

	start := time.Now()
	location, created, err := h.db.UpsertLocation(r.Context(), tenant, payload)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSuccess(w, status, location, start)
}

// IngestLocation stores a device-originated location report, resolving the
// owning pet through the device registry.
//
// Method: POST
// Path: /api/v1/locations/ingest
//
// Response:
//   - 201: record created
//   - 400: neither code nor deviceId given, or missing coordinates
//   - 404: no registered device matches, or the device is detached
func (h *Handler) IngestLocation(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var payload models.IngestRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	if verr := validation.ValidateStruct(&payload); verr != nil {
		respondValidationError(w, verr)
		return
	}

	start := time.Now()
	location, err := h.db.IngestLocation(r.Context(), tenant, payload)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, location, start)
}

// DeleteLocation removes a single location record by id.
//
// Method: DELETE
// Path: /api/v1/locations/{id}
//
// Response:
//   - 200: record removed
//   - 404: no record with that id
func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	start := time.Now()

	removed, err := h.db.DeleteLocation(r.Context(), tenant, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No location with that id", nil)
		return
	}

	respondSuccess(w, http.StatusOK, models.DeleteResult{Deleted: 1}, start)
}

// DeleteLocationsByScope removes all records for a pet, or wipes the
// tenant's entire location list when petId is omitted. Omission is
// destructive by design.
//
// Method: DELETE
// Path: /api/v1/locations?petId=<id>
//
// Response:
//   - 200: count of removed records (possibly 0)
func (h *Handler) DeleteLocationsByScope(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	start := time.Now()
	count, err := h.db.DeleteLocationsByScope(r.Context(), tenant, r.URL.Query().Get("petId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, models.DeleteResult{Deleted: count}, start)
}
