// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package models

import "time"

// LocationUpsert is the payload for creating or updating a location record.
//
// Pointer fields distinguish "supplied" from "absent": an update merges only
// the supplied fields over the existing record. An absent ID makes the call
// a create with a generated id.
type LocationUpsert struct {
	ID        string     `json:"id,omitempty"`
	PetID     string     `json:"petId,omitempty"`
	Label     *string    `json:"label,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64   `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Origin    *string    `json:"origin,omitempty" validate:"omitempty,oneof=manual device"`
	CreatedBy *string    `json:"createdBy,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// IngestRequest is a device-originated location report. Either Code or
// DeviceID identifies the reporting tag; Timestamp, when given, is epoch
// milliseconds.
type IngestRequest struct {
	Code      string   `json:"code,omitempty"`
	DeviceID  string   `json:"deviceId,omitempty"`
	Latitude  *float64 `json:"lat" validate:"required,latitude"`
	Longitude *float64 `json:"lng" validate:"required,longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"`
	Label     string   `json:"label,omitempty"`
}

// Identifier returns the tag identifier used for the lookup, preferring the
// short code when both are supplied.
func (r *IngestRequest) Identifier() string {
	if r.Code != "" {
		return r.Code
	}
	return r.DeviceID
}

// DeviceRegistration is the payload for registering (or re-registering) a
// tracker tag against a pet.
type DeviceRegistration struct {
	Code     string  `json:"code,omitempty"`
	DeviceID string  `json:"deviceId,omitempty"`
	PetID    string  `json:"petId" validate:"required"`
	Name     *string `json:"name,omitempty"`
}

// DeviceSelector identifies a registered device by either lookup key.
// Used by detach and delete operations.
type DeviceSelector struct {
	Code     string `json:"code,omitempty"`
	DeviceID string `json:"deviceId,omitempty"`
}

// LoginRequest carries admin credentials exchanged for a tenant token.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed tenant token.
type LoginResponse struct {
	Token   string `json:"token"`
	Tenant  string `json:"tenant"`
	Expires int64  `json:"expires"`
}

// DeleteResult reports how many records a delete operation removed.
type DeleteResult struct {
	Deleted int `json:"deleted"`
}
