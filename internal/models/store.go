// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

// Package models defines the durable data model and API envelope types for
// Pawtrail.
//
// The durable store is a single JSON document partitioned per tenant:
//
//	{
//	  "tenants": {
//	    "<tenantId>": {
//	      "locations": [...],
//	      "devices": [...]
//	    }
//	  }
//	}
//
// A legacy single-tenant shape ({"locations": [...]} or a bare array of
// locations) is accepted on read only and migrated to the "default" tenant.
package models

import "time"

// Location origin values.
const (
	// OriginManual marks a location created by an explicit client upsert.
	OriginManual = "manual"

	// OriginDevice marks a location ingested from a tracker tag report.
	OriginDevice = "device"
)

// DefaultTenant is the shared tenant identifier used when credential
// verification is disabled.
const DefaultTenant = "default"

// Store is the root durable object: a mapping from tenant identifier to
// per-tenant data. Every top-level key is a non-empty tenant identifier.
type Store struct {
	Tenants map[string]*Tenant `json:"tenants"`
}

// NewStore returns an empty store with an initialized tenant map.
func NewStore() *Store {
	return &Store{Tenants: make(map[string]*Tenant)}
}

// Tenant holds one tenant's location records and device registrations.
// Both sequences are append-preferred: order reflects approximate creation
// order but carries no semantic guarantee.
type Tenant struct {
	Locations []Location `json:"locations"`
	Devices   []Device   `json:"devices"`
}

// Location is a single geolocation record for a tracked pet.
//
// The ID is unique within its tenant. UID records the owning tenant
// redundantly with the partition key for audit purposes and is always
// force-assigned from the resolved caller tenant, never from a payload.
type Location struct {
	ID        string     `json:"id"`
	PetID     string     `json:"petId"`
	Label     string     `json:"label,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Origin    string     `json:"origin,omitempty"`
	CreatedBy string     `json:"createdBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UID       string     `json:"uid,omitempty"`
}

// Device maps a physical tracker identifier (a short code and/or a device id,
// at least one required) to an owning pet. A nil PetID means the device is
// detached: registered but currently reporting for no pet.
//
// Within a tenant at most one device matches a given code and at most one
// matches a given device id; lookups resolve to the first match in store
// order when ambiguous.
type Device struct {
	Code      string     `json:"code,omitempty"`
	DeviceID  string     `json:"deviceId,omitempty"`
	PetID     *string    `json:"petId"`
	Name      string     `json:"name,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Matches reports whether the device matches either lookup key.
// Empty keys never match.
func (d *Device) Matches(code, deviceID string) bool {
	if code != "" && d.Code == code {
		return true
	}
	if deviceID != "" && d.DeviceID == deviceID {
		return true
	}
	return false
}
