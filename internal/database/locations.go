// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pawtrail/pawtrail/internal/models"
)

// UpsertLocation creates or updates a location record in the tenant.
//
// An absent id makes the call a create with a generated UUID. An id matching
// an existing record makes it an update: supplied fields merge over the
// existing record and updatedAt is refreshed. The returned bool is true for
// a create.
//
// The record's uid is always force-assigned from tenantID, never taken from
// the payload, so a payload can never write across tenants.
func (d *DB) UpsertLocation(ctx context.Context, tenantID string, in models.LocationUpsert) (models.Location, bool, error) {
	var (
		result  models.Location
		created bool
	)

	err := d.update(ctx, "upsert_location", func(store *models.Store) (bool, error) {
		tenant := tenantOf(store, tenantID)
		now := time.Now().UTC()

		if in.ID != "" {
			if i := findLocation(tenant, in.ID); i >= 0 {
				mergeLocation(&tenant.Locations[i], in, tenantID, now)
				result = tenant.Locations[i]
				return true, nil
			}
		}

		loc, err := newLocation(in, tenantID, now)
		if err != nil {
			return false, err
		}
		tenant.Locations = append(tenant.Locations, loc)
		result = loc
		created = true
		return true, nil
	})
	if err != nil {
		return models.Location{}, false, err
	}
	return result, created, nil
}

// IngestLocation stores a device-originated location report. The owning pet
// is resolved through the device registry; ingestion is append-only and
// never updates an existing record.
func (d *DB) IngestLocation(ctx context.Context, tenantID string, in models.IngestRequest) (models.Location, error) {
	var result models.Location

	err := d.update(ctx, "ingest_location", func(store *models.Store) (bool, error) {
		if in.Code == "" && in.DeviceID == "" {
			return false, fmt.Errorf("%w: code or deviceId is required", ErrValidation)
		}
		if in.Latitude == nil || in.Longitude == nil {
			return false, fmt.Errorf("%w: lat and lng are required", ErrValidation)
		}

		tenant := tenantOf(store, tenantID)

		i := findDevice(tenant, in.Code, in.DeviceID)
		if i < 0 {
			return false, fmt.Errorf("%w: no device matches %q", ErrNotFound, in.Identifier())
		}
		owner := tenant.Devices[i].PetID
		if owner == nil || *owner == "" {
			return false, fmt.Errorf("%w: device %q has no owner", ErrNotFound, in.Identifier())
		}

		createdAt := time.Now().UTC()
		if in.Timestamp != nil {
			createdAt = time.UnixMilli(*in.Timestamp).UTC()
		}

		result = models.Location{
			ID:        uuid.NewString(),
			PetID:     *owner,
			Label:     in.Label,
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
			Accuracy:  in.Accuracy,
			Speed:     in.Speed,
			Origin:    models.OriginDevice,
			CreatedBy: in.Identifier(),
			CreatedAt: createdAt,
			UID:       tenantID,
		}
		tenant.Locations = append(tenant.Locations, result)
		return true, nil
	})
	if err != nil {
		return models.Location{}, err
	}
	return result, nil
}

// QueryLocations returns the tenant's location records in storage order.
// A non-empty petID filters to that pet (string comparison); an empty petID
// returns all records.
func (d *DB) QueryLocations(ctx context.Context, tenantID, petID string) ([]models.Location, error) {
	results := []models.Location{}

	err := d.view(ctx, "query_locations", func(store *models.Store) error {
		tenant := existingTenant(store, tenantID)
		if tenant == nil {
			return nil
		}
		for _, loc := range tenant.Locations {
			if petID == "" || loc.PetID == petID {
				results = append(results, loc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteLocation removes the single record with the given id.
// Returns whether anything was removed.
func (d *DB) DeleteLocation(ctx context.Context, tenantID, id string) (bool, error) {
	removed := false

	err := d.update(ctx, "delete_location", func(store *models.Store) (bool, error) {
		tenant := existingTenant(store, tenantID)
		if tenant == nil {
			return false, nil
		}
		i := findLocation(tenant, id)
		if i < 0 {
			return false, nil
		}
		tenant.Locations = append(tenant.Locations[:i], tenant.Locations[i+1:]...)
		removed = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// DeleteLocationsByScope removes all records for petID, or wipes the
// tenant's entire location list when petID is empty. Omission is
// destructive, not a no-op. Returns the number of records removed.
func (d *DB) DeleteLocationsByScope(ctx context.Context, tenantID, petID string) (int, error) {
	count := 0

	err := d.update(ctx, "delete_locations_by_scope", func(store *models.Store) (bool, error) {
		tenant := existingTenant(store, tenantID)
		if tenant == nil {
			return false, nil
		}

		if petID == "" {
			count = len(tenant.Locations)
			tenant.Locations = []models.Location{}
			return count > 0, nil
		}

		kept := tenant.Locations[:0]
		for _, loc := range tenant.Locations {
			if loc.PetID == petID {
				count++
				continue
			}
			kept = append(kept, loc)
		}
		tenant.Locations = kept
		return count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// findLocation returns the index of the location with the given id, or -1.
func findLocation(tenant *models.Tenant, id string) int {
	for i := range tenant.Locations {
		if tenant.Locations[i].ID == id {
			return i
		}
	}
	return -1
}

// newLocation builds a fresh record from an upsert payload.
func newLocation(in models.LocationUpsert, tenantID string, now time.Time) (models.Location, error) {
	if in.PetID == "" {
		return models.Location{}, fmt.Errorf("%w: petId is required", ErrValidation)
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	loc := models.Location{
		ID:        id,
		PetID:     in.PetID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Accuracy:  in.Accuracy,
		Speed:     in.Speed,
		Origin:    models.OriginManual,
		CreatedAt: now,
		UID:       tenantID,
	}
	if in.Label != nil {
		loc.Label = *in.Label
	}
	if in.Origin != nil {
		loc.Origin = *in.Origin
	}
	if in.CreatedBy != nil {
		loc.CreatedBy = *in.CreatedBy
	}
	if in.CreatedAt != nil {
		loc.CreatedAt = in.CreatedAt.UTC()
	}
	return loc, nil
}

// mergeLocation merges supplied fields over an existing record and
// refreshes updatedAt.
func mergeLocation(loc *models.Location, in models.LocationUpsert, tenantID string, now time.Time) {
	if in.PetID != "" {
		loc.PetID = in.PetID
	}
	if in.Label != nil {
		loc.Label = *in.Label
	}
	if in.Latitude != nil {
		loc.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		loc.Longitude = in.Longitude
	}
	if in.Accuracy != nil {
		loc.Accuracy = in.Accuracy
	}
	if in.Speed != nil {
		loc.Speed = in.Speed
	}
	if in.Origin != nil {
		loc.Origin = *in.Origin
	}
	if in.CreatedBy != nil {
		loc.CreatedBy = *in.CreatedBy
	}
	if in.CreatedAt != nil {
		loc.CreatedAt = in.CreatedAt.UTC()
	}
	loc.UID = tenantID
	loc.UpdatedAt = &now
}
