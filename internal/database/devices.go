// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pawtrail/pawtrail/internal/models"
)

// RegisterDevice upserts a device-to-pet binding in the tenant.
//
// At least one of code/deviceId is required. When an existing device matches
// either key, incoming fields merge over the existing record and updatedAt
// is refreshed; otherwise a new record is appended with createdAt set.
// Returns the resulting record.
func (d *DB) RegisterDevice(ctx context.Context, tenantID string, in models.DeviceRegistration) (models.Device, error) {
	var result models.Device

	err := d.update(ctx, "register_device", func(store *models.Store) (bool, error) {
		if in.Code == "" && in.DeviceID == "" {
			return false, fmt.Errorf("%w: code or deviceId is required", ErrValidation)
		}
		if in.PetID == "" {
			return false, fmt.Errorf("%w: petId is required", ErrValidation)
		}

		tenant := tenantOf(store, tenantID)
		now := time.Now().UTC()

		if i := findDevice(tenant, in.Code, in.DeviceID); i >= 0 {
			dev := &tenant.Devices[i]
			if in.Code != "" {
				dev.Code = in.Code
			}
			if in.DeviceID != "" {
				dev.DeviceID = in.DeviceID
			}
			petID := in.PetID
			dev.PetID = &petID
			if in.Name != nil {
				dev.Name = *in.Name
			}
			dev.UpdatedAt = &now
			result = *dev
			return true, nil
		}

		petID := in.PetID
		dev := models.Device{
			Code:      in.Code,
			DeviceID:  in.DeviceID,
			PetID:     &petID,
			CreatedAt: now,
		}
		if in.Name != nil {
			dev.Name = *in.Name
		}
		tenant.Devices = append(tenant.Devices, dev)
		result = dev
		return true, nil
	})
	if err != nil {
		return models.Device{}, err
	}
	return result, nil
}

// ListDevices returns the tenant's device registrations in storage order.
func (d *DB) ListDevices(ctx context.Context, tenantID string) ([]models.Device, error) {
	results := []models.Device{}

	err := d.view(ctx, "list_devices", func(store *models.Store) error {
		tenant := existingTenant(store, tenantID)
		if tenant == nil {
			return nil
		}
		results = append(results, tenant.Devices...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ResolveOwner returns the pet id bound to the first device matching code or
// deviceId in store order. The result is nil when the device is detached.
// Returns ErrNotFound when no device matches.
func (d *DB) ResolveOwner(ctx context.Context, tenantID, code, deviceID string) (*string, error) {
	var owner *string

	err := d.view(ctx, "resolve_owner", func(store *models.Store) error {
		tenant := existingTenant(store, tenantID)
		if tenant == nil {
			return fmt.Errorf("%w: no device matches", ErrNotFound)
		}
		i := findDevice(tenant, code, deviceID)
		if i < 0 {
			return fmt.Errorf("%w: no device matches", ErrNotFound)
		}
		owner = tenant.Devices[i].PetID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return owner, nil
}

// DetachDevice clears the pet binding of the matching device, leaving the
// registration in place, and refreshes updatedAt. Returns ErrNotFound when
// nothing matches.
func (d *DB) DetachDevice(ctx context.Context, tenantID string, sel models.DeviceSelector) (models.Device, error) {
	var result models.Device

	err := d.update(ctx, "detach_device", func(store *models.Store) (bool, error) {
		if sel.Code == "" && sel.DeviceID == "" {
			return false, fmt.Errorf("%w: code or deviceId is required", ErrValidation)
		}

		tenant := existingTenant(store, tenantID)
		if tenant == nil {
			return false, fmt.Errorf("%w: no device matches", ErrNotFound)
		}
		i := findDevice(tenant, sel.Code, sel.DeviceID)
		if i < 0 {
			return false, fmt.Errorf("%w: no device matches", ErrNotFound)
		}

		now := time.Now().UTC()
		dev := &tenant.Devices[i]
		dev.PetID = nil
		dev.UpdatedAt = &now
		result = *dev
		return true, nil
	})
	if err != nil {
		return models.Device{}, err
	}
	return result, nil
}

// DeleteDevices removes all devices matching either key (normally 0 or 1)
// and returns the count. A zero count signals not-found to the caller; it is
// not an error here.
func (d *DB) DeleteDevices(ctx context.Context, tenantID string, sel models.DeviceSelector) (int, error) {
	count := 0

	err := d.update(ctx, "delete_devices", func(store *models.Store) (bool, error) {
		if sel.Code == "" && sel.DeviceID == "" {
			return false, fmt.Errorf("%w: code or deviceId is required", ErrValidation)
		}

		tenant := existingTenant(store, tenantID)
		if tenant == nil {
			return false, nil
		}

		kept := tenant.Devices[:0]
		for _, dev := range tenant.Devices {
			if dev.Matches(sel.Code, sel.DeviceID) {
				count++
				continue
			}
			kept = append(kept, dev)
		}
		tenant.Devices = kept
		return count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// findDevice returns the index of the first device matching code or
// deviceId in store order, or -1. First match wins when both keys are given.
func findDevice(tenant *models.Tenant, code, deviceID string) int {
	for i := range tenant.Devices {
		if tenant.Devices[i].Matches(code, deviceID) {
			return i
		}
	}
	return -1
}
