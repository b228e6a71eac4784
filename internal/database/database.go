// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/pawtrail/pawtrail/internal/config"
	"github.com/pawtrail/pawtrail/internal/logging"
	"github.com/pawtrail/pawtrail/internal/metrics"
	"github.com/pawtrail/pawtrail/internal/models"
)

// Sentinel errors returned by store operations. Callers match them with
// errors.Is to produce distinct caller-visible outcomes.
var (
	// ErrValidation indicates a required field was missing or malformed.
	// No mutation was performed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a referenced device or record is absent.
	// No mutation was performed.
	ErrNotFound = errors.New("not found")
)

// DB owns the durable store file. All mutations go through a full
// load -> mutate -> save cycle guarded by mu; no other component touches
// the file.
type DB struct {
	path string
	mu   sync.Mutex
}

// New creates a DB backed by the configured store file, creating the parent
// directory if needed. The file itself is created lazily on first save.
func New(cfg *config.StorageConfig) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
	}

	return &DB{path: cfg.Path}, nil
}

// Path returns the durable store file path.
func (d *DB) Path() string {
	return d.path
}

// Ping verifies the store file is readable (or absent, which loads as an
// empty store). Used by the readiness endpoint.
func (d *DB) Ping(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.loadLocked()
	return err
}

// update runs one serialized load -> mutate -> save cycle. The mutate
// function returns whether the store changed; unchanged stores are not
// rewritten.
func (d *DB) update(ctx context.Context, op string, mutate func(*models.Store) (bool, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	err := d.updateLocked(ctx, mutate)
	metrics.RecordStoreOperation(op, time.Since(start), err)
	return err
}

func (d *DB) updateLocked(ctx context.Context, mutate func(*models.Store) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	store, err := d.loadLocked()
	if err != nil {
		return err
	}

	dirty, err := mutate(store)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}

	return d.saveLocked(store)
}

// view runs one serialized read-only load cycle.
func (d *DB) view(ctx context.Context, op string, read func(*models.Store) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	err := d.viewLocked(ctx, read)
	metrics.RecordStoreOperation(op, time.Since(start), err)
	return err
}

func (d *DB) viewLocked(ctx context.Context, read func(*models.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	store, err := d.loadLocked()
	if err != nil {
		return err
	}
	return read(store)
}

// loadLocked reads and decodes the store file. A missing file yields an
// empty store; an unparsable file is quarantined and also yields an empty
// store (recovery, not an error).
func (d *DB) loadLocked() (*models.Store, error) {
	raw, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	store, err := decodeStore(raw)
	if err != nil {
		d.quarantineLocked(err)
		return models.NewStore(), nil
	}
	return store, nil
}

// decodeStore parses raw store content, accepting the current tenant-keyed
// shape and both legacy single-tenant shapes.
func decodeStore(raw []byte) (*models.Store, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return models.NewStore(), nil
	}

	// Legacy shape 1: a bare array of locations.
	if trimmed[0] == '[' {
		var locations []models.Location
		if err := json.Unmarshal(trimmed, &locations); err != nil {
			return nil, fmt.Errorf("decode legacy location list: %w", err)
		}
		return migrateLegacy(locations), nil
	}

	var probe struct {
		Tenants   map[string]*models.Tenant `json:"tenants"`
		Locations []models.Location         `json:"locations"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}

	// Legacy shape 2: {"locations": [...]} without a tenants mapping.
	if probe.Tenants == nil && probe.Locations != nil {
		return migrateLegacy(probe.Locations), nil
	}

	if probe.Tenants == nil {
		probe.Tenants = make(map[string]*models.Tenant)
	}
	// A hand-edited file may carry explicit null tenant entries; treat them
	// as empty tenants rather than panicking on first write.
	for id, tenant := range probe.Tenants {
		if tenant == nil {
			probe.Tenants[id] = &models.Tenant{}
		}
	}
	return &models.Store{Tenants: probe.Tenants}, nil
}

// migrateLegacy wraps a legacy single-tenant location list under the
// "default" tenant. The migrated shape is persisted on the next save, not
// here.
func migrateLegacy(locations []models.Location) *models.Store {
	store := models.NewStore()
	store.Tenants[models.DefaultTenant] = &models.Tenant{
		Locations: locations,
		Devices:   []models.Device{},
	}
	logging.Info().
		Int("locations", len(locations)).
		Str("tenant", models.DefaultTenant).
		Msg("Migrated legacy single-tenant store")
	return store
}

// quarantineLocked moves an unparsable store file aside so the bad content
// is preserved for inspection instead of being silently discarded.
func (d *DB) quarantineLocked(cause error) {
	quarantined := fmt.Sprintf("%s.corrupt-%d", d.path, time.Now().Unix())
	if err := os.Rename(d.path, quarantined); err != nil {
		logging.Error().Err(err).Str("path", d.path).Msg("Failed to quarantine corrupt store file")
		quarantined = ""
	}
	metrics.StoreCorruptionsTotal.Inc()
	logging.Error().
		Err(cause).
		Str("path", d.path).
		Str("quarantined", quarantined).
		Msg("Store file unparsable, starting from empty store")
}

// saveLocked serializes the full store to a temp file in the store
// directory, then atomically renames it over the durable file. A reader
// never observes a partial file.
func (d *DB) saveLocked(store *models.Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, ".pawtrail-store-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpPath, d.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// tenantOf returns the tenant entry, creating it lazily on first reference.
func tenantOf(store *models.Store, tenantID string) *models.Tenant {
	if t, ok := store.Tenants[tenantID]; ok {
		return t
	}
	t := &models.Tenant{
		Locations: []models.Location{},
		Devices:   []models.Device{},
	}
	store.Tenants[tenantID] = t
	return t
}

// existingTenant returns the tenant entry without creating it.
// Read paths use this so lookups never mutate the store.
func existingTenant(store *models.Store, tenantID string) *models.Tenant {
	return store.Tenants[tenantID]
}
