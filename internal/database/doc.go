// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

// Package database implements the tenant-partitioned persistence layer for
// Pawtrail: location records, device registrations, and the single durable
// JSON file that holds them.
//
// # Storage model
//
// The whole store lives in one file. Every operation is a full
// load -> mutate -> save cycle serialized behind a single mutex, which
// removes the classic lost-update race between concurrent writers while
// keeping the durable representation trivially inspectable. Saves write to a
// temporary file in the same directory and atomically rename it over the
// store file, so a reader never observes a partially written store.
//
// # Migration and recovery
//
// Two legacy single-tenant shapes are accepted on read only (a bare JSON
// array of locations, or {"locations": [...]}); both migrate in memory to
// tenant "default" and are only persisted in the new shape on the next save.
// An unparsable store file is quarantined next to the original with a
// timestamped ".corrupt-" suffix, logged at error level, and replaced by an
// empty store.
//
// # Errors
//
// Operations return ErrValidation when a required field is missing and
// ErrNotFound when a referenced device is absent; both are matched with
// errors.Is at the API boundary. Save failures propagate unwrapped as I/O
// errors: an operation never reports success when the save did not complete.
package database
