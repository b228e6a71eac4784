// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints, for both successful and error responses.
//
// Status is "success" or "error"; Error is populated only for errors.
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"id": "…", "petId": "rex"},
//	  "metadata": {"timestamp": "2026-08-31T12:00:00Z", "query_time_ms": 3}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries a machine-readable error code alongside the
// human-readable message.
//
// Codes used by Pawtrail:
//   - VALIDATION_ERROR: required field missing or malformed
//   - NOT_FOUND: referenced pet, device, or location absent
//   - STORAGE_ERROR: durable store could not be written
//   - AUTHENTICATION_ERROR: invalid or missing credentials
//   - METHOD_NOT_ALLOWED: wrong HTTP method
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
