// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/pawtrail/pawtrail/internal/auth"
	"github.com/pawtrail/pawtrail/internal/config"
	"github.com/pawtrail/pawtrail/internal/database"
	"github.com/pawtrail/pawtrail/internal/models"
)

const testJWTSecret = "test-secret-key-of-at-least-32-chars!"

// testEnvelope mirrors models.APIResponse with raw data for per-test
// decoding.
type testEnvelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func newTestConfig(t *testing.T, authMode string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8420
	cfg.Server.Timeout = 5 * time.Second
	cfg.Storage.Path = filepath.Join(t.TempDir(), "store.json")
	cfg.Security.AuthMode = authMode
	cfg.Security.FallbackTenant = models.DefaultTenant
	cfg.Security.CORSOrigins = []string{"*"}
	cfg.Security.RateLimitDisabled = true
	if authMode == config.AuthModeJWT {
		cfg.Security.JWTSecret = testJWTSecret
		cfg.Security.SessionTimeout = time.Hour
		cfg.Security.AdminUsername = "admin"
		cfg.Security.AdminPassword = "admin-password"
	}
	return cfg
}

// newTestRouter builds a full route tree over a temp store, with
// authentication disabled so every request lands in the default tenant.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := newTestConfig(t, config.AuthModeNone)

	db, err := database.New(&cfg.Storage)
	if err != nil {
		t.Fatalf("database.New() failed: %v", err)
	}

	handler := NewHandler(db, cfg, nil, nil)
	authMW := auth.NewMiddleware(&cfg.Security, nil)
	chiMW := NewChiMiddleware(&cfg.Security)
	return NewRouter(handler, authMW, chiMW, "").Setup()
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload interface{}) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env testEnvelope
	if len(rec.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("response is not an envelope: %v\nbody: %s", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", rec.Code)
	}
	if env.Status != "success" {
		t.Errorf("live envelope status = %q, want success", env.Status)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/health/ready", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want 200", rec.Code)
	}
}

func TestUpsertLocationStatusCodes(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/locations", map[string]interface{}{
		"id":        "loc-1",
		"petId":     "rex",
		"latitude":  52.37,
		"longitude": 4.89,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}
	var loc models.Location
	if err := json.Unmarshal(env.Data, &loc); err != nil {
		t.Fatal(err)
	}
	if loc.ID != "loc-1" || loc.PetID != "rex" {
		t.Errorf("unexpected record: %+v", loc)
	}
	if loc.Origin != models.OriginManual {
		t.Errorf("origin = %q, want manual", loc.Origin)
	}

	// Same id again: update, not create.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/v1/locations", map[string]interface{}{
		"id":    "loc-1",
		"label": "back yard",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("update status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
}

func TestUpsertLocationValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{name: "missing petId", payload: map[string]interface{}{"latitude": 1.0}},
		{name: "latitude out of range", payload: map[string]interface{}{"petId": "rex", "latitude": 123.0}},
		{name: "longitude out of range", payload: map[string]interface{}{"petId": "rex", "longitude": 200.0}},
		{name: "bad origin", payload: map[string]interface{}{"petId": "rex", "origin": "teleport"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doJSON(t, router, http.MethodPost, "/api/v1/locations", tt.payload)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
		})
	}
}

func TestUpsertLocationInvalidJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListLocationsFilter(t *testing.T) {
	router := newTestRouter(t)

	for _, petID := range []string{"rex", "rex", "bella"} {
		rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/locations", map[string]interface{}{"petId": petID})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed failed: %d", rec.Code)
		}
	}

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/locations?petId=rex", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var locations []models.Location
	if err := json.Unmarshal(env.Data, &locations); err != nil {
		t.Fatal(err)
	}
	if len(locations) != 2 {
		t.Errorf("filtered list has %d records, want 2", len(locations))
	}

	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/locations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &locations); err != nil {
		t.Fatal(err)
	}
	if len(locations) != 3 {
		t.Errorf("unfiltered list has %d records, want 3", len(locations))
	}
}

func TestIngestLocationFlow(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/devices", map[string]interface{}{
		"code":  "AB12",
		"petId": "rex",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register device failed: %d\nbody: %s", rec.Code, rec.Body.String())
	}

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/locations/ingest", map[string]interface{}{
		"code": "AB12",
		"lat":  52.37,
		"lng":  4.89,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}
	var loc models.Location
	if err := json.Unmarshal(env.Data, &loc); err != nil {
		t.Fatal(err)
	}
	if loc.PetID != "rex" || loc.Origin != models.OriginDevice {
		t.Errorf("unexpected record: %+v", loc)
	}

	// Unknown device resolves to 404.
	rec, env = doJSON(t, router, http.MethodPost, "/api/v1/locations/ingest", map[string]interface{}{
		"code": "ZZ99",
		"lat":  52.37,
		"lng":  4.89,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown device status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}

	// Missing coordinates fail struct validation before the store.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/v1/locations/ingest", map[string]interface{}{
		"code": "AB12",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing coordinates status = %d, want 400", rec.Code)
	}
}

func TestDeleteLocationByID(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/locations", map[string]interface{}{"petId": "rex"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed failed: %d", rec.Code)
	}
	var loc models.Location
	if err := json.Unmarshal(env.Data, &loc); err != nil {
		t.Fatal(err)
	}

	rec, env = doJSON(t, router, http.MethodDelete, "/api/v1/locations/"+loc.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	var result models.DeleteResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", result.Deleted)
	}

	rec, _ = doJSON(t, router, http.MethodDelete, "/api/v1/locations/"+loc.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestDeleteLocationsByScope(t *testing.T) {
	router := newTestRouter(t)

	for _, petID := range []string{"rex", "rex", "bella"} {
		rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/locations", map[string]interface{}{"petId": petID})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed failed: %d", rec.Code)
		}
	}

	rec, env := doJSON(t, router, http.MethodDelete, "/api/v1/locations?petId=rex", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("scoped delete status = %d, want 200", rec.Code)
	}
	var result models.DeleteResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", result.Deleted)
	}

	// Omitting petId wipes the rest.
	rec, env = doJSON(t, router, http.MethodDelete, "/api/v1/locations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("wipe status = %d, want 200", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Deleted != 1 {
		t.Errorf("wipe deleted = %d, want 1", result.Deleted)
	}
}

func TestDeviceLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/devices", map[string]interface{}{
		"code":     "AB12",
		"deviceId": "collar-001",
		"petId":    "rex",
		"name":     "Rex collar",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	var dev models.Device
	if err := json.Unmarshal(env.Data, &dev); err != nil {
		t.Fatal(err)
	}
	if dev.PetID == nil || *dev.PetID != "rex" {
		t.Errorf("petId = %v, want rex", dev.PetID)
	}

	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/devices", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var devices []models.Device
	if err := json.Unmarshal(env.Data, &devices); err != nil {
		t.Fatal(err)
	}
	if len(devices) != 1 {
		t.Fatalf("list has %d devices, want 1", len(devices))
	}

	rec, env = doJSON(t, router, http.MethodPost, "/api/v1/devices/detach", map[string]interface{}{
		"code": "AB12",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("detach status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, &dev); err != nil {
		t.Fatal(err)
	}
	if dev.PetID != nil {
		t.Errorf("petId = %v, want nil after detach", dev.PetID)
	}

	rec, _ = doJSON(t, router, http.MethodDelete, "/api/v1/devices?code=AB12", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d, want 200", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodDelete, "/api/v1/devices?code=AB12", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete of absent device status = %d, want 404", rec.Code)
	}
}

func TestRegisterDeviceValidation(t *testing.T) {
	router := newTestRouter(t)

	// petId is required by struct validation.
	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/devices", map[string]interface{}{"code": "AB12"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing petId status = %d, want 400", rec.Code)
	}

	// Identifier requirement is enforced by the store.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/v1/devices", map[string]interface{}{"petId": "rex"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing identifier status = %d, want 400", rec.Code)
	}
}

func TestLoginDisabledInNoneMode(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"username": "admin",
		"password": "admin-password",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "AUTHENTICATION_ERROR" {
		t.Errorf("error = %+v, want AUTHENTICATION_ERROR", env.Error)
	}
}

// newJWTTestRouter builds the route tree in jwt mode.
func newJWTTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := newTestConfig(t, config.AuthModeJWT)

	db, err := database.New(&cfg.Storage)
	if err != nil {
		t.Fatalf("database.New() failed: %v", err)
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("auth.NewJWTManager() failed: %v", err)
	}
	verifier, err := auth.NewCredentialVerifier(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
	if err != nil {
		t.Fatalf("auth.NewCredentialVerifier() failed: %v", err)
	}

	handler := NewHandler(db, cfg, jwtManager, verifier)
	authMW := auth.NewMiddleware(&cfg.Security, jwtManager)
	chiMW := NewChiMiddleware(&cfg.Security)
	return NewRouter(handler, authMW, chiMW, "").Setup()
}

func TestJWTLoginAndAccess(t *testing.T) {
	router := newJWTTestRouter(t)

	// Data endpoints reject anonymous callers.
	rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/locations", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"username": "admin",
		"password": "admin-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	var login models.LoginResponse
	if err := json.Unmarshal(env.Data, &login); err != nil {
		t.Fatal(err)
	}
	if login.Token == "" {
		t.Fatal("login returned empty token")
	}
	if login.Tenant != "admin" {
		t.Errorf("tenant = %q, want admin", login.Tenant)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.Token))
	recAuth := httptest.NewRecorder()
	router.ServeHTTP(recAuth, req)
	if recAuth.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200\nbody: %s", recAuth.Code, recAuth.Body.String())
	}
}

func TestJWTLoginBadCredentials(t *testing.T) {
	router := newJWTTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"username": "admin",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestBasePathPrefix(t *testing.T) {
	cfg := newTestConfig(t, config.AuthModeNone)
	db, err := database.New(&cfg.Storage)
	if err != nil {
		t.Fatal(err)
	}
	handler := NewHandler(db, cfg, nil, nil)
	authMW := auth.NewMiddleware(&cfg.Security, nil)
	chiMW := NewChiMiddleware(&cfg.Security)
	router := NewRouter(handler, authMW, chiMW, "/pawtrail").Setup()

	rec, _ := doJSON(t, router, http.MethodGet, "/pawtrail/api/v1/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("prefixed status = %d, want 200", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/health/live", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unprefixed status = %d, want 404", rec.Code)
	}
}
