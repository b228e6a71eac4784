// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

// Package main is the entry point for the Pawtrail server.
//
// Pawtrail stores geolocation records for tracked pets and the tracker
// tags that report them, partitioned per authenticated tenant, in a single
// durable JSON file with atomic-replace save semantics.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered loading (defaults, config file, env)
//  2. Logging: zerolog, JSON or console format
//  3. Store: the tenant-partitioned JSON file store
//  4. Authentication: JWT tenant tokens, or disabled (fallback tenant)
//  5. HTTP server: Chi router running under a suture supervision tree
//
// # Configuration
//
// Environment variables (highest priority), a YAML config file found via
// CONFIG_PATH or the default search paths, and built-in defaults. Key
// variables:
//
//   - PORT, HOST, BASE_PATH, REQUEST_TIMEOUT
//   - STORE_PATH: path of the durable JSON store file
//   - AUTH_MODE: "jwt" (default) or "none"
//   - JWT_SECRET: 32+ character secret (jwt mode)
//   - ADMIN_USERNAME / ADMIN_PASSWORD: login credentials (jwt mode)
//   - FALLBACK_TENANT: shared tenant used in none mode (default "default")
//   - LOG_LEVEL, LOG_FORMAT
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the supervision
// tree cancels the HTTP service, which stops accepting connections and
// waits up to 10 seconds for in-flight requests.
//
// # Example Usage
//
// Development, authentication disabled:
//
//	export AUTH_MODE=none
//	export STORE_PATH=./pawtrail.json
//	./pawtrail
//
// Production with JWT:
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=secure-password
//	./pawtrail
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/pawtrail/pawtrail/internal/api"
	"github.com/pawtrail/pawtrail/internal/auth"
	"github.com/pawtrail/pawtrail/internal/config"
	"github.com/pawtrail/pawtrail/internal/database"
	"github.com/pawtrail/pawtrail/internal/logging"
	"github.com/pawtrail/pawtrail/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger; config (and its logging section) is unavailable.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("store_path", cfg.Storage.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Pawtrail")

	db, err := database.New(&cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize store")
	}

	var (
		jwtManager *auth.JWTManager
		verifier   *auth.CredentialVerifier
	)
	if cfg.Security.AuthMode == config.AuthModeJWT {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		verifier, err = auth.NewCredentialVerifier(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize credential verifier")
		}
	}

	handler := api.NewHandler(db, cfg, jwtManager, verifier)
	authMW := auth.NewMiddleware(&cfg.Security, jwtManager)
	chiMW := api.NewChiMiddleware(&cfg.Security)
	router := api.NewRouter(handler, authMW, chiMW, cfg.Server.BasePath)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	treeCfg := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.Add(supervisor.NewHTTPServerService(server, treeCfg.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervision tree failed")
	}

	logging.Info().Msg("Pawtrail stopped")
}
