// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pawtrail/pawtrail/internal/auth"
	"github.com/pawtrail/pawtrail/internal/middleware"
)

// Router wires handlers and middleware into the Chi route tree.
type Router struct {
	handler  *Handler
	authMW   *auth.Middleware
	chiMW    *ChiMiddleware
	basePath string
}

// NewRouter creates the router. basePath optionally prefixes every route
// (e.g. "/pawtrail" behind a shared reverse proxy).
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware, basePath string) *Router {
	return &Router{
		handler:  handler,
		authMW:   authMW,
		chiMW:    chiMW,
		basePath: basePath,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMW.CORS()) // global so OPTIONS preflight is handled

	if router.basePath != "" {
		r.Route(router.basePath, router.mountRoutes)
	} else {
		router.mountRoutes(r)
	}

	return r
}

// mountRoutes attaches the API surface below the (optional) base path.
func (router *Router) mountRoutes(r chi.Router) {
	h := router.handler

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		// Strict rate limiting on login to slow brute forcing.
		r.Route("/auth", func(r chi.Router) {
			r.Use(router.chiMW.RateLimitAuth())
			r.Post("/login", h.Login)
		})

		// All data endpoints resolve a tenant before touching the store.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMW.RateLimit())
			r.Use(middleware.PrometheusMetrics)
			r.Use(router.authMW.Authenticate)

			r.Route("/locations", func(r chi.Router) {
				r.Get("/", h.ListLocations)
				r.Post("/", h.UpsertLocation)
				r.Post("/ingest", h.IngestLocation)
				r.Delete("/", h.DeleteLocationsByScope)
				r.Delete("/{id}", h.DeleteLocation)
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", h.ListDevices)
				r.Post("/", h.RegisterDevice)
				r.Post("/detach", h.DetachDevice)
				r.Delete("/", h.DeleteDevices)
			})
		})
	})
}
