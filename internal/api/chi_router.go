// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/middleware"
)

// Router sets up HTTP routes using the chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler. A nil security config uses the
// middleware defaults.
func NewRouter(handler *Handler, sec *config.SecurityConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFromSecurity(sec)),
	}
}

// SetupChi configures all HTTP routes and returns the root handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(5))

		r.Post("/recommendations", router.handler.Recommendations)
		r.Post("/places", router.handler.UpsertPlaces)
		r.Get("/places/{id}", router.handler.GetPlace)
		r.Post("/choices", router.handler.RecordChoice)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	return r
}
