// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package api provides the HTTP REST API layer for WhereTo.

Key Components:

  - Router: chi route configuration and middleware stack
  - Handler: request handlers for the recommendation, place, choice and
    health endpoints
  - Response formatting: every endpoint answers with models.APIResponse
  - Error handling: stable error codes; internal errors are logged, never
    returned to the client

Endpoints:

	POST /api/v1/recommendations   rank nearby places for a profile
	POST /api/v1/places            upsert a batch of places (ingestion)
	GET  /api/v1/places/{id}       fetch one place
	POST /api/v1/choices           record that a user picked a place
	GET  /api/v1/health            status, database ping and breaker state
	GET  /api/v1/health/live       liveness check
	GET  /api/v1/health/ready      readiness check (503 when the store is down)
	GET  /metrics                  Prometheus exposition

Recommendation Flow:

The handler validates the request, resolves the context snapshot (request
value or server clock in the configured time zone), loads candidates with a
radius query, lets the score enricher fill companion-specific quality scores
from the cache, loads the user's history for serendipity, and runs the
recommendation engine. Scoring service problems never fail a request: places
without a score are ranked on their rating.

Usage Example:

	handler := api.NewHandler(db, engine, cfg)
	handler.SetEnricher(enricher)
	handler.SetBreakerReporter(client)
	router := api.NewRouter(handler, &cfg.Security)
	srv := &http.Server{Addr: ":8080", Handler: router.SetupChi()}
*/
package api
