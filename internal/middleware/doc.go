// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package middleware provides HTTP middleware components for the API server.

All middleware has the chi signature func(http.Handler) http.Handler.

Key Components:

  - RequestID: accepts or generates X-Request-ID and seeds the logging
    context with request and correlation IDs
  - AccessLog: one structured zerolog line per request
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern so path parameters do not explode cardinality

Middleware Stack:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors)
	r.Use(middleware.PrometheusMetrics)

RequestID must run before AccessLog so log lines carry the request ID.
*/
package middleware
