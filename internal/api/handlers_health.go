// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

const healthPingTimeout = 2 * time.Second

// breakerDisabled is reported when no scoring client is configured.
const breakerDisabled = "disabled"

// Health handles GET /api/v1/health.
//
// It always answers 200; Status is "degraded" when the store does not
// answer a ping or the scoring breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := h.pingDatabase(r.Context())

	breaker := breakerDisabled
	if h.breaker != nil {
		breaker = h.breaker.BreakerState()
	}

	status := "healthy"
	if !dbOK || breaker == "open" {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:         status,
			Version:        h.version,
			DatabaseOK:     dbOK,
			ScoringBreaker: breaker,
			Uptime:         time.Since(h.startTime).Seconds(),
			CheckedAt:      h.now().UTC(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthLive handles liveness check requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthReady handles readiness check requests (Kubernetes-style)
// Returns 200 OK only if the place store answers. The scoring service is
// optional for serving.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbOK := h.pingDatabase(r.Context())

	statusCode := http.StatusOK
	status := "ready"
	if !dbOK {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbOK,
			"ready_to_serve":     dbOK,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

func (h *Handler) pingDatabase(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.db.Ping(ctx) == nil
}
