// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": [{"id": "p1", "name": "Kahve Durağı", "final_score": 82, ...}],
//	  "metadata": {
//	    "timestamp": "2026-03-14T08:00:00Z",
//	    "request_id": "7f1c2e9a-...",
//	    "query_time_ms": 12,
//	    "count": 1
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "Request validation failed",
//	    "details": {"profile.budget": "must be one of: budget moderate premium any"}
//	  },
//	  "metadata": {"timestamp": "2026-03-14T08:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - RequestID: Request identifier echoed from the X-Request-ID header
//   - QueryTimeMS: Store and pipeline time in milliseconds
//   - Count: Number of items in Data when it is a list
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Count       *int      `json:"count,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - DATABASE_ERROR: Place store failure
//   - NOT_FOUND: Resource doesn't exist
//   - RATE_LIMIT_EXCEEDED: Too many requests
//   - INTERNAL_ERROR: Anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendationRequest is the body of POST /api/v1/recommendations.
type RecommendationRequest struct {
	Profile Profile  `json:"profile" validate:"required"`
	Context *Context `json:"context,omitempty"`
	// HistoryIDs are previously chosen place IDs, most recent first. When
	// empty and the profile carries a user ID, stored history is used.
	HistoryIDs      []string `json:"history_ids,omitempty" validate:"omitempty,max=100,dive,max=128,placeid"`
	DiversityWeight *float64 `json:"diversity_weight,omitempty" validate:"omitempty,gte=0,lte=20"`
}

// RecommendationResponse is the data payload of a recommendation response.
type RecommendationResponse struct {
	Places      []ScoredPlace `json:"places"`
	Candidates  int           `json:"candidates"`
	Eligible    int           `json:"eligible"`
	PendingRefs int           `json:"pending_scores,omitempty"`
	Context     Context       `json:"context"`
}

// PlaceBatch is the body of POST /api/v1/places.
type PlaceBatch struct {
	Places []Place `json:"places" validate:"required,min=1,max=500,dive"`
}

// ChoiceRequest is the body of POST /api/v1/choices.
type ChoiceRequest struct {
	UserID  string `json:"user_id" validate:"required,max=128"`
	PlaceID string `json:"place_id" validate:"required,max=128,placeid"`
}

// HealthStatus is the data payload of GET /api/v1/health.
type HealthStatus struct {
	Status         string    `json:"status"`
	Version        string    `json:"version"`
	DatabaseOK     bool      `json:"database_ok"`
	ScoringBreaker string    `json:"scoring_breaker"`
	Uptime         float64   `json:"uptime_seconds"`
	CheckedAt      time.Time `json:"checked_at"`
}
