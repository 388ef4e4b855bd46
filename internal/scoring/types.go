// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

var (
	// ErrCircuitOpen is returned when the breaker rejects a call.
	ErrCircuitOpen = errors.New("scoring service circuit breaker is open")

	// ErrRateLimited is returned when the local limiter cannot admit the call
	// before the context deadline, or the service keeps answering 429.
	ErrRateLimited = errors.New("scoring service rate limited")

	// ErrNotCached is returned by ScoreCache lookups that miss.
	ErrNotCached = errors.New("score not cached")
)

// ScoreRequest is the body sent to the scoring service.
type ScoreRequest struct {
	PlaceID       string           `json:"place_id"`
	Name          string           `json:"name"`
	Category      string           `json:"category,omitempty"`
	Companion     models.Companion `json:"companion"`
	ReviewsSample []string         `json:"reviews_sample,omitempty"`
}

// RequestForPlace builds the scoring request for one place.
func RequestForPlace(p *models.Place, companion models.Companion) ScoreRequest {
	return ScoreRequest{
		PlaceID:   p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Companion: companion.Normalize(),
	}
}

// Score is one companion-specific quality score.
type Score struct {
	PlaceID       string           `json:"place_id"`
	Companion     models.Companion `json:"companion"`
	Value         float64          `json:"score"`
	Justification string           `json:"justification,omitempty"`
	Sentiment     models.Sentiment `json:"sentiment"`
	ScoredAt      time.Time        `json:"scored_at"`
}

// Scorer produces a score for one place and companion type.
// *Client implements it; tests substitute stubs.
type Scorer interface {
	Score(ctx context.Context, req ScoreRequest) (*Score, error)
}

// PlaceStore is the subset of the place store used by the enricher and worker.
type PlaceStore interface {
	GetPlace(ctx context.Context, id string) (*models.Place, error)
	UpdateQuality(ctx context.Context, id string, score float64, justification string, sentiment models.Sentiment) error
	PlacesMissingQuality(ctx context.Context, limit int) ([]models.Place, error)
}

// RefreshQueue accepts score refresh requests for asynchronous processing.
type RefreshQueue interface {
	Enqueue(ctx context.Context, reqs ...RefreshRequest) error
}

// RefreshRequest asks the worker to (re)score one place for one companion.
type RefreshRequest struct {
	PlaceID     string           `json:"place_id"`
	Companion   models.Companion `json:"companion"`
	RequestedAt time.Time        `json:"requested_at"`
}

func (r RefreshRequest) key() string {
	return cacheKey(r.PlaceID, r.Companion)
}
