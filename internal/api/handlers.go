// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package api

import (
	"context"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
	"github.com/AliTurkarslan/whereto-sub000/internal/recommend"
	"github.com/AliTurkarslan/whereto-sub000/internal/scoring"
)

// PlaceStore is the place store surface used by the handlers.
// *database.DB implements it.
type PlaceStore interface {
	Nearby(ctx context.Context, lat, lon, radiusKm float64, category string, limit int) ([]models.Place, error)
	GetPlace(ctx context.Context, id string) (*models.Place, error)
	GetPlaces(ctx context.Context, ids []string) ([]models.Place, error)
	UpsertPlaces(ctx context.Context, places []models.Place) (int, error)
	RecordChoice(ctx context.Context, userID, placeID string) error
	History(ctx context.Context, userID string, limit int) ([]models.Place, error)
	Ping(ctx context.Context) error
}

// ScoreEnricher fills companion-specific quality scores before ranking.
// *scoring.Enricher implements it.
type ScoreEnricher interface {
	Enrich(ctx context.Context, places []models.Place, companion models.Companion) (scoring.EnrichStats, error)
}

// BreakerReporter exposes the scoring circuit breaker state.
// *scoring.Client implements it.
type BreakerReporter interface {
	BreakerState() string
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response and decoding helpers
//   - handlers_health.go: health endpoints
//   - handlers_recommend.go: recommendation endpoint
//   - handlers_places.go: place ingestion and lookup, choices
type Handler struct {
	db        PlaceStore
	engine    *recommend.Engine
	enricher  ScoreEnricher
	breaker   BreakerReporter
	config    *config.Config
	location  *time.Location
	startTime time.Time
	version   string
	now       func() time.Time
}

// NewHandler creates a handler. The enricher and breaker reporter are
// optional and set afterwards.
func NewHandler(db PlaceStore, engine *recommend.Engine, cfg *config.Config) *Handler {
	loc := time.UTC
	if cfg != nil {
		loc = cfg.Location()
	}
	return &Handler{
		db:        db,
		engine:    engine,
		config:    cfg,
		location:  loc,
		startTime: time.Now(),
		version:   "dev",
		now:       time.Now,
	}
}

// SetEnricher sets the score enricher used on the recommendation path.
func (h *Handler) SetEnricher(e ScoreEnricher) {
	h.enricher = e
}

// SetBreakerReporter sets the source of the scoring breaker state reported
// by the health endpoint.
func (h *Handler) SetBreakerReporter(b BreakerReporter) {
	h.breaker = b
}

// SetVersion sets the version reported by the health endpoint.
func (h *Handler) SetVersion(v string) {
	if v != "" {
		h.version = v
	}
}

func (h *Handler) maxBodyBytes() int64 {
	if h.config != nil && h.config.Security.MaxBodyBytes > 0 {
		return h.config.Security.MaxBodyBytes
	}
	return defaultMaxBodyBytes
}

func (h *Handler) requestTimeout() time.Duration {
	if h.config != nil && h.config.Server.Timeout > 0 {
		return h.config.Server.Timeout
	}
	return defaultRequestTimeout
}
