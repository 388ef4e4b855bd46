// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
	"github.com/AliTurkarslan/whereto-sub000/internal/metrics"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
	"github.com/AliTurkarslan/whereto-sub000/internal/scoring"
)

// Recommendations handles POST /api/v1/recommendations.
//
// Store failures answer 500 DATABASE_ERROR. Enrichment and history lookup
// failures are logged and the request proceeds without them.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendationRequest
	if !decodeJSONBody(w, r, &req, h.maxBodyBytes()) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout())
	defer cancel()

	profile := req.Profile
	profile.Companion = profile.Companion.Normalize()
	snapshot := h.resolveContext(req.Context)

	candidates, err := h.db.Nearby(ctx, profile.Latitude, profile.Longitude, profile.RadiusKm, profile.Category, 0)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to load candidate places", err)
		return
	}

	var enrich scoring.EnrichStats
	if h.enricher != nil && len(candidates) > 0 {
		enrich, err = h.enricher.Enrich(ctx, candidates, profile.Companion)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Score enrichment incomplete")
		}
	}

	opts := models.DiversityOptions{
		PenaltyWeight: req.DiversityWeight,
		History:       h.loadHistory(ctx, &req),
	}

	result := h.engine.RecommendWithStats(ctx, candidates, profile, &snapshot, &opts)

	excluded := make(map[string]int, len(result.Excluded))
	for rule, n := range result.Excluded {
		excluded[string(rule)] = n
	}
	metrics.RecordRecommendation(string(profile.Companion), result.Candidates, result.Eligible, len(result.Places), excluded, result.Duration)

	logging.Ctx(ctx).Debug().
		Str("companion", string(profile.Companion)).
		Int("candidates", result.Candidates).
		Int("eligible", result.Eligible).
		Int("returned", len(result.Places)).
		Int("score_hits", enrich.Hits).
		Int("score_pending", enrich.Pending()).
		Msg("Recommendations served")

	count := len(result.Places)
	respondSuccess(w, r, http.StatusOK, models.RecommendationResponse{
		Places:      result.Places,
		Candidates:  result.Candidates,
		Eligible:    result.Eligible,
		PendingRefs: enrich.Pending(),
		Context:     result.Context,
	}, &count, start)
}

// resolveContext returns the request snapshot, or one taken from the server
// clock in the configured time zone.
func (h *Handler) resolveContext(c *models.Context) models.Context {
	if c != nil {
		return c.Normalize()
	}
	return models.ContextFromTime(h.now().In(h.location))
}

// loadHistory returns the places behind the request's history IDs, or the
// stored history of the profile's user when none are given.
func (h *Handler) loadHistory(ctx context.Context, req *models.RecommendationRequest) []models.Place {
	var (
		history []models.Place
		err     error
	)
	switch {
	case len(req.HistoryIDs) > 0:
		history, err = h.db.GetPlaces(ctx, req.HistoryIDs)
	case req.Profile.UserID != "":
		history, err = h.db.History(ctx, req.Profile.UserID, 0)
	default:
		return nil
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to load choice history, ranking without it")
		return nil
	}
	return history
}
