// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

const defaultMaxConcurrency = 4

// EnrichStats summarizes one Enrich call.
type EnrichStats struct {
	Hits    int `json:"hits"`
	Fetched int `json:"fetched"`
	Queued  int `json:"queued"`
	Failed  int `json:"failed"`
}

// Pending is the number of candidates ranked without a companion score.
func (s EnrichStats) Pending() int {
	return s.Queued + s.Failed
}

// Enricher attaches companion-specific quality scores to candidates before
// ranking.
//
// Cached scores are always used. Misses are either fetched inline, bounded
// by MaxConcurrency, or handed to the refresh queue. A candidate that ends
// up without a score is still ranked; the engine falls back to its rating.
type Enricher struct {
	cache          *ScoreCache
	scorer         Scorer
	store          PlaceStore
	queue          RefreshQueue
	maxConcurrency int
	fetchInline    bool
	now            func() time.Time
}

// NewEnricher creates an enricher. scorer, store and queue may be nil:
// without a scorer nothing is fetched inline, without a store fetched scores
// are only cached, and without a queue misses are dropped.
func NewEnricher(c *ScoreCache, scorer Scorer, store PlaceStore, queue RefreshQueue, cfg *config.ScoringConfig) *Enricher {
	e := &Enricher{
		cache:          c,
		scorer:         scorer,
		store:          store,
		queue:          queue,
		maxConcurrency: defaultMaxConcurrency,
		now:            time.Now,
	}
	if cfg != nil {
		if cfg.MaxConcurrency > 0 {
			e.maxConcurrency = cfg.MaxConcurrency
		}
		e.fetchInline = cfg.EnrichOnRequest && cfg.Enabled
	}
	return e
}

// needsLookup reports whether a candidate should consult the score cache.
// The store already holds the default-companion score, so those candidates
// are complete as loaded.
func needsLookup(p *models.Place, companion models.Companion) bool {
	return p.QualityScore == nil || companion != models.DefaultCompanion
}

// Enrich updates places in place and returns what happened. It returns an
// error only when ctx is done.
func (e *Enricher) Enrich(ctx context.Context, places []models.Place, companion models.Companion) (EnrichStats, error) {
	var stats EnrichStats
	if e == nil || e.cache == nil || len(places) == 0 {
		return stats, nil
	}
	companion = companion.Normalize()

	var misses []int
	for i := range places {
		p := &places[i]
		if !needsLookup(p, companion) {
			continue
		}
		s, err := e.cache.Get(ctx, p.ID, companion)
		switch {
		case err == nil:
			applyScore(p, s)
			stats.Hits++
		case errors.Is(err, ErrNotCached):
			misses = append(misses, i)
		case ctx.Err() != nil:
			return stats, ctx.Err()
		default:
			logging.Ctx(ctx).Warn().Err(err).Str("place_id", p.ID).Msg("Score cache lookup failed")
			misses = append(misses, i)
		}
	}

	if len(misses) == 0 {
		return stats, nil
	}

	var unresolved []int
	if e.fetchInline && e.scorer != nil {
		fetched, failed, err := e.fetch(ctx, places, misses, companion)
		if err != nil {
			return stats, err
		}
		stats.Fetched = fetched
		stats.Failed = len(failed)
		unresolved = failed
	} else {
		unresolved = misses
	}

	if len(unresolved) > 0 && e.queue != nil {
		reqs := make([]RefreshRequest, 0, len(unresolved))
		for _, i := range unresolved {
			reqs = append(reqs, RefreshRequest{
				PlaceID:     places[i].ID,
				Companion:   companion,
				RequestedAt: e.now().UTC(),
			})
		}
		if err := e.queue.Enqueue(ctx, reqs...); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("count", len(reqs)).Msg("Failed to queue score refresh")
		} else if !e.fetchInline || e.scorer == nil {
			stats.Queued = len(reqs)
		}
	}

	return stats, nil
}

// fetch scores the missed candidates concurrently. Scoring failures are not
// fatal; their indexes are returned in failed.
func (e *Enricher) fetch(ctx context.Context, places []models.Place, misses []int, companion models.Companion) (int, []int, error) {
	results := make([]*Score, len(misses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)
	for slot, idx := range misses {
		req := RequestForPlace(&places[idx], companion)
		g.Go(func() error {
			s, err := e.scorer.Score(gctx, req)
			if err != nil {
				logging.Ctx(ctx).Debug().Err(err).Str("place_id", req.PlaceID).Msg("Inline scoring failed")
				return nil
			}
			results[slot] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	fetched := 0
	var failed []int
	for slot, idx := range misses {
		s := results[slot]
		if s == nil {
			failed = append(failed, idx)
			continue
		}
		if err := storeScore(ctx, e.cache, e.store, s); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("place_id", s.PlaceID).Msg("Failed to store fetched score")
		}
		applyScore(&places[idx], s)
		fetched++
	}
	return fetched, failed, nil
}

// applyScore copies a raw companion score onto a candidate. The engine
// applies the popularity-confidence correction afterwards.
func applyScore(p *models.Place, s *Score) {
	v := s.Value
	p.QualityScore = &v
	p.QualityAdjusted = false
	if s.Justification != "" {
		p.Justification = s.Justification
	}
	if !s.Sentiment.IsEmpty() {
		p.Sentiment = s.Sentiment
	}
}

// storeScore caches s and, for the default companion, persists it as the
// place's stored quality score.
func storeScore(ctx context.Context, c *ScoreCache, store PlaceStore, s *Score) error {
	if c != nil {
		if err := c.Put(ctx, s); err != nil {
			return err
		}
	}
	if store == nil || s.Companion.Normalize() != models.DefaultCompanion {
		return nil
	}
	if err := store.UpdateQuality(ctx, s.PlaceID, s.Value, s.Justification, s.Sentiment); err != nil {
		return fmt.Errorf("persist score for %s: %w", s.PlaceID, err)
	}
	return nil
}
