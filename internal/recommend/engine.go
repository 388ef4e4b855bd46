// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// Note: This package depends only on models and cache. The place store and
// scoring client feed it candidates; it never reaches back into them.

// Engine runs the scoring pipeline: filter, match-score, context-adjust,
// rerank, sort and truncate. It holds no per-request state and is safe for
// concurrent use once rerankers are registered.
type Engine struct {
	config *Config
	logger zerolog.Logger

	filter     *EligibilityFilter
	scorer     *MatchScorer
	contextual *ContextAdjuster

	rerankers []Reranker
	rrMu      sync.RWMutex

	clock   Clock
	clockMu sync.RWMutex

	requestCount atomic.Int64
}

// Stats holds engine counters.
type Stats struct {
	Requests  int64    `json:"requests"`
	Rerankers []string `json:"rerankers"`
}

// NewEngine creates a new engine. The configuration is copied, so later
// changes by the caller have no effect.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()

	return &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "recommend").Logger(),
		filter:     NewEligibilityFilter(cfg),
		scorer:     NewMatchScorer(cfg),
		contextual: NewContextAdjuster(cfg),
		rerankers:  make([]Reranker, 0),
		clock:      time.Now,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// SetClock replaces the clock used when no context snapshot is supplied.
func (e *Engine) SetClock(c Clock) {
	if c == nil {
		c = time.Now
	}
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	e.clock = c
}

// RegisterReranker appends a reranker to the post-processing pipeline.
// Rerankers run in registration order.
func (e *Engine) RegisterReranker(rr Reranker) {
	e.rrMu.Lock()
	defer e.rrMu.Unlock()

	e.rerankers = append(e.rerankers, rr)
	e.logger.Info().
		Str("reranker", rr.Name()).
		Msg("registered reranker")
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() Stats {
	rerankers := e.getRerankers()
	names := make([]string, len(rerankers))
	for i, rr := range rerankers {
		names[i] = rr.Name()
	}
	return Stats{Requests: e.requestCount.Load(), Rerankers: names}
}

// Now returns the current context snapshot from the engine clock.
func (e *Engine) Now() models.Context {
	e.clockMu.RLock()
	clock := e.clock
	e.clockMu.RUnlock()
	return models.ContextFromTime(clock())
}

// Recommend ranks candidates for profile and returns at most the profile's
// limit. A nil snapshot is taken from the engine clock; nil opts disables
// history-based serendipity and uses the configured penalty weight.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, candidates []models.Place, profile models.Profile, snapshot *models.Context, opts *models.DiversityOptions) []models.ScoredPlace {
	return e.RecommendWithStats(ctx, candidates, profile, snapshot, opts).Places
}

// RecommendWithStats is Recommend plus filter and timing statistics.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (e *Engine) RecommendWithStats(ctx context.Context, candidates []models.Place, profile models.Profile, snapshot *models.Context, opts *models.DiversityOptions) Result {
	start := time.Now()
	e.requestCount.Add(1)

	snap := e.resolveContext(snapshot)
	var options models.DiversityOptions
	if opts != nil {
		options = *opts
	}

	places := make([]models.Place, len(candidates))
	for i := range candidates {
		places[i] = candidates[i].Normalize()
	}

	eligible, excluded := e.filter.Filter(places, profile, snap)
	result := Result{
		Candidates: len(candidates),
		Eligible:   len(eligible),
		Excluded:   excluded,
		Context:    snap,
	}

	if len(eligible) == 0 {
		result.Places = []models.ScoredPlace{}
		result.Duration = time.Since(start)
		e.logger.Debug().
			Int("candidates", len(candidates)).
			Interface("excluded", excluded).
			Msg("no eligible candidates")
		return result
	}

	vec := NewProfileVector(profile)
	scored := make([]models.ScoredPlace, len(eligible))
	for i := range eligible {
		scored[i] = e.scorer.Score(&eligible[i], vec, snap)
	}

	e.contextual.Adjust(scored, snap)

	for _, rr := range e.getRerankers() {
		scored = rr.Rerank(ctx, scored, options)
	}

	SortScored(scored)
	if limit := e.LimitFor(profile); len(scored) > limit {
		scored = scored[:limit]
	}

	result.Places = scored
	result.Duration = time.Since(start)

	e.logger.Debug().
		Int("candidates", result.Candidates).
		Int("eligible", result.Eligible).
		Int("returned", len(scored)).
		Dur("duration", result.Duration).
		Msg("recommendation complete")

	return result
}

// SortScored orders items by final score descending, then match score
// descending, then distance ascending. Equal items keep their input order.
func SortScored(items []models.ScoredPlace) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		return a.DistanceKm < b.DistanceKm
	})
}

func (e *Engine) resolveContext(snapshot *models.Context) models.Context {
	if snapshot != nil {
		return snapshot.Normalize()
	}
	return e.Now()
}

// LimitFor returns the number of places a recommendation for profile may
// return: the configured default when unset, capped at the configured maximum.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (e *Engine) LimitFor(profile models.Profile) int {
	limit := profile.Limit
	if limit <= 0 {
		limit = e.config.Limits.DefaultLimit
	}
	if limit > e.config.Limits.MaxLimit {
		limit = e.config.Limits.MaxLimit
	}
	return limit
}

func (e *Engine) getRerankers() []Reranker {
	e.rrMu.RLock()
	defer e.rrMu.RUnlock()

	out := make([]Reranker, len(e.rerankers))
	copy(out, e.rerankers)
	return out
}
