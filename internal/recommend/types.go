// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"context"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// Reranker adjusts scores after contextual adjustment and before the final
// sort. Implementations must be deterministic and must not mutate their
// input slice; they return a new slice of the same items.
type Reranker interface {
	// Name returns the reranker identifier (e.g., "diversity").
	Name() string

	// Rerank returns items with adjusted scores. Running Rerank on its own
	// output with the same options must not change the result.
	Rerank(ctx context.Context, items []models.ScoredPlace, opts models.DiversityOptions) []models.ScoredPlace
}

// Clock returns the current time. Engines use it when a request carries no
// context snapshot.
type Clock func() time.Time

// Result is the outcome of one pipeline run.
type Result struct {
	// Places is the ranked, truncated output.
	Places []models.ScoredPlace

	// Candidates is the number of places that entered the filter.
	Candidates int

	// Eligible is the number of places that passed the filter.
	Eligible int

	// Excluded counts filtered places per rule.
	Excluded map[ExclusionRule]int

	// Context is the snapshot the request was evaluated in.
	Context models.Context

	// Duration is the pipeline wall time.
	Duration time.Duration
}
