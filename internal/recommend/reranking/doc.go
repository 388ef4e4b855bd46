// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

// Package reranking implements post-scoring adjustments for result diversity.
//
// Rerankers run after contextual adjustment and before the engine's final
// sort. They never drop items; they only add score deltas, so a reranker can
// push a redundant venue down but cannot hide it.
//
// # Interface
//
// All rerankers implement the recommend.Reranker interface:
//
//	type Reranker interface {
//	    Name() string
//	    Rerank(ctx context.Context, items []models.ScoredPlace, opts models.DiversityOptions) []models.ScoredPlace
//	}
//
// # Usage Example
//
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	engine.RegisterReranker(reranking.NewDiversity(cfg.Diversity))
//
// # Diversity
//
// The window of top items is walked in pre-diversity order. Each repeat of a
// category, primary cuisine, atmosphere or nearby location among the items
// already walked costs a growing penalty:
//
//	penalty(k-th repeat) = weight * k * factor
//
// summed over dimensions and capped at MaxPenalty. Dimensions that are
// uniform across the window (for example the category a query was filtered
// by) are ignored.
//
// # Serendipity
//
// With a history of past choices, a place earns
//
//	bonus = SerendipityWeight * (1 - max_h Jaccard(tags(place), tags(h)))
//
// provided its pre-diversity score is at least QualityFloor. Tags are the
// category, cuisines and atmosphere of a place.
//
// # Idempotence
//
// Deltas are always recomputed from BaseScore + ContextDelta, never from a
// previous FinalScore, so reranking a reranked list is a no-op.
//
// # Thread Safety
//
// Rerankers are stateless and safe for concurrent use. Per-call state such as
// the spatial grid is allocated inside Rerank.
package reranking
