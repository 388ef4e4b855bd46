// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

// Package recommend ranks candidate venues for one user profile.
//
// # Pipeline
//
// A request runs through five stages, each a pure function of its inputs:
//
//  1. Eligibility: hard constraints (open now, budget tiers, special needs,
//     meal type) remove candidates before any scoring.
//  2. Match scoring: five sub-scores (budget, atmosphere, special needs,
//     meal type, companion-weighted reviews) combine into a 0-100 match
//     score, which is blended with a confidence-adjusted quality score plus
//     proximity and opening-soon bonuses.
//  3. Context adjustment: small bounded deltas for time of day, weekday
//     and weather.
//  4. Reranking: registered Reranker implementations (see the reranking
//     subpackage) apply diversity penalties and serendipity bonuses.
//  5. Sort and truncate: final score descending, then match score, then
//     distance.
//
// # Determinism
//
// The engine holds no per-request state and reads no clock unless the
// caller omits the context snapshot. Identical candidates, profile and
// snapshot always produce identical output.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.RegisterReranker(reranking.NewDiversity(cfg.Diversity))
//
//	snap := models.ContextFromTime(time.Now().In(loc))
//	places := engine.Recommend(ctx, candidates, profile, &snap, &opts)
//
// # Thread Safety
//
// Recommend may be called concurrently. RegisterReranker and SetClock take
// a lock and are intended for startup and tests.
package recommend
