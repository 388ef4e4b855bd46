// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package models

import "math"

// MatchDetails are the five preference sub-scores, each 0-100.
type MatchDetails struct {
	Budget       float64 `json:"budget"`
	Atmosphere   float64 `json:"atmosphere"`
	SpecialNeeds float64 `json:"special_needs"`
	MealType     float64 `json:"meal_type"`
	Review       float64 `json:"review"`
}

// ScoredPlace is a Place with its match details and scores for one request.
//
// The score breakdown is additive:
//
//	FinalScore = clamp(round(BaseScore + ContextDelta + DiversityDelta + SerendipityDelta))
//
// BaseScore is already clamped and rounded, and ContextDelta is the delta that
// survived re-clamping, so every stage after the base blend can be recomputed
// from its inputs without compounding earlier adjustments.
type ScoredPlace struct {
	Place

	MatchScore   int          `json:"match_score"`
	FinalScore   int          `json:"final_score"`
	MatchDetails MatchDetails `json:"match_details"`

	QualityInput     float64 `json:"quality_input"`
	BaseScore        float64 `json:"base_score"`
	ContextDelta     float64 `json:"context_delta,omitempty"`
	DiversityDelta   float64 `json:"diversity_delta,omitempty"`
	SerendipityDelta float64 `json:"serendipity_delta,omitempty"`
}

// PreDiversityScore is the score the diversity stage starts from.
func (s *ScoredPlace) PreDiversityScore() float64 {
	return ClampScore(s.BaseScore + s.ContextDelta)
}

// Recompute derives FinalScore from the breakdown.
func (s *ScoredPlace) Recompute() {
	s.FinalScore = RoundScore(s.BaseScore + s.ContextDelta + s.DiversityDelta + s.SerendipityDelta)
}

// RoundScore clamps v to the score range and rounds half away from zero.
func RoundScore(v float64) int {
	return int(math.Round(ClampScore(v)))
}
