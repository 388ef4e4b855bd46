// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package models

import "math"

// Neutral defaults, one per field. Every "missing means neutral" decision in
// the pipeline reads from this table.
const (
	// DefaultQualityScore is used when a place has neither an external
	// quality score nor a star rating.
	DefaultQualityScore = 50.0

	// DefaultAtmosphereMatch is used when the place has no atmosphere tag or
	// an unknown one.
	DefaultAtmosphereMatch = 50.0

	// DefaultReviewMatch is used when the place has no sentiment breakdown.
	DefaultReviewMatch = 50.0

	// DefaultReviewCount is the sample size assumed when review volume is unknown.
	DefaultReviewCount = 0

	// DefaultLimit is the result size when the profile does not set one.
	DefaultLimit = 10

	// MaxLimit bounds the result size a caller may request.
	MaxLimit = 50

	// DefaultCompanion is assumed when the profile omits the companion type.
	DefaultCompanion = CompanionAlone

	// OpenWhenUnknown: a place without any opening-hours data is treated as open.
	OpenWhenUnknown = true

	// LateWhenUnknown: "open late" is an affirmative claim and needs data.
	LateWhenUnknown = false

	// MinScore and MaxScore bound every emitted score.
	MinScore = 0.0
	MaxScore = 100.0

	// MaxPriceTier is the highest price tier.
	MaxPriceTier = 4

	// MaxRating is the top of the star rating scale.
	MaxRating = 5.0
)

// ClampScore bounds v to [MinScore, MaxScore].
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
