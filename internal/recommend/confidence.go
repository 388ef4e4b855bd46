// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"math"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// ratingToScore converts a 0-5 star rating to the 0-100 score scale.
const ratingToScore = 20

// ConfidenceAdjuster shrinks a quality score toward a neutral prior when
// it rests on few reviews (a Bayesian average):
//
//	adjusted = (K*Prior + n*raw) / (K + n)
//
// The prior is fixed, never derived from the place's own rating, so a high
// rating with a handful of reviews cannot vouch for itself.
type ConfidenceAdjuster struct {
	K     float64
	Prior float64
}

// NewConfidenceAdjuster creates an adjuster from configuration.
func NewConfidenceAdjuster(cfg ConfidenceConfig) ConfidenceAdjuster {
	return ConfidenceAdjuster(cfg)
}

// Adjust applies the Bayesian average to raw with sample size n.
// Negative n counts as zero.
func (a ConfidenceAdjuster) Adjust(raw float64, n int) float64 {
	if n < 0 {
		n = 0
	}
	denom := a.K + float64(n)
	if denom <= 0 {
		return models.ClampScore(raw)
	}
	return models.ClampScore((a.K*a.Prior + float64(n)*models.ClampScore(raw)) / denom)
}

// QualityInput returns the quality score that enters the blend:
//   - the external score as is when it is already adjusted;
//   - the external score adjusted by review count otherwise;
//   - else the star rating scaled to 0-100, adjusted;
//   - else DefaultQualityScore, unadjusted.
func (a ConfidenceAdjuster) QualityInput(p *models.Place) float64 {
	if p.QualityScore != nil && !math.IsNaN(*p.QualityScore) {
		if p.QualityAdjusted {
			return models.ClampScore(*p.QualityScore)
		}
		return a.Adjust(*p.QualityScore, p.Reviews())
	}
	if p.Rating != nil && !math.IsNaN(*p.Rating) {
		rating := math.Max(0, math.Min(models.MaxRating, *p.Rating))
		return a.Adjust(math.Round(rating*ratingToScore), p.Reviews())
	}
	return models.DefaultQualityScore
}
