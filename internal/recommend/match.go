// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"math"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// sentimentOrder fixes the iteration order over review categories so the
// floating-point sum is reproducible.
var sentimentOrder = []models.SentimentCategory{
	models.SentimentService,
	models.SentimentPrice,
	models.SentimentQuality,
	models.SentimentAtmosphere,
	models.SentimentLocation,
	models.SentimentCleanliness,
	models.SentimentSpeed,
}

// MatchScorer computes preference-match sub-scores and the blended base
// score for each eligible place.
type MatchScorer struct {
	cfg        *Config
	confidence ConfidenceAdjuster
}

// NewMatchScorer creates a scorer. cfg must already be validated.
func NewMatchScorer(cfg *Config) *MatchScorer {
	return &MatchScorer{cfg: cfg, confidence: NewConfidenceAdjuster(cfg.Confidence)}
}

// OrdinalScore is max(0, 100 - step*|a-b|).
func OrdinalScore(a, b int, step float64) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return math.Max(models.MinScore, models.MaxScore-step*float64(d))
}

// Score builds the ScoredPlace for p: match details, match score, quality
// input and base score.
//
//nolint:gocritic // hugeParam: vec passed by value for immutability
func (s *MatchScorer) Score(p *models.Place, vec ProfileVector, snap models.Context) models.ScoredPlace {
	details := s.Details(p, vec, snap)
	match := models.RoundScore(s.combine(details))
	quality := s.confidence.QualityInput(p)

	base := float64(match)*s.cfg.Blend.MatchWeight + quality*s.cfg.Blend.QualityWeight
	base += s.ProximityBonus(p.DistanceKm)
	if IsOpeningSoon(p.Hours, snap, s.cfg.OpeningSoon.Horizon) {
		base += s.cfg.OpeningSoon.Bonus
	}
	baseScore := float64(models.RoundScore(base))

	sp := models.ScoredPlace{
		Place:        *p,
		MatchScore:   match,
		MatchDetails: details,
		QualityInput: quality,
		BaseScore:    baseScore,
	}
	sp.Recompute()
	return sp
}

// Details computes the five sub-scores.
//
//nolint:gocritic // hugeParam: vec passed by value for immutability
func (s *MatchScorer) Details(p *models.Place, vec ProfileVector, snap models.Context) models.MatchDetails {
	return models.MatchDetails{
		Budget:       s.budgetMatch(p, vec),
		Atmosphere:   s.atmosphereMatch(p, vec),
		SpecialNeeds: specialNeedsMatch(p, vec),
		MealType:     s.mealMatch(p, vec, snap),
		Review:       s.ReviewMatch(p.Sentiment, vec.Companion),
	}
}

func (s *MatchScorer) combine(d models.MatchDetails) float64 {
	w := s.cfg.Match
	return d.Budget*w.Budget +
		d.Atmosphere*w.Atmosphere +
		d.SpecialNeeds*w.SpecialNeeds +
		d.MealType*w.MealType +
		d.Review*w.Review
}

//nolint:gocritic // hugeParam: vec passed by value for immutability
func (s *MatchScorer) budgetMatch(p *models.Place, vec ProfileVector) float64 {
	if vec.BudgetTier == unset {
		return models.MaxScore
	}
	return OrdinalScore(int(p.PriceTier.Clamp()), vec.BudgetTier, s.cfg.Match.OrdinalStep)
}

//nolint:gocritic // hugeParam: vec passed by value for immutability
func (s *MatchScorer) atmosphereMatch(p *models.Place, vec ProfileVector) float64 {
	if vec.Atmosphere == unset {
		return models.MaxScore
	}
	idx := p.Atmosphere.Index()
	if idx == unset {
		return models.DefaultAtmosphereMatch
	}
	return OrdinalScore(idx, vec.Atmosphere, s.cfg.Match.OrdinalStep)
}

//nolint:gocritic // hugeParam: vec passed by value for immutability
func specialNeedsMatch(p *models.Place, vec ProfileVector) float64 {
	requested := vec.RequiredNeeds()
	if requested == 0 {
		return models.MaxScore
	}
	satisfied := 0
	for i, need := range models.SpecialNeedOrder {
		if i < len(vec.Needs) && vec.Needs[i] == 1 && p.Amenities.Has(need) {
			satisfied++
		}
	}
	return float64(satisfied) / float64(requested) * models.MaxScore
}

//nolint:gocritic // hugeParam: vec passed by value for immutability
func (s *MatchScorer) mealMatch(p *models.Place, vec ProfileVector, snap models.Context) float64 {
	switch vec.MealType {
	case models.MealAny:
		return models.MaxScore
	case models.MealLateNight:
		if IsOpenLate(p.Hours, snap, s.cfg.Filter) {
			return models.MaxScore
		}
		return models.MinScore
	default:
		if p.Meals.Serves(vec.MealType) {
			return models.MaxScore
		}
		return models.MinScore
	}
}

// ReviewMatch weights the sentiment breakdown by the companion's table,
// renormalizing over the categories present. No usable data scores
// DefaultReviewMatch.
func (s *MatchScorer) ReviewMatch(sent models.Sentiment, companion models.Companion) float64 {
	table, ok := s.cfg.ReviewWeights[companion.Normalize()]
	if !ok {
		table = s.cfg.ReviewWeights[models.DefaultCompanion]
	}

	var sum, weight float64
	for _, cat := range sentimentOrder {
		w, ok := table[cat]
		if !ok || w <= 0 {
			continue
		}
		v, ok := sent.Get(cat)
		if !ok {
			continue
		}
		sum += models.ClampScore(v) * w
		weight += w
	}
	if weight == 0 {
		return models.DefaultReviewMatch
	}
	return models.ClampScore(sum / weight)
}

// ProximityBonus returns the bonus of the first tier whose radius covers
// distanceKm. Tiers are checked nearest first.
func (s *MatchScorer) ProximityBonus(distanceKm float64) float64 {
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		distanceKm = 0
	}
	best := 0.0
	bestKm := math.Inf(1)
	for _, tier := range s.cfg.Proximity {
		if distanceKm <= tier.MaxKm && tier.MaxKm < bestKm {
			best, bestKm = tier.Bonus, tier.MaxKm
		}
	}
	return best
}
