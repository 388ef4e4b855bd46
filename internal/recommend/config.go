// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// weightSumTolerance is how far a weight table may drift from 1.0.
const weightSumTolerance = 0.01

// Config contains all configuration for the scoring pipeline.
type Config struct {
	// Match defines the contribution of each preference sub-score.
	Match MatchWeights `json:"match"`

	// Blend defines how the match score and quality score combine.
	Blend BlendConfig `json:"blend"`

	// Proximity lists distance bonus tiers, nearest first.
	Proximity []ProximityTier `json:"proximity"`

	// OpeningSoon contains the opening-soon bonus parameters.
	OpeningSoon OpeningSoonConfig `json:"opening_soon"`

	// Confidence contains the popularity-confidence prior.
	Confidence ConfidenceConfig `json:"confidence"`

	// Context contains the contextual adjustment deltas.
	Context ContextConfig `json:"context"`

	// Diversity contains parameters for diversity and serendipity reranking.
	Diversity DiversityConfig `json:"diversity"`

	// Filter contains eligibility switches.
	Filter FilterConfig `json:"filter"`

	// Limits contains result size limits.
	Limits LimitsConfig `json:"limits"`

	// ReviewWeights maps each companion to its sentiment category weights.
	// Each table must sum to 1.0; absent categories on a place are dropped
	// and the remaining weights renormalized.
	ReviewWeights map[models.Companion]map[models.SentimentCategory]float64 `json:"review_weights"`
}

// MatchWeights defines the relative contribution of each sub-score to the
// match score. The weights must sum to 1.0.
type MatchWeights struct {
	Budget       float64 `json:"budget"`
	Atmosphere   float64 `json:"atmosphere"`
	SpecialNeeds float64 `json:"special_needs"`
	MealType     float64 `json:"meal_type"`
	Review       float64 `json:"review"`

	// OrdinalStep is the penalty per step of ordinal distance.
	// Default: 25 (distance 4 scores 0).
	OrdinalStep float64 `json:"ordinal_step"`
}

// Sum returns the total of the five sub-score weights.
func (w MatchWeights) Sum() float64 {
	return w.Budget + w.Atmosphere + w.SpecialNeeds + w.MealType + w.Review
}

// BlendConfig weights the match score against the quality score.
type BlendConfig struct {
	MatchWeight   float64 `json:"match_weight"`
	QualityWeight float64 `json:"quality_weight"`
}

// ProximityTier awards Bonus to places at most MaxKm away.
type ProximityTier struct {
	MaxKm float64 `json:"max_km"`
	Bonus float64 `json:"bonus"`
}

// OpeningSoonConfig contains parameters for the opening-soon bonus.
type OpeningSoonConfig struct {
	// Bonus is added when a closed place opens within Horizon.
	// Default: 3.
	Bonus float64 `json:"bonus"`

	// Horizon is how far ahead an opening counts as "soon".
	// Default: 30 minutes.
	Horizon time.Duration `json:"horizon"`
}

// ConfidenceConfig contains the Bayesian-average parameters.
type ConfidenceConfig struct {
	// K is the pseudo-count of prior observations.
	// Default: 10.
	K float64 `json:"k"`

	// Prior is the neutral score small samples shrink toward.
	// Default: 50.
	Prior float64 `json:"prior"`
}

// ContextConfig contains the time-of-day and weather deltas.
type ContextConfig struct {
	// MaxDelta caps each individual delta and the total. Default: 5.
	MaxDelta float64 `json:"max_delta"`

	// MorningStartHour and MorningEndHour bound the breakfast window,
	// end exclusive. Default: 5-11.
	MorningStartHour int     `json:"morning_start_hour"`
	MorningEndHour   int     `json:"morning_end_hour"`
	MorningBoost     float64 `json:"morning_boost"`

	// LateStartHour and LateEndHour bound the late-evening window, which
	// wraps midnight, end exclusive. Default: 21-4.
	LateStartHour int     `json:"late_start_hour"`
	LateEndHour   int     `json:"late_end_hour"`
	LateBoost     float64 `json:"late_boost"`

	// NightlifeCategories are the categories boosted late in the evening.
	NightlifeCategories []string `json:"nightlife_categories"`

	PoorWeatherIndoorBoost    float64 `json:"poor_weather_indoor_boost"`
	PoorWeatherOutdoorPenalty float64 `json:"poor_weather_outdoor_penalty"`
	FairWeatherOutdoorBoost   float64 `json:"fair_weather_outdoor_boost"`
	WeekendBrunchStartHour    int     `json:"weekend_brunch_start_hour"`
	WeekendBrunchEndHour      int     `json:"weekend_brunch_end_hour"`
	WeekendBrunchBoost        float64 `json:"weekend_brunch_boost"`
}

// DiversityConfig contains parameters for diversity reranking.
type DiversityConfig struct {
	// PenaltyWeight is the per-repeat category penalty. Default: 3.
	PenaltyWeight float64 `json:"penalty_weight"`

	// CuisineFactor, AtmosphereFactor and LocationFactor scale
	// PenaltyWeight for the secondary dimensions. Default: 0.5 each.
	CuisineFactor    float64 `json:"cuisine_factor"`
	AtmosphereFactor float64 `json:"atmosphere_factor"`
	LocationFactor   float64 `json:"location_factor"`

	// MaxPenalty caps the total penalty per item. Default: 15.
	MaxPenalty float64 `json:"max_penalty"`

	// Window is how many top items are penalized. Default: 20.
	Window int `json:"window"`

	// LocationRadiusKm is the distance within which two places count as
	// the same location. Default: 0.3.
	LocationRadiusKm float64 `json:"location_radius_km"`

	// SerendipityWeight is the bonus for a place with no tag overlap with
	// history. Default: 5.
	SerendipityWeight float64 `json:"serendipity_weight"`

	// QualityFloor is the minimum pre-diversity score for a serendipity
	// bonus. Default: 60.
	QualityFloor float64 `json:"quality_floor"`
}

// FilterConfig contains eligibility switches.
type FilterConfig struct {
	// RequireOpenNow excludes places that are known to be closed.
	RequireOpenNow bool `json:"require_open_now"`

	// AdmitOpeningSoon keeps closed places whose next opening falls within
	// OpeningSoon.Horizon; they earn the opening-soon bonus instead.
	AdmitOpeningSoon bool `json:"admit_opening_soon"`

	// LateCloseMinute: a close at or after this minute of day counts as
	// open late. Default: 1380 (23:00).
	LateCloseMinute int `json:"late_close_minute"`

	// EarlyMorningMinute: a close or next-day open before this minute
	// counts as open late. Default: 360 (06:00).
	EarlyMorningMinute int `json:"early_morning_minute"`
}

// LimitsConfig contains result size limits.
type LimitsConfig struct {
	DefaultLimit int `json:"default_limit"`
	MaxLimit     int `json:"max_limit"`
}

// DefaultReviewWeights returns the companion weight tables.
func DefaultReviewWeights() map[models.Companion]map[models.SentimentCategory]float64 {
	return map[models.Companion]map[models.SentimentCategory]float64{
		models.CompanionAlone: {
			models.SentimentQuality:    0.30,
			models.SentimentPrice:      0.30,
			models.SentimentAtmosphere: 0.20,
			models.SentimentService:    0.20,
		},
		models.CompanionPartner: {
			models.SentimentQuality:    0.25,
			models.SentimentAtmosphere: 0.30,
			models.SentimentService:    0.25,
			models.SentimentPrice:      0.20,
		},
		models.CompanionFriends: {
			models.SentimentAtmosphere: 0.30,
			models.SentimentQuality:    0.25,
			models.SentimentService:    0.25,
			models.SentimentPrice:      0.20,
		},
		models.CompanionFamily: {
			models.SentimentCleanliness: 0.30,
			models.SentimentQuality:     0.25,
			models.SentimentService:     0.25,
			models.SentimentLocation:    0.20,
		},
		models.CompanionColleagues: {
			models.SentimentService:  0.30,
			models.SentimentQuality:  0.25,
			models.SentimentLocation: 0.25,
			models.SentimentPrice:    0.20,
		},
	}
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Match: MatchWeights{
			Budget:       0.20,
			Atmosphere:   0.25,
			SpecialNeeds: 0.20,
			MealType:     0.15,
			Review:       0.20,
			OrdinalStep:  25,
		},
		Blend: BlendConfig{
			MatchWeight:   0.6,
			QualityWeight: 0.4,
		},
		Proximity: []ProximityTier{
			{MaxKm: 1, Bonus: 10},
			{MaxKm: 2, Bonus: 7},
			{MaxKm: 3, Bonus: 5},
			{MaxKm: 5, Bonus: 3},
		},
		OpeningSoon: OpeningSoonConfig{
			Bonus:   3,
			Horizon: 30 * time.Minute,
		},
		Confidence: ConfidenceConfig{
			K:     10,
			Prior: 50,
		},
		Context: ContextConfig{
			MaxDelta:                  5,
			MorningStartHour:          5,
			MorningEndHour:            11,
			MorningBoost:              4,
			LateStartHour:             21,
			LateEndHour:               4,
			LateBoost:                 4,
			NightlifeCategories:       []string{"bar", "pub", "nightclub", "night_club", "nightlife", "cocktail_bar", "meyhane"},
			PoorWeatherIndoorBoost:    3,
			PoorWeatherOutdoorPenalty: 2,
			FairWeatherOutdoorBoost:   2,
			WeekendBrunchStartHour:    9,
			WeekendBrunchEndHour:      14,
			WeekendBrunchBoost:        2,
		},
		Diversity: DiversityConfig{
			PenaltyWeight:     3,
			CuisineFactor:     0.5,
			AtmosphereFactor:  0.5,
			LocationFactor:    0.5,
			MaxPenalty:        15,
			Window:            20,
			LocationRadiusKm:  0.3,
			SerendipityWeight: 5,
			QualityFloor:      60,
		},
		Filter: FilterConfig{
			RequireOpenNow:     true,
			AdmitOpeningSoon:   true,
			LateCloseMinute:    23 * 60,
			EarlyMorningMinute: 6 * 60,
		},
		Limits: LimitsConfig{
			DefaultLimit: models.DefaultLimit,
			MaxLimit:     models.MaxLimit,
		},
		ReviewWeights: DefaultReviewWeights(),
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // flat list of independent range checks
func (c *Config) Validate() error {
	if sum := c.Match.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("match weights must sum to 1.0, got %f", sum)
	}
	for name, w := range map[string]float64{
		"budget":        c.Match.Budget,
		"atmosphere":    c.Match.Atmosphere,
		"special_needs": c.Match.SpecialNeeds,
		"meal_type":     c.Match.MealType,
		"review":        c.Match.Review,
	} {
		if w < 0 {
			return fmt.Errorf("match.%s must be non-negative, got %f", name, w)
		}
	}
	if c.Match.OrdinalStep <= 0 {
		return fmt.Errorf("match.ordinal_step must be positive, got %f", c.Match.OrdinalStep)
	}

	if c.Blend.MatchWeight < 0 || c.Blend.QualityWeight < 0 {
		return fmt.Errorf("blend weights must be non-negative, got %f/%f", c.Blend.MatchWeight, c.Blend.QualityWeight)
	}
	if sum := c.Blend.MatchWeight + c.Blend.QualityWeight; math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("blend weights must sum to 1.0, got %f", sum)
	}

	for i, tier := range c.Proximity {
		if tier.MaxKm <= 0 {
			return fmt.Errorf("proximity[%d].max_km must be positive, got %f", i, tier.MaxKm)
		}
		if tier.Bonus < 0 {
			return fmt.Errorf("proximity[%d].bonus must be non-negative, got %f", i, tier.Bonus)
		}
	}

	if c.OpeningSoon.Bonus < 0 {
		return fmt.Errorf("opening_soon.bonus must be non-negative, got %f", c.OpeningSoon.Bonus)
	}
	if c.OpeningSoon.Horizon < 0 || c.OpeningSoon.Horizon > 24*time.Hour {
		return fmt.Errorf("opening_soon.horizon must be in [0, 24h], got %v", c.OpeningSoon.Horizon)
	}

	if c.Confidence.K < 0 {
		return fmt.Errorf("confidence.k must be non-negative, got %f", c.Confidence.K)
	}
	if c.Confidence.Prior < models.MinScore || c.Confidence.Prior > models.MaxScore {
		return fmt.Errorf("confidence.prior must be in [0, 100], got %f", c.Confidence.Prior)
	}

	if err := c.Context.validate(); err != nil {
		return err
	}
	if err := c.Diversity.validate(); err != nil {
		return err
	}

	if c.Filter.LateCloseMinute < 0 || c.Filter.LateCloseMinute >= 24*60 {
		return fmt.Errorf("filter.late_close_minute must be in [0, 1440), got %d", c.Filter.LateCloseMinute)
	}
	if c.Filter.EarlyMorningMinute < 0 || c.Filter.EarlyMorningMinute >= 24*60 {
		return fmt.Errorf("filter.early_morning_minute must be in [0, 1440), got %d", c.Filter.EarlyMorningMinute)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}

	return c.validateReviewWeights()
}

func (c *ContextConfig) validate() error {
	if c.MaxDelta < 0 || c.MaxDelta > 20 {
		return fmt.Errorf("context.max_delta must be in [0, 20], got %f", c.MaxDelta)
	}
	for name, h := range map[string]int{
		"morning_start_hour":        c.MorningStartHour,
		"morning_end_hour":          c.MorningEndHour,
		"late_start_hour":           c.LateStartHour,
		"late_end_hour":             c.LateEndHour,
		"weekend_brunch_start_hour": c.WeekendBrunchStartHour,
		"weekend_brunch_end_hour":   c.WeekendBrunchEndHour,
	} {
		if h < 0 || h > 24 {
			return fmt.Errorf("context.%s must be in [0, 24], got %d", name, h)
		}
	}
	return nil
}

func (c *DiversityConfig) validate() error {
	if c.PenaltyWeight < 0 {
		return fmt.Errorf("diversity.penalty_weight must be non-negative, got %f", c.PenaltyWeight)
	}
	if c.CuisineFactor < 0 || c.AtmosphereFactor < 0 || c.LocationFactor < 0 {
		return fmt.Errorf("diversity factors must be non-negative")
	}
	if c.MaxPenalty < 0 {
		return fmt.Errorf("diversity.max_penalty must be non-negative, got %f", c.MaxPenalty)
	}
	if c.Window < 1 {
		return fmt.Errorf("diversity.window must be positive, got %d", c.Window)
	}
	if c.LocationRadiusKm < 0 {
		return fmt.Errorf("diversity.location_radius_km must be non-negative, got %f", c.LocationRadiusKm)
	}
	if c.SerendipityWeight < 0 {
		return fmt.Errorf("diversity.serendipity_weight must be non-negative, got %f", c.SerendipityWeight)
	}
	if c.QualityFloor < models.MinScore || c.QualityFloor > models.MaxScore {
		return fmt.Errorf("diversity.quality_floor must be in [0, 100], got %f", c.QualityFloor)
	}
	return nil
}

func (c *Config) validateReviewWeights() error {
	companions := make([]string, 0, len(c.ReviewWeights))
	for comp := range c.ReviewWeights {
		companions = append(companions, string(comp))
	}
	sort.Strings(companions)

	for _, name := range companions {
		table := c.ReviewWeights[models.Companion(name)]
		sum := 0.0
		for cat, w := range table {
			if w < 0 {
				return fmt.Errorf("review_weights.%s.%s must be non-negative, got %f", name, cat, w)
			}
			sum += w
		}
		if math.Abs(sum-1) > weightSumTolerance {
			return fmt.Errorf("review_weights.%s must sum to 1.0, got %f", name, sum)
		}
	}
	if _, ok := c.ReviewWeights[models.DefaultCompanion]; !ok {
		return fmt.Errorf("review_weights must include the default companion %q", models.DefaultCompanion)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Proximity = append([]ProximityTier(nil), c.Proximity...)
	out.Context.NightlifeCategories = append([]string(nil), c.Context.NightlifeCategories...)
	out.ReviewWeights = make(map[models.Companion]map[models.SentimentCategory]float64, len(c.ReviewWeights))
	for comp, table := range c.ReviewWeights {
		inner := make(map[models.SentimentCategory]float64, len(table))
		for cat, w := range table {
			inner[cat] = w
		}
		out.ReviewWeights[comp] = inner
	}
	return &out
}

// MarshalJSON implements json.Marshaler with the horizon as a string.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		OpeningSoon struct {
			Bonus   float64 `json:"bonus"`
			Horizon string  `json:"horizon"`
		} `json:"opening_soon"`
	}{
		Alias: (*Alias)(c),
		OpeningSoon: struct {
			Bonus   float64 `json:"bonus"`
			Horizon string  `json:"horizon"`
		}{
			Bonus:   c.OpeningSoon.Bonus,
			Horizon: c.OpeningSoon.Horizon.String(),
		},
	})
}
