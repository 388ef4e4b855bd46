// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Atmosphere is the venue mood tag. The vocabulary is ordinal: the index of a
// tag in atmosphereOrder is its position on the quiet..formal scale.
type Atmosphere string

const (
	AtmosphereQuiet    Atmosphere = "quiet"
	AtmosphereLively   Atmosphere = "lively"
	AtmosphereRomantic Atmosphere = "romantic"
	AtmosphereCasual   Atmosphere = "casual"
	AtmosphereFormal   Atmosphere = "formal"

	// AtmosphereAny is only meaningful as a preference.
	AtmosphereAny Atmosphere = "any"
)

var atmosphereOrder = []Atmosphere{
	AtmosphereQuiet,
	AtmosphereLively,
	AtmosphereRomantic,
	AtmosphereCasual,
	AtmosphereFormal,
}

// Index returns the ordinal position of the tag, or -1 for empty, "any" and
// unknown values.
func (a Atmosphere) Index() int {
	norm := Atmosphere(strings.ToLower(strings.TrimSpace(string(a))))
	for i, v := range atmosphereOrder {
		if v == norm {
			return i
		}
	}
	return -1
}

// PriceTier is the ordinal price level, 0 (free) to 4 (very expensive).
// It decodes from a number, a numeric string, a "$$" string or a named level.
type PriceTier int

var priceTierNames = map[string]PriceTier{
	"free":                       0,
	"price_level_free":           0,
	"inexpensive":                1,
	"cheap":                      1,
	"price_level_inexpensive":    1,
	"moderate":                   2,
	"price_level_moderate":       2,
	"expensive":                  3,
	"price_level_expensive":      3,
	"very_expensive":             4,
	"very expensive":             4,
	"price_level_very_expensive": 4,
	"price_level_unspecified":    2,
}

// UnmarshalJSON normalizes the loose price-level shapes seen upstream.
// Unrecognized strings decode to the moderate tier rather than failing.
func (p *PriceTier) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = PriceTier(math.Round(n)).Clamp()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("price tier: %w", err)
	}
	*p = ParsePriceTier(s)
	return nil
}

// ParsePriceTier converts a textual price level to a tier.
func ParsePriceTier(s string) PriceTier {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 2
	}
	if strings.Trim(s, "$₺€£") == "" {
		return PriceTier(len([]rune(s))).Clamp()
	}
	if v, err := strconv.Atoi(s); err == nil {
		return PriceTier(v).Clamp()
	}
	if v, ok := priceTierNames[s]; ok {
		return v
	}
	return 2
}

// Clamp bounds the tier to 0..MaxPriceTier.
func (p PriceTier) Clamp() PriceTier {
	if p < 0 {
		return 0
	}
	if p > MaxPriceTier {
		return MaxPriceTier
	}
	return p
}

// Amenities are the binary venue features special needs are checked against.
type Amenities struct {
	WheelchairAccessible bool `json:"wheelchair_accessible"`
	PetFriendly          bool `json:"pet_friendly"`
	KidFriendly          bool `json:"kid_friendly"`
	Parking              bool `json:"parking"`
	Wifi                 bool `json:"wifi"`
	VegetarianOptions    bool `json:"vegetarian_options"`
	VeganOptions         bool `json:"vegan_options"`
	OutdoorSeating       bool `json:"outdoor_seating"`
	IndoorSeating        bool `json:"indoor_seating"`
	LiveMusic            bool `json:"live_music"`
	Reservations         bool `json:"reservations"`
}

// Has reports whether the amenity backing need is present.
func (a Amenities) Has(need SpecialNeed) bool {
	switch need {
	case NeedWheelchair:
		return a.WheelchairAccessible
	case NeedPetFriendly:
		return a.PetFriendly
	case NeedKidFriendly:
		return a.KidFriendly
	case NeedParking:
		return a.Parking
	case NeedWifi:
		return a.Wifi
	case NeedVegetarian:
		return a.VegetarianOptions
	case NeedVegan:
		return a.VeganOptions
	case NeedOutdoorSeating:
		return a.OutdoorSeating
	case NeedIndoorSeating:
		return a.IndoorSeating
	case NeedLiveMusic:
		return a.LiveMusic
	default:
		return false
	}
}

// Meals are the meal-serving flags.
type Meals struct {
	Breakfast bool `json:"breakfast"`
	Lunch     bool `json:"lunch"`
	Dinner    bool `json:"dinner"`
	Brunch    bool `json:"brunch"`
}

// Serves reports whether the stored flag for meal is set. Late night is not a
// stored flag; it is derived from opening hours by the recommend package.
func (m Meals) Serves(meal MealType) bool {
	switch meal {
	case MealBreakfast:
		return m.Breakfast
	case MealLunch:
		return m.Lunch
	case MealDinner:
		return m.Dinner
	case MealBrunch:
		return m.Brunch
	default:
		return false
	}
}

// SentimentCategory names one dimension of the review-sentiment breakdown.
type SentimentCategory string

const (
	SentimentService     SentimentCategory = "service"
	SentimentPrice       SentimentCategory = "price"
	SentimentQuality     SentimentCategory = "quality"
	SentimentAtmosphere  SentimentCategory = "atmosphere"
	SentimentLocation    SentimentCategory = "location"
	SentimentCleanliness SentimentCategory = "cleanliness"
	SentimentSpeed       SentimentCategory = "speed"
)

// Sentiment is the per-category review sentiment, each 0-100 when present.
type Sentiment struct {
	Service     *float64 `json:"service,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quality     *float64 `json:"quality,omitempty"`
	Atmosphere  *float64 `json:"atmosphere,omitempty"`
	Location    *float64 `json:"location,omitempty"`
	Cleanliness *float64 `json:"cleanliness,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
}

// Get returns the sub-score for cat and whether it is present.
func (s Sentiment) Get(cat SentimentCategory) (float64, bool) {
	var v *float64
	switch cat {
	case SentimentService:
		v = s.Service
	case SentimentPrice:
		v = s.Price
	case SentimentQuality:
		v = s.Quality
	case SentimentAtmosphere:
		v = s.Atmosphere
	case SentimentLocation:
		v = s.Location
	case SentimentCleanliness:
		v = s.Cleanliness
	case SentimentSpeed:
		v = s.Speed
	}
	if v == nil || math.IsNaN(*v) {
		return 0, false
	}
	return *v, true
}

// IsEmpty reports whether no category is present.
func (s Sentiment) IsEmpty() bool {
	return s.Service == nil && s.Price == nil && s.Quality == nil && s.Atmosphere == nil &&
		s.Location == nil && s.Cleanliness == nil && s.Speed == nil
}

// Clamped returns a copy with every present value clamped to 0-100.
// NaN values are dropped.
func (s Sentiment) Clamped() Sentiment {
	c := func(v *float64) *float64 {
		if v == nil || math.IsNaN(*v) {
			return nil
		}
		out := ClampScore(*v)
		return &out
	}
	return Sentiment{
		Service:     c(s.Service),
		Price:       c(s.Price),
		Quality:     c(s.Quality),
		Atmosphere:  c(s.Atmosphere),
		Location:    c(s.Location),
		Cleanliness: c(s.Cleanliness),
		Speed:       c(s.Speed),
	}
}

// Place is one candidate venue.
type Place struct {
	ID        string   `json:"id" validate:"required,max=128,placeid"`
	Name      string   `json:"name" validate:"required,max=256"`
	Address   string   `json:"address,omitempty"`
	Latitude  float64  `json:"latitude" validate:"latitude"`
	Longitude float64  `json:"longitude" validate:"longitude"`
	Category  string   `json:"category,omitempty"`
	Cuisines  []string `json:"cuisines,omitempty"`

	// DistanceKm is the distance from the requesting user, filled in by the
	// place store for each query.
	DistanceKm float64 `json:"distance_km"`

	PriceTier   PriceTier `json:"price_tier"`
	Rating      *float64  `json:"rating,omitempty"`
	ReviewCount *int      `json:"review_count,omitempty"`

	Amenities  Amenities    `json:"amenities"`
	Meals      Meals        `json:"meals"`
	Atmosphere Atmosphere   `json:"atmosphere,omitempty"`
	Hours      OpeningHours `json:"opening_hours"`
	Sentiment  Sentiment    `json:"sentiment"`

	// QualityScore is the externally computed 0-100 score.
	QualityScore *float64 `json:"quality_score,omitempty"`
	// QualityAdjusted is true when QualityScore already carries the
	// popularity-confidence correction.
	QualityAdjusted bool   `json:"quality_adjusted,omitempty"`
	Justification   string `json:"justification,omitempty"`
}

// Normalize clamps out-of-range values into their valid ranges. It never
// fails: upstream validation is the ingestion boundary's concern.
func (p Place) Normalize() Place {
	out := p
	out.PriceTier = p.PriceTier.Clamp()

	if p.DistanceKm < 0 || math.IsNaN(p.DistanceKm) {
		out.DistanceKm = 0
	}
	if p.Rating != nil {
		r := *p.Rating
		switch {
		case math.IsNaN(r):
			out.Rating = nil
		case r < 0:
			r = 0
			out.Rating = &r
		case r > MaxRating:
			r = MaxRating
			out.Rating = &r
		}
	}
	if p.ReviewCount != nil && *p.ReviewCount < 0 {
		n := 0
		out.ReviewCount = &n
	}
	if p.QualityScore != nil {
		if math.IsNaN(*p.QualityScore) {
			out.QualityScore = nil
		} else {
			q := ClampScore(*p.QualityScore)
			out.QualityScore = &q
		}
	}
	out.Sentiment = p.Sentiment.Clamped()
	return out
}

// Reviews returns the review count, or DefaultReviewCount when unknown.
func (p Place) Reviews() int {
	if p.ReviewCount == nil || *p.ReviewCount < 0 {
		return DefaultReviewCount
	}
	return *p.ReviewCount
}

// PrimaryCuisine returns the first cuisine tag, lowercased.
func (p Place) PrimaryCuisine() string {
	for _, c := range p.Cuisines {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			return c
		}
	}
	return ""
}

// Tags returns the place's descriptive tag set used for similarity:
// category, cuisines and atmosphere, prefixed by dimension.
func (p Place) Tags() []string {
	tags := make([]string, 0, len(p.Cuisines)+2)
	if c := strings.ToLower(strings.TrimSpace(p.Category)); c != "" {
		tags = append(tags, "category:"+c)
	}
	for _, c := range p.Cuisines {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			tags = append(tags, "cuisine:"+c)
		}
	}
	if p.Atmosphere.Index() >= 0 {
		tags = append(tags, "atmosphere:"+strings.ToLower(string(p.Atmosphere)))
	}
	return tags
}
