// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package models

import "strings"

// Companion is the social context of the visit.
type Companion string

const (
	CompanionAlone      Companion = "alone"
	CompanionPartner    Companion = "partner"
	CompanionFriends    Companion = "friends"
	CompanionFamily     Companion = "family"
	CompanionColleagues Companion = "colleagues"
)

// Normalize lowercases the value and falls back to DefaultCompanion for
// empty or unknown input.
func (c Companion) Normalize() Companion {
	switch v := Companion(strings.ToLower(strings.TrimSpace(string(c)))); v {
	case CompanionAlone, CompanionPartner, CompanionFriends, CompanionFamily, CompanionColleagues:
		return v
	default:
		return DefaultCompanion
	}
}

// Budget is the requested price band.
type Budget string

const (
	BudgetLow      Budget = "budget"
	BudgetModerate Budget = "moderate"
	BudgetPremium  Budget = "premium"
	BudgetAny      Budget = "any"
)

// AllowedTiers returns the price tiers a concrete budget admits, or nil for
// "any" and unset.
func (b Budget) AllowedTiers() []PriceTier {
	switch b.normalized() {
	case BudgetLow:
		return []PriceTier{0, 1}
	case BudgetModerate:
		return []PriceTier{2}
	case BudgetPremium:
		return []PriceTier{3, 4}
	default:
		return nil
	}
}

// TargetTier is the ordinal position used for budget distance scoring,
// or -1 for "any" and unset.
func (b Budget) TargetTier() int {
	switch b.normalized() {
	case BudgetLow:
		return 1
	case BudgetModerate:
		return 2
	case BudgetPremium:
		return 3
	default:
		return -1
	}
}

func (b Budget) normalized() Budget {
	return Budget(strings.ToLower(strings.TrimSpace(string(b))))
}

// MealType is the requested meal.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealBrunch    MealType = "brunch"
	MealLateNight MealType = "late-night"
	MealAny       MealType = "any"
)

var mealOrder = []MealType{MealBreakfast, MealBrunch, MealLunch, MealDinner, MealLateNight}

// Normalize lowercases the meal type and maps "late_night"/"latenight" onto
// MealLateNight. Unknown values become MealAny.
func (m MealType) Normalize() MealType {
	v := strings.ToLower(strings.TrimSpace(string(m)))
	switch v {
	case "", string(MealAny):
		return MealAny
	case "late_night", "latenight", "late night":
		return MealLateNight
	}
	for _, known := range mealOrder {
		if string(known) == v {
			return known
		}
	}
	return MealAny
}

// SpecialNeed names one accessibility or dietary requirement.
type SpecialNeed string

const (
	NeedWheelchair     SpecialNeed = "wheelchair"
	NeedPetFriendly    SpecialNeed = "pet_friendly"
	NeedKidFriendly    SpecialNeed = "kid_friendly"
	NeedParking        SpecialNeed = "parking"
	NeedWifi           SpecialNeed = "wifi"
	NeedVegetarian     SpecialNeed = "vegetarian"
	NeedVegan          SpecialNeed = "vegan"
	NeedOutdoorSeating SpecialNeed = "outdoor_seating"
	NeedIndoorSeating  SpecialNeed = "indoor_seating"
	NeedLiveMusic      SpecialNeed = "live_music"
)

// SpecialNeedOrder fixes the position of each need in the profile vector.
var SpecialNeedOrder = []SpecialNeed{
	NeedWheelchair,
	NeedPetFriendly,
	NeedKidFriendly,
	NeedParking,
	NeedWifi,
	NeedVegetarian,
	NeedVegan,
	NeedOutdoorSeating,
	NeedIndoorSeating,
	NeedLiveMusic,
}

// SpecialNeeds is the set of required flags. A false field is "not required".
type SpecialNeeds struct {
	Wheelchair     bool `json:"wheelchair,omitempty"`
	PetFriendly    bool `json:"pet_friendly,omitempty"`
	KidFriendly    bool `json:"kid_friendly,omitempty"`
	Parking        bool `json:"parking,omitempty"`
	Wifi           bool `json:"wifi,omitempty"`
	Vegetarian     bool `json:"vegetarian,omitempty"`
	Vegan          bool `json:"vegan,omitempty"`
	OutdoorSeating bool `json:"outdoor_seating,omitempty"`
	IndoorSeating  bool `json:"indoor_seating,omitempty"`
	LiveMusic      bool `json:"live_music,omitempty"`
}

// Requires reports whether need is required.
func (s SpecialNeeds) Requires(need SpecialNeed) bool {
	switch need {
	case NeedWheelchair:
		return s.Wheelchair
	case NeedPetFriendly:
		return s.PetFriendly
	case NeedKidFriendly:
		return s.KidFriendly
	case NeedParking:
		return s.Parking
	case NeedWifi:
		return s.Wifi
	case NeedVegetarian:
		return s.Vegetarian
	case NeedVegan:
		return s.Vegan
	case NeedOutdoorSeating:
		return s.OutdoorSeating
	case NeedIndoorSeating:
		return s.IndoorSeating
	case NeedLiveMusic:
		return s.LiveMusic
	default:
		return false
	}
}

// Required lists the required needs in SpecialNeedOrder.
func (s SpecialNeeds) Required() []SpecialNeed {
	var out []SpecialNeed
	for _, need := range SpecialNeedOrder {
		if s.Requires(need) {
			out = append(out, need)
		}
	}
	return out
}

// Profile is one request's user preferences.
type Profile struct {
	UserID       string       `json:"user_id,omitempty" validate:"omitempty,max=128"`
	Latitude     float64      `json:"latitude" validate:"latitude"`
	Longitude    float64      `json:"longitude" validate:"longitude"`
	Category     string       `json:"category,omitempty" validate:"omitempty,max=64"`
	Companion    Companion    `json:"companion,omitempty" validate:"omitempty,oneof=alone partner friends family colleagues"`
	Budget       Budget       `json:"budget,omitempty" validate:"omitempty,oneof=budget moderate premium any"`
	Atmosphere   Atmosphere   `json:"atmosphere,omitempty" validate:"omitempty,oneof=quiet lively romantic casual formal any"`
	MealType     MealType     `json:"meal_type,omitempty" validate:"omitempty,oneof=breakfast lunch dinner brunch late-night any"`
	SpecialNeeds SpecialNeeds `json:"special_needs"`
	Limit        int          `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
	RadiusKm     float64      `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=50"`
}
