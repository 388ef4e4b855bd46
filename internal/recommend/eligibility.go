// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// ExclusionRule names the hard constraint that removed a candidate.
type ExclusionRule string

const (
	RuleOpenNow      ExclusionRule = "open_now"
	RuleBudget       ExclusionRule = "budget"
	RuleSpecialNeeds ExclusionRule = "special_needs"
	RuleMealType     ExclusionRule = "meal_type"
)

// ExclusionRules lists every rule in evaluation order.
var ExclusionRules = []ExclusionRule{RuleOpenNow, RuleBudget, RuleSpecialNeeds, RuleMealType}

// EligibilityFilter removes candidates that violate the profile's hard
// constraints. It is stateless and safe for concurrent use.
type EligibilityFilter struct {
	filter      FilterConfig
	soonHorizon OpeningSoonConfig
}

// NewEligibilityFilter creates a filter from the pipeline configuration.
func NewEligibilityFilter(cfg *Config) *EligibilityFilter {
	return &EligibilityFilter{filter: cfg.Filter, soonHorizon: cfg.OpeningSoon}
}

// Filter returns the eligible places in input order together with a count of
// exclusions per rule. Each excluded place is counted once, under the first
// rule it fails.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (f *EligibilityFilter) Filter(places []models.Place, profile models.Profile, snap models.Context) ([]models.Place, map[ExclusionRule]int) {
	excluded := make(map[ExclusionRule]int)
	out := make([]models.Place, 0, len(places))
	for i := range places {
		if rule, ok := f.Check(&places[i], profile, snap); !ok {
			excluded[rule]++
			continue
		}
		out = append(out, places[i])
	}
	return out, excluded
}

// Check evaluates all rules against one place and returns the first failing
// rule, or ok=true when the place is eligible.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (f *EligibilityFilter) Check(p *models.Place, profile models.Profile, snap models.Context) (ExclusionRule, bool) {
	if f.filter.RequireOpenNow && !IsOpenNow(p.Hours, snap) {
		if !f.filter.AdmitOpeningSoon || !IsOpeningSoon(p.Hours, snap, f.soonHorizon.Horizon) {
			return RuleOpenNow, false
		}
	}

	if allowed := profile.Budget.AllowedTiers(); allowed != nil && !tierAllowed(p.PriceTier.Clamp(), allowed) {
		return RuleBudget, false
	}

	for _, need := range profile.SpecialNeeds.Required() {
		if !p.Amenities.Has(need) {
			return RuleSpecialNeeds, false
		}
	}

	if meal := profile.MealType.Normalize(); meal != models.MealAny && !f.servesMeal(p, meal, snap) {
		return RuleMealType, false
	}

	return "", true
}

// servesMeal answers the meal rule; late night comes from opening hours.
func (f *EligibilityFilter) servesMeal(p *models.Place, meal models.MealType, snap models.Context) bool {
	if meal == models.MealLateNight {
		return IsOpenLate(p.Hours, snap, f.filter)
	}
	return p.Meals.Serves(meal)
}

func tierAllowed(tier models.PriceTier, allowed []models.PriceTier) bool {
	for _, t := range allowed {
		if t == tier {
			return true
		}
	}
	return false
}
