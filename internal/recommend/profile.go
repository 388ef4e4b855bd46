// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// unset marks an "any" or missing ordinal preference.
const unset = -1

// ProfileVector is the numeric encoding of a Profile used by the match
// scorer. It is derived per request and never stored.
type ProfileVector struct {
	// BudgetTier is the target price tier, or -1 for any.
	BudgetTier int
	// Atmosphere is the atmosphere index (quiet=0..formal=4), or -1 for any.
	Atmosphere int
	MealType   models.MealType

	Companion models.Companion

	// Needs has one entry per models.SpecialNeedOrder position; 1 means required.
	Needs []int
}

// NewProfileVector encodes a profile.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func NewProfileVector(profile models.Profile) ProfileVector {
	v := ProfileVector{
		BudgetTier: profile.Budget.TargetTier(),
		Atmosphere: profile.Atmosphere.Index(),
		MealType:   profile.MealType.Normalize(),
		Companion:  profile.Companion.Normalize(),
		Needs:      make([]int, len(models.SpecialNeedOrder)),
	}
	for i, need := range models.SpecialNeedOrder {
		if profile.SpecialNeeds.Requires(need) {
			v.Needs[i] = 1
		}
	}
	return v
}

// RequiredNeeds returns the number of required special needs.
func (v ProfileVector) RequiredNeeds() int {
	n := 0
	for _, r := range v.Needs {
		n += r
	}
	return n
}
