// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package main

import (
	"github.com/rs/zerolog"

	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/recommend"
	"github.com/AliTurkarslan/whereto-sub000/internal/recommend/reranking"
)

// buildEngineConfig overlays the configurable pipeline constants on the
// engine defaults. Constants without a setting keep their default.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()
	rc := cfg.Recommend

	ec.Match.Budget = rc.BudgetWeight
	ec.Match.Atmosphere = rc.AtmosphereWeight
	ec.Match.SpecialNeeds = rc.SpecialNeedsWeight
	ec.Match.MealType = rc.MealTypeWeight
	ec.Match.Review = rc.ReviewWeight

	ec.Blend.MatchWeight = rc.MatchBlend
	ec.Blend.QualityWeight = rc.QualityBlend

	if rc.ConfidenceK > 0 {
		ec.Confidence.K = rc.ConfidenceK
	}
	ec.Confidence.Prior = rc.ConfidencePrior

	if rc.ContextMaxDelta > 0 {
		ec.Context.MaxDelta = rc.ContextMaxDelta
	}

	ec.Diversity.PenaltyWeight = rc.DiversityWeight
	if rc.DiversityWindow > 0 {
		ec.Diversity.Window = rc.DiversityWindow
	}
	if rc.DiversityMaxPenalty > 0 {
		ec.Diversity.MaxPenalty = rc.DiversityMaxPenalty
	}
	ec.Diversity.SerendipityWeight = rc.SerendipityWeight
	ec.Diversity.QualityFloor = rc.SerendipityFloor

	ec.OpeningSoon.Bonus = rc.OpeningSoonBonus
	if rc.OpeningSoonHorizon > 0 {
		ec.OpeningSoon.Horizon = rc.OpeningSoonHorizon
	}

	ec.Filter.RequireOpenNow = rc.RequireOpenNow
	ec.Filter.AdmitOpeningSoon = rc.AdmitOpeningSoon

	if rc.DefaultLimit > 0 {
		ec.Limits.DefaultLimit = rc.DefaultLimit
	}
	if rc.MaxLimit > 0 {
		ec.Limits.MaxLimit = rc.MaxLimit
	}

	return ec
}

// initEngine builds the recommendation engine with the diversity reranker.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEngine(cfg *config.Config, logger zerolog.Logger) (*recommend.Engine, *recommend.Config, error) {
	ec := buildEngineConfig(cfg)
	engine, err := recommend.NewEngine(ec, logger)
	if err != nil {
		return nil, nil, err
	}
	engine.RegisterReranker(reranking.NewDiversity(ec.Diversity))

	logger.Info().
		Float64("match_blend", ec.Blend.MatchWeight).
		Float64("quality_blend", ec.Blend.QualityWeight).
		Float64("diversity_weight", ec.Diversity.PenaltyWeight).
		Bool("require_open_now", ec.Filter.RequireOpenNow).
		Msg("Recommendation engine initialized")

	return engine, ec, nil
}
