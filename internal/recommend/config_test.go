// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("match weights sum to 1", func(t *testing.T) {
		if sum := cfg.Match.Sum(); sum < 0.99 || sum > 1.01 {
			t.Errorf("match weights sum = %f, want ~1.0", sum)
		}
	})

	t.Run("blend is 60/40", func(t *testing.T) {
		if cfg.Blend.MatchWeight != 0.6 || cfg.Blend.QualityWeight != 0.4 {
			t.Errorf("blend = %v/%v, want 0.6/0.4", cfg.Blend.MatchWeight, cfg.Blend.QualityWeight)
		}
	})

	t.Run("every companion has a review table summing to 1", func(t *testing.T) {
		for _, c := range []models.Companion{
			models.CompanionAlone, models.CompanionPartner, models.CompanionFriends,
			models.CompanionFamily, models.CompanionColleagues,
		} {
			table, ok := cfg.ReviewWeights[c]
			if !ok {
				t.Errorf("no review weights for %q", c)
				continue
			}
			sum := 0.0
			for _, w := range table {
				sum += w
			}
			if sum < 0.99 || sum > 1.01 {
				t.Errorf("review weights for %q sum = %f, want ~1.0", c, sum)
			}
		}
	})

	t.Run("confidence prior is neutral", func(t *testing.T) {
		if cfg.Confidence.K != 10 || cfg.Confidence.Prior != 50 {
			t.Errorf("confidence = %+v, want K=10 Prior=50", cfg.Confidence)
		}
	})

	t.Run("default config validates", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "match weights off", modify: func(c *Config) { c.Match.Budget = 0.5 }, wantError: "match weights"},
		{name: "negative match weight", modify: func(c *Config) { c.Match.Budget = -0.05; c.Match.Review = 0.45 }, wantError: "match.budget"},
		{name: "zero ordinal step", modify: func(c *Config) { c.Match.OrdinalStep = 0 }, wantError: "ordinal_step"},
		{name: "blend off", modify: func(c *Config) { c.Blend.MatchWeight = 0.7 }, wantError: "blend"},
		{name: "bad proximity tier", modify: func(c *Config) { c.Proximity[0].MaxKm = 0 }, wantError: "proximity[0]"},
		{name: "negative horizon", modify: func(c *Config) { c.OpeningSoon.Horizon = -time.Minute }, wantError: "horizon"},
		{name: "prior out of range", modify: func(c *Config) { c.Confidence.Prior = 120 }, wantError: "prior"},
		{name: "negative k", modify: func(c *Config) { c.Confidence.K = -1 }, wantError: "confidence.k"},
		{name: "max delta too large", modify: func(c *Config) { c.Context.MaxDelta = 50 }, wantError: "max_delta"},
		{name: "bad hour", modify: func(c *Config) { c.Context.LateStartHour = 25 }, wantError: "late_start_hour"},
		{name: "zero window", modify: func(c *Config) { c.Diversity.Window = 0 }, wantError: "window"},
		{name: "quality floor out of range", modify: func(c *Config) { c.Diversity.QualityFloor = -1 }, wantError: "quality_floor"},
		{name: "late close out of range", modify: func(c *Config) { c.Filter.LateCloseMinute = 1440 }, wantError: "late_close_minute"},
		{name: "max limit below default", modify: func(c *Config) { c.Limits.MaxLimit = 5 }, wantError: "max_limit"},
		{
			name:      "review table off",
			modify:    func(c *Config) { c.ReviewWeights[models.CompanionFamily][models.SentimentSpeed] = 0.5 },
			wantError: "review_weights.family",
		},
		{
			name:      "default companion missing",
			modify:    func(c *Config) { delete(c.ReviewWeights, models.CompanionAlone) },
			wantError: "default companion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantError)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	orig := DefaultConfig()
	clone := orig.Clone()

	clone.Proximity[0].Bonus = 99
	clone.Context.NightlifeCategories[0] = "changed"
	clone.ReviewWeights[models.CompanionAlone][models.SentimentPrice] = 0.9

	if orig.Proximity[0].Bonus == 99 {
		t.Error("Clone shares proximity tiers with the original")
	}
	if orig.Context.NightlifeCategories[0] == "changed" {
		t.Error("Clone shares nightlife categories with the original")
	}
	if orig.ReviewWeights[models.CompanionAlone][models.SentimentPrice] == 0.9 {
		t.Error("Clone shares review weights with the original")
	}
}

func TestConfig_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"horizon":"30m0s"`) {
		t.Errorf("marshaled config should carry horizon as a duration string: %s", data)
	}
}
