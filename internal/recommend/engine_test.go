// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

// boostReranker adds a fixed bonus to one place and records its calls.
type boostReranker struct {
	mu     sync.Mutex
	calls  int
	target string
	bonus  float64
}

func (b *boostReranker) Name() string { return "boost" }

func (b *boostReranker) Rerank(_ context.Context, items []models.ScoredPlace, _ models.DiversityOptions) []models.ScoredPlace {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	out := make([]models.ScoredPlace, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == b.target {
			out[i].SerendipityDelta = b.bonus
			out[i].Recompute()
		}
	}
	return out
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	t.Run("nil config uses defaults", func(t *testing.T) {
		t.Parallel()
		engine, err := NewEngine(nil, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine(nil) error = %v", err)
		}
		if engine.Config().Limits.DefaultLimit != 10 {
			t.Errorf("DefaultLimit = %d, want 10", engine.Config().Limits.DefaultLimit)
		}
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.Match.Budget = 0.9
		if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
			t.Error("NewEngine() expected error for weights not summing to 1")
		}
	})

	t.Run("config is copied", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		engine, err := NewEngine(cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		cfg.Limits.DefaultLimit = 3
		if engine.Config().Limits.DefaultLimit != 10 {
			t.Error("engine config changed after caller mutation")
		}
	})
}

func TestEngine_Recommend_Empty(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	snap := at(time.Monday, 12, 0)

	got := engine.Recommend(context.Background(), nil, models.Profile{}, &snap, nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Recommend(nil) = %v, want empty non-nil slice", got)
	}

	closed := openPlace("closed")
	closed.Hours = models.ExplicitFlag(false)
	got = engine.Recommend(context.Background(), []models.Place{closed}, models.Profile{}, &snap, nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Recommend(all excluded) = %v, want empty non-nil slice", got)
	}
}

func TestEngine_Recommend_Deterministic(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	snap := models.Context{Weekday: time.Saturday, Hour: 10, Weather: models.WeatherClear}
	profile := models.Profile{
		Companion:  models.CompanionFriends,
		Budget:     models.BudgetModerate,
		Atmosphere: models.AtmosphereLively,
		Limit:      15,
	}

	first := engine.Recommend(context.Background(), samplePlaces(), profile, &snap, nil)
	for i := 0; i < 5; i++ {
		again := engine.Recommend(context.Background(), samplePlaces(), profile, &snap, nil)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from the first run", i+1)
		}
	}
}

func TestEngine_Recommend_Properties(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	snap := at(time.Wednesday, 19, 0)

	profiles := []models.Profile{
		{},
		{Budget: models.BudgetLow, Limit: 3},
		{Budget: models.BudgetPremium, Atmosphere: models.AtmosphereFormal, Limit: 50},
		{MealType: models.MealDinner, SpecialNeeds: models.SpecialNeeds{Wheelchair: true}},
		{Limit: 500},
	}

	for _, profile := range profiles {
		candidates := samplePlaces()
		res := engine.RecommendWithStats(context.Background(), candidates, profile, &snap, nil)

		if limit := engine.LimitFor(profile); len(res.Places) > limit {
			t.Errorf("returned %d places, limit %d", len(res.Places), limit)
		}
		if len(res.Places) > res.Eligible || res.Eligible > res.Candidates {
			t.Errorf("counts out of order: returned %d eligible %d candidates %d", len(res.Places), res.Eligible, res.Candidates)
		}

		excluded := 0
		for _, n := range res.Excluded {
			excluded += n
		}
		if res.Eligible+excluded != res.Candidates {
			t.Errorf("eligible %d + excluded %d != candidates %d", res.Eligible, excluded, res.Candidates)
		}

		for i, sp := range res.Places {
			if sp.FinalScore < 0 || sp.FinalScore > 100 || sp.MatchScore < 0 || sp.MatchScore > 100 {
				t.Errorf("%s: score out of bounds (final %d, match %d)", sp.ID, sp.FinalScore, sp.MatchScore)
			}
			if _, ok := engine.filter.Check(&sp.Place, profile, snap); !ok {
				t.Errorf("%s was returned but is not eligible", sp.ID)
			}
			if i == 0 {
				continue
			}
			prev := res.Places[i-1]
			if prev.FinalScore < sp.FinalScore {
				t.Errorf("not sorted by final score at %d", i)
			}
			if prev.FinalScore == sp.FinalScore && prev.MatchScore < sp.MatchScore {
				t.Errorf("tie not broken by match score at %d", i)
			}
			if prev.FinalScore == sp.FinalScore && prev.MatchScore == sp.MatchScore && prev.DistanceKm > sp.DistanceKm {
				t.Errorf("tie not broken by distance at %d", i)
			}
		}

		if len(candidates) != 24 || candidates[0].ID != "a-place" {
			t.Error("input slice was modified")
		}
	}
}

func TestEngine_Recommend_BudgetExclusion(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	snap := at(time.Monday, 12, 0)

	luxury := openPlace("luxury")
	luxury.PriceTier = 4
	cheap := openPlace("cheap")
	cheap.PriceTier = 1

	res := engine.RecommendWithStats(context.Background(), []models.Place{luxury, cheap},
		models.Profile{Budget: models.BudgetLow}, &snap, nil)

	if len(res.Places) != 1 || res.Places[0].ID != "cheap" {
		t.Fatalf("Places = %v, want only cheap", res.Places)
	}
	if res.Excluded[RuleBudget] != 1 {
		t.Errorf("Excluded[budget] = %d, want 1", res.Excluded[RuleBudget])
	}
}

func TestEngine_Recommend_LateNight(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	snap := at(time.Friday, 22, 30)

	lateBar := openPlace("late")
	lateBar.Category = "restaurant"
	lateBar.Hours = models.PeriodSchedule(models.Period{Day: time.Friday, Open: hm(18, 0), Close: hm(2, 0)})

	early := openPlace("early")
	early.Hours = models.PeriodSchedule(models.Period{Day: time.Friday, Open: hm(8, 0), Close: hm(22, 45)})

	res := engine.RecommendWithStats(context.Background(), []models.Place{early, lateBar},
		models.Profile{MealType: models.MealLateNight}, &snap, nil)

	if len(res.Places) != 1 || res.Places[0].ID != "late" {
		t.Fatalf("Places = %v, want only late", res.Places)
	}
	if res.Places[0].MatchDetails.MealType != 100 {
		t.Errorf("MealType match = %v, want 100", res.Places[0].MatchDetails.MealType)
	}
	if res.Excluded[RuleMealType] != 1 {
		t.Errorf("Excluded[meal_type] = %d, want 1", res.Excluded[RuleMealType])
	}
}

func TestEngine_Recommend_TieBreaks(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	snap := at(time.Monday, 12, 0)

	// Equal quality and match; the nearer place wins on distance.
	far := openPlace("far")
	far.DistanceKm = 4.5
	near := openPlace("near")
	near.DistanceKm = 4.0

	got := engine.Recommend(context.Background(), []models.Place{far, near}, models.Profile{}, &snap, nil)
	if len(got) != 2 || got[0].ID != "near" {
		t.Fatalf("order = %v, want near first", ids(placesOf(got)))
	}
	if got[0].FinalScore != got[1].FinalScore {
		t.Errorf("expected equal final scores, got %d and %d", got[0].FinalScore, got[1].FinalScore)
	}
}

func TestEngine_Recommend_Limit(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	snap := at(time.Monday, 12, 0)

	candidates := make([]models.Place, 0, 60)
	for i := 0; i < 60; i++ {
		candidates = append(candidates, openPlace(string(rune('A'+i))))
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 10},
		{5, 5},
		{50, 50},
		{80, 50},
	}
	for _, tt := range tests {
		got := engine.Recommend(context.Background(), candidates, models.Profile{Limit: tt.limit}, &snap, nil)
		if len(got) != tt.want {
			t.Errorf("limit %d: got %d places, want %d", tt.limit, len(got), tt.want)
		}
	}
}

func TestEngine_LimitFor_CustomConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Limits.DefaultLimit = 2
	cfg.Limits.MaxLimit = 3
	engine, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	snap := at(time.Monday, 12, 0)

	candidates := make([]models.Place, 0, 20)
	for i := 0; i < 20; i++ {
		candidates = append(candidates, openPlace(string(rune('a'+i))))
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"unset uses configured default", 0, 2},
		{"within bounds", 3, 3},
		{"capped at configured maximum", 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			profile := models.Profile{Limit: tt.limit}
			if got := engine.LimitFor(profile); got != tt.want {
				t.Errorf("LimitFor() = %d, want %d", got, tt.want)
			}
			got := engine.Recommend(context.Background(), candidates, profile, &snap, nil)
			if len(got) != tt.want {
				t.Errorf("Recommend() returned %d places, want %d", len(got), tt.want)
			}
		})
	}
}

func TestEngine_Recommend_UsesClock(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	// Monday 10:00 local.
	engine.SetClock(func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) })

	lunch := openPlace("lunch")
	lunch.Hours = models.PeriodSchedule(models.Period{Day: time.Monday, Open: hm(12, 0), Close: hm(15, 0)})

	res := engine.RecommendWithStats(context.Background(), []models.Place{lunch}, models.Profile{}, nil, nil)
	if res.Context.Hour != 10 || res.Context.Weekday != time.Monday {
		t.Errorf("Context = %+v, want Monday 10:00", res.Context)
	}
	if res.Eligible != 0 {
		t.Errorf("Eligible = %d, want 0 (opens in two hours)", res.Eligible)
	}

	engine.SetClock(func() time.Time { return time.Date(2026, 3, 2, 11, 45, 0, 0, time.UTC) })
	res = engine.RecommendWithStats(context.Background(), []models.Place{lunch}, models.Profile{}, nil, nil)
	if res.Eligible != 1 {
		t.Fatalf("Eligible = %d, want 1 (opens within the horizon)", res.Eligible)
	}
}

func TestEngine_Rerankers(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	rr := &boostReranker{target: "b", bonus: 5}
	engine.RegisterReranker(rr)

	snap := at(time.Monday, 12, 0)
	a := openPlace("a")
	a.DistanceKm = 0.5
	b := openPlace("b")
	b.DistanceKm = 4.0

	got := engine.Recommend(context.Background(), []models.Place{a, b}, models.Profile{}, &snap, nil)
	if rr.calls != 1 {
		t.Errorf("reranker called %d times, want 1", rr.calls)
	}
	// a: base 74 + 10 = 84; b: 74 + 3 + 5 = 82.
	if got[0].ID != "a" || got[1].FinalScore != 82 {
		t.Errorf("unexpected ranking: %s=%d %s=%d", got[0].ID, got[0].FinalScore, got[1].ID, got[1].FinalScore)
	}

	stats := engine.Stats()
	if stats.Requests != 1 || !reflect.DeepEqual(stats.Rerankers, []string{"boost"}) {
		t.Errorf("Stats() = %+v", stats)
	}
}

func placesOf(items []models.ScoredPlace) []models.Place {
	out := make([]models.Place, len(items))
	for i := range items {
		out[i] = items[i].Place
	}
	return out
}
