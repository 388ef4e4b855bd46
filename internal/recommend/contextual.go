// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"math"
	"strings"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// ContextAdjuster nudges scores for time-of-day, weekday and weather fit.
// Each delta and their sum are capped at MaxDelta in magnitude, so the
// adjustment can never reorder two places further apart than that.
type ContextAdjuster struct {
	cfg       ContextConfig
	filter    FilterConfig
	nightlife map[string]struct{}
}

// NewContextAdjuster creates an adjuster from configuration.
func NewContextAdjuster(cfg *Config) *ContextAdjuster {
	nightlife := make(map[string]struct{}, len(cfg.Context.NightlifeCategories))
	for _, c := range cfg.Context.NightlifeCategories {
		nightlife[normalizeCategory(c)] = struct{}{}
	}
	return &ContextAdjuster{cfg: cfg.Context, filter: cfg.Filter, nightlife: nightlife}
}

// Adjust sets ContextDelta on every item and recomputes its final score.
// The recorded delta is the part that survived clamping to [0, 100].
func (a *ContextAdjuster) Adjust(items []models.ScoredPlace, snap models.Context) {
	for i := range items {
		delta := a.Delta(&items[i].Place, snap)
		base := items[i].BaseScore
		items[i].ContextDelta = models.ClampScore(base+delta) - base
		items[i].Recompute()
	}
}

// Delta computes the bounded context delta for one place.
func (a *ContextAdjuster) Delta(p *models.Place, snap models.Context) float64 {
	snap = snap.Normalize()
	total := 0.0

	if inHourWindow(snap.Hour, a.cfg.MorningStartHour, a.cfg.MorningEndHour) &&
		(p.Meals.Breakfast || p.Meals.Brunch) {
		total += a.capped(a.cfg.MorningBoost)
	}

	if inHourWindow(snap.Hour, a.cfg.LateStartHour, a.cfg.LateEndHour) &&
		(a.isNightlife(p.Category) || IsOpenLate(p.Hours, snap, a.filter)) {
		total += a.capped(a.cfg.LateBoost)
	}

	switch {
	case snap.Weather.IsPoor():
		if p.Amenities.IndoorSeating {
			total += a.capped(a.cfg.PoorWeatherIndoorBoost)
		} else if p.Amenities.OutdoorSeating {
			total -= a.capped(a.cfg.PoorWeatherOutdoorPenalty)
		}
	case snap.Weather.IsFair():
		if p.Amenities.OutdoorSeating {
			total += a.capped(a.cfg.FairWeatherOutdoorBoost)
		}
	}

	if isWeekend(snap.Weekday) && p.Meals.Brunch &&
		inHourWindow(snap.Hour, a.cfg.WeekendBrunchStartHour, a.cfg.WeekendBrunchEndHour) {
		total += a.capped(a.cfg.WeekendBrunchBoost)
	}

	return a.capped(total)
}

func (a *ContextAdjuster) capped(v float64) float64 {
	return math.Max(-a.cfg.MaxDelta, math.Min(a.cfg.MaxDelta, v))
}

func (a *ContextAdjuster) isNightlife(category string) bool {
	_, ok := a.nightlife[normalizeCategory(category)]
	return ok
}

// inHourWindow reports whether hour is in [start, end), wrapping midnight
// when end < start. start == end is an empty window.
func inHourWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func normalizeCategory(c string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(c)), " ", "_")
}
