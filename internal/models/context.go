// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package models

import (
	"strings"
	"time"
)

// Weather is the optional outdoor-conditions signal.
type Weather string

const (
	WeatherUnknown Weather = ""
	WeatherClear   Weather = "clear"
	WeatherCloudy  Weather = "cloudy"
	WeatherRain    Weather = "rain"
	WeatherSnow    Weather = "snow"
	WeatherStorm   Weather = "storm"
	WeatherHot     Weather = "hot"
	WeatherCold    Weather = "cold"
)

// IsPoor reports whether outdoor seating is unattractive.
func (w Weather) IsPoor() bool {
	switch Weather(strings.ToLower(string(w))) {
	case WeatherRain, WeatherSnow, WeatherStorm, WeatherCold:
		return true
	default:
		return false
	}
}

// IsFair reports whether outdoor seating is attractive: any reported
// weather that is not poor.
func (w Weather) IsFair() bool {
	switch Weather(strings.ToLower(string(w))) {
	case WeatherClear, WeatherCloudy, WeatherHot:
		return true
	default:
		return false
	}
}

// Context is the read-only time and environment snapshot one request is
// evaluated in.
type Context struct {
	Hour    int          `json:"hour" validate:"min=0,max=23"`
	Minute  int          `json:"minute,omitempty" validate:"min=0,max=59"`
	Weekday time.Weekday `json:"weekday" validate:"min=0,max=6"`
	Weather Weather      `json:"weather,omitempty" validate:"omitempty,oneof=clear cloudy rain snow storm hot cold"`
	Locale  string       `json:"locale,omitempty" validate:"omitempty,max=16"`
}

// ContextFromTime builds a snapshot from a wall-clock time. The caller picks
// the time zone by converting t first.
func ContextFromTime(t time.Time) Context {
	return Context{
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Weekday: t.Weekday(),
	}
}

// Normalize wraps out-of-range fields into their valid ranges.
func (c Context) Normalize() Context {
	out := c
	out.Hour = ((c.Hour % 24) + 24) % 24
	out.Minute = ((c.Minute % 60) + 60) % 60
	out.Weekday = time.Weekday(((int(c.Weekday) % 7) + 7) % 7)
	return out
}

// MinuteOfDay returns minutes since midnight.
func (c Context) MinuteOfDay() int {
	n := c.Normalize()
	return n.Hour*60 + n.Minute
}

// Tomorrow returns the following weekday.
func (c Context) Tomorrow() time.Weekday {
	return (c.Normalize().Weekday + 1) % 7
}

// Yesterday returns the preceding weekday.
func (c Context) Yesterday() time.Weekday {
	return (c.Normalize().Weekday + 6) % 7
}

// DiversityOptions control the diversity and serendipity reranking.
type DiversityOptions struct {
	// PenaltyWeight overrides the configured per-repeat penalty when set.
	PenaltyWeight *float64 `json:"penalty_weight,omitempty"`
	// History holds places the user chose before, most recent first.
	History []Place `json:"history,omitempty"`
}
