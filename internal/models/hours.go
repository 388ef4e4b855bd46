// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// HoursKind identifies which opening-hours source answers the open-now
// question, in precedence order.
type HoursKind int

const (
	// HoursUnknown means no opening-hours data at all.
	HoursUnknown HoursKind = iota
	// HoursExplicitFlag means an explicit open-now flag is present.
	HoursExplicitFlag
	// HoursPeriods means a per-weekday period schedule is present.
	HoursPeriods
	// HoursFreeText means only a free-text weekly schedule is present.
	HoursFreeText
)

// String returns the kind name used in logs.
func (k HoursKind) String() string {
	switch k {
	case HoursExplicitFlag:
		return "explicit_flag"
	case HoursPeriods:
		return "periods"
	case HoursFreeText:
		return "free_text"
	default:
		return "unknown"
	}
}

// Period is one opening interval. Open and Close are minutes since midnight.
// Close < Open means the interval crosses midnight into the next day.
// Open == Close means the place is open around the clock that day.
type Period struct {
	Day   time.Weekday `json:"day"`
	Open  int          `json:"open"`
	Close int          `json:"close"`
}

// CrossesMidnight reports whether the period ends on the following day.
func (p Period) CrossesMidnight() bool {
	return p.Close < p.Open
}

// AllDay reports whether the period covers the whole day.
func (p Period) AllDay() bool {
	return p.Close == p.Open
}

// OpeningHours is the normalized opening-hours record. Kind reports which
// source takes precedence; the schedule sources remain available for the
// open-late and opening-soon predicates even when an explicit flag exists.
type OpeningHours struct {
	OpenNow *bool    `json:"open_now,omitempty"`
	Periods []Period `json:"periods,omitempty"`
	Text    []string `json:"weekday_text,omitempty"`
}

// ExplicitFlag builds hours carrying only an open-now flag.
func ExplicitFlag(open bool) OpeningHours {
	return OpeningHours{OpenNow: &open}
}

// PeriodSchedule builds hours from a period list.
func PeriodSchedule(periods ...Period) OpeningHours {
	return OpeningHours{Periods: periods}
}

// FreeText builds hours from weekly schedule lines.
func FreeText(lines ...string) OpeningHours {
	return OpeningHours{Text: lines}
}

// Kind returns the highest-precedence source present.
func (h OpeningHours) Kind() HoursKind {
	switch {
	case h.OpenNow != nil:
		return HoursExplicitFlag
	case len(h.Periods) > 0:
		return HoursPeriods
	case h.hasText():
		return HoursFreeText
	default:
		return HoursUnknown
	}
}

// ForStorage returns the hours as they should be persisted. An open-now flag
// describes the moment of ingestion, so it is dropped whenever a schedule
// can answer the question at read time.
func (h OpeningHours) ForStorage() OpeningHours {
	if h.OpenNow == nil || !h.HasSchedule() {
		return h
	}
	out := h
	out.OpenNow = nil
	return out
}

// HasSchedule reports whether periods or free text are present.
func (h OpeningHours) HasSchedule() bool {
	return len(h.Periods) > 0 || h.hasText()
}

func (h OpeningHours) hasText() bool {
	for _, line := range h.Text {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

// PeriodsOn returns the periods that open on day.
func (h OpeningHours) PeriodsOn(day time.Weekday) []Period {
	var out []Period
	for _, p := range h.Periods {
		if p.Day == day {
			out = append(out, p)
		}
	}
	return out
}

// UnmarshalJSON accepts the shapes seen upstream:
//   - a boolean (explicit open-now flag)
//   - a string or string list (free-text weekly schedule)
//   - an object with any of open_now/openNow, periods and
//     weekday_text/weekdayDescriptions; periods may be normalized
//     {day, open, close} records or nested {open:{day,time}, close:{day,time}}
//
// Malformed schedules decode to no data rather than failing the record.
func (h *OpeningHours) UnmarshalJSON(data []byte) error {
	*h = OpeningHours{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("opening hours flag: %w", err)
		}
		h.OpenNow = &b
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("opening hours text: %w", err)
		}
		h.Text = splitScheduleLines(s)
		return nil
	case '[':
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			// A list of non-strings carries nothing usable.
			return nil
		}
		h.Text = lines
		return nil
	case '{':
		return h.unmarshalObject(data)
	default:
		return nil
	}
}

type rawHours struct {
	OpenNow             *bool             `json:"open_now"`
	OpenNowCamel        *bool             `json:"openNow"`
	Periods             []json.RawMessage `json:"periods"`
	WeekdayText         []string          `json:"weekday_text"`
	WeekdayDescriptions []string          `json:"weekdayDescriptions"`
}

type rawPoint struct {
	Day    *int            `json:"day"`
	Time   json.RawMessage `json:"time"`
	Hour   *int            `json:"hour"`
	Minute *int            `json:"minute"`
}

type rawPeriod struct {
	Day   *int            `json:"day"`
	Open  json.RawMessage `json:"open"`
	Close json.RawMessage `json:"close"`
}

func (h *OpeningHours) unmarshalObject(data []byte) error {
	var raw rawHours
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	h.OpenNow = raw.OpenNow
	if h.OpenNow == nil {
		h.OpenNow = raw.OpenNowCamel
	}
	h.Text = raw.WeekdayText
	if len(h.Text) == 0 {
		h.Text = raw.WeekdayDescriptions
	}

	openOnly := 0
	for _, rp := range raw.Periods {
		periods, noClose, ok := decodePeriod(rp)
		if !ok {
			continue
		}
		if noClose {
			openOnly++
		}
		h.Periods = append(h.Periods, periods...)
	}

	// A single opening point without a closing point means always open.
	if len(raw.Periods) == 1 && openOnly == 1 {
		h.Periods = h.Periods[:0]
		for d := time.Sunday; d <= time.Saturday; d++ {
			h.Periods = append(h.Periods, Period{Day: d})
		}
	}
	return nil
}

// decodePeriod converts one upstream period. noClose reports an opening
// point without a closing point.
func decodePeriod(data json.RawMessage) (periods []Period, noClose, ok bool) {
	var rp rawPeriod
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, false, false
	}

	// Normalized shape: {"day": 1, "open": 540, "close": 1020}
	if rp.Day != nil {
		open, okOpen := decodeMinutes(rp.Open)
		closing, okClose := decodeMinutes(rp.Close)
		if !okOpen || !okClose || !validDay(*rp.Day) {
			return nil, false, false
		}
		return []Period{{Day: time.Weekday(*rp.Day), Open: open, Close: closing}}, false, true
	}

	// Nested shape: {"open": {"day": 1, "time": "0900"}, "close": {...}}
	var open rawPoint
	if err := json.Unmarshal(rp.Open, &open); err != nil || open.Day == nil || !validDay(*open.Day) {
		return nil, false, false
	}
	openMin, ok := open.minutes()
	if !ok {
		return nil, false, false
	}
	openDay := time.Weekday(*open.Day)

	if len(bytes.TrimSpace(rp.Close)) == 0 || bytes.Equal(bytes.TrimSpace(rp.Close), []byte("null")) {
		return []Period{{Day: openDay, Open: openMin, Close: openMin}}, true, true
	}

	var closing rawPoint
	if err := json.Unmarshal(rp.Close, &closing); err != nil {
		return nil, false, false
	}
	closeMin, ok := closing.minutes()
	if !ok {
		return nil, false, false
	}
	closeDay := openDay
	if closing.Day != nil {
		if !validDay(*closing.Day) {
			return nil, false, false
		}
		closeDay = time.Weekday(*closing.Day)
	}
	return spanPeriods(openDay, openMin, closeDay, closeMin), false, true
}

// spanPeriods splits an opening that closes on a later weekday into periods
// of at most one midnight crossing. A close on the next day before the
// opening time is a single crossing period; longer spans become open until
// midnight, whole days in between, and the morning of the closing day.
func spanPeriods(openDay time.Weekday, open int, closeDay time.Weekday, closing int) []Period {
	days := (int(closeDay) - int(openDay) + 7) % 7
	if days == 0 || (days == 1 && closing < open) {
		return []Period{{Day: openDay, Open: open, Close: closing}}
	}

	out := []Period{{Day: openDay, Open: open, Close: 0}}
	for i := 1; i < days; i++ {
		out = append(out, Period{Day: (openDay + time.Weekday(i)) % 7})
	}
	if closing > 0 {
		out = append(out, Period{Day: closeDay, Open: 0, Close: closing})
	}
	return out
}

func validDay(d int) bool {
	return d >= 0 && d <= 6
}

func (p rawPoint) minutes() (int, bool) {
	if len(p.Time) > 0 {
		return decodeMinutes(p.Time)
	}
	if p.Hour != nil {
		m := 0
		if p.Minute != nil {
			m = *p.Minute
		}
		return clockMinutes(*p.Hour, m)
	}
	return 0, false
}

// decodeMinutes reads either an integer minute count or an "HHMM"/"HH:MM" string.
func decodeMinutes(data json.RawMessage) (int, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0, false
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		return ParseClock(s)
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, false
	}
	if n < 0 || n >= 24*60 {
		return 0, false
	}
	return n, true
}

// ParseClock parses "HHMM", "HH:MM" or "H" into minutes since midnight.
// "2400" is accepted as midnight.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ":", ""))
	if s == "" || len(s) > 4 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if len(s) <= 2 {
		return clockMinutes(n, 0)
	}
	return clockMinutes(n/100, n%100)
}

func clockMinutes(hour, minute int) (int, bool) {
	if hour == 24 && minute == 0 {
		return 0, true
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func splitScheduleLines(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '|' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
