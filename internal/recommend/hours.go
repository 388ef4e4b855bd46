// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"strings"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/cache"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

const minutesPerDay = 24 * 60

const (
	markerClosed = "closed"
	markerLate   = "late"
)

// scheduleMarkers holds the phrases searched for in free-text schedules.
var scheduleMarkers = cache.NewPatternMatcher(map[string][]string{
	markerClosed: {
		"closed", "kapalı", "kapali", "fermé", "ferme le", "geschlossen", "cerrado", "chiuso",
	},
	markerLate: {
		"24 hours", "open 24", "late night", "open until", "until late", "after midnight",
		"24 saat", "gece geç", "24h/24", "jusqu'à tard", "bis spät", "hasta tarde",
	},
})

// weekdayNames lists the line prefixes used to find a weekday in free text,
// indexed by time.Weekday.
var weekdayNames = [7][]string{
	time.Sunday:    {"sunday", "sun", "pazar", "dimanche", "sonntag", "domingo"},
	time.Monday:    {"monday", "mon", "pazartesi", "lundi", "montag", "lunes"},
	time.Tuesday:   {"tuesday", "tue", "salı", "sali", "mardi", "dienstag", "martes"},
	time.Wednesday: {"wednesday", "wed", "çarşamba", "carsamba", "mercredi", "mittwoch", "miércoles"},
	time.Thursday:  {"thursday", "thu", "perşembe", "persembe", "jeudi", "donnerstag", "jueves"},
	time.Friday:    {"friday", "fri", "cuma", "vendredi", "freitag", "viernes"},
	time.Saturday:  {"saturday", "sat", "cumartesi", "samedi", "samstag", "sábado"},
}

// IsOpenNow reports whether the place is open at the snapshot time, using
// the first source present in precedence order: explicit flag, period
// schedule, free text. No data means open.
func IsOpenNow(h models.OpeningHours, snap models.Context) bool {
	switch h.Kind() {
	case models.HoursExplicitFlag:
		return *h.OpenNow
	case models.HoursPeriods:
		return openByPeriods(h, snap)
	case models.HoursFreeText:
		return !scheduleMarkers.Contains(markerClosed, scheduleLineFor(h.Text, snap.Normalize().Weekday))
	default:
		return models.OpenWhenUnknown
	}
}

func openByPeriods(h models.OpeningHours, snap models.Context) bool {
	now := snap.MinuteOfDay()
	for _, p := range h.PeriodsOn(snap.Normalize().Weekday) {
		switch {
		case p.AllDay():
			return true
		case p.CrossesMidnight():
			if now >= p.Open || now < p.Close {
				return true
			}
		case now >= p.Open && now < p.Close:
			return true
		}
	}
	// Last night's period may still be running.
	for _, p := range h.PeriodsOn(snap.Yesterday()) {
		if p.CrossesMidnight() && now < p.Close {
			return true
		}
	}
	return false
}

// IsOpenLate reports whether the place stays open late: today's close is at
// or after LateCloseMinute or past midnight, tomorrow opens before
// EarlyMorningMinute, or the free text carries a late marker. Without
// schedule data the answer is no.
func IsOpenLate(h models.OpeningHours, snap models.Context, f FilterConfig) bool {
	if !h.HasSchedule() {
		return models.LateWhenUnknown
	}

	for _, p := range h.PeriodsOn(snap.Normalize().Weekday) {
		if p.AllDay() || p.CrossesMidnight() {
			return true
		}
		if p.Close >= f.LateCloseMinute || p.Close < f.EarlyMorningMinute {
			return true
		}
	}
	for _, p := range h.PeriodsOn(snap.Tomorrow()) {
		if p.Open < f.EarlyMorningMinute {
			return true
		}
	}

	if len(h.Text) > 0 && scheduleMarkers.Contains(markerLate, strings.Join(h.Text, "\n")) {
		return true
	}
	return models.LateWhenUnknown
}

// MinutesUntilOpen returns the minutes until the next period opening, looking
// at the rest of today and all of tomorrow. It reports false when the place
// has no periods or no opening in that range.
func MinutesUntilOpen(h models.OpeningHours, snap models.Context) (int, bool) {
	if len(h.Periods) == 0 {
		return 0, false
	}
	now := snap.MinuteOfDay()
	best := -1
	for _, p := range h.PeriodsOn(snap.Normalize().Weekday) {
		if p.Open >= now && (best < 0 || p.Open-now < best) {
			best = p.Open - now
		}
	}
	for _, p := range h.PeriodsOn(snap.Tomorrow()) {
		if wait := p.Open + minutesPerDay - now; best < 0 || wait < best {
			best = wait
		}
	}
	return best, best >= 0
}

// IsOpeningSoon reports whether the place is closed now and its next period
// opening is within horizon.
func IsOpeningSoon(h models.OpeningHours, snap models.Context, horizon time.Duration) bool {
	if horizon <= 0 || IsOpenNow(h, snap) {
		return false
	}
	wait, ok := MinutesUntilOpen(h, snap)
	return ok && time.Duration(wait)*time.Minute <= horizon
}

// scheduleLineFor picks the free-text line describing day. A seven-line
// schedule is read Monday first; otherwise the line starting with the day's
// name is used, falling back to the whole text.
func scheduleLineFor(lines []string, day time.Weekday) string {
	nonEmpty := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}

	for _, l := range nonEmpty {
		lower := strings.ToLower(l)
		for _, name := range weekdayNames[day] {
			if hasWordPrefix(lower, name) {
				return l
			}
		}
	}
	if len(nonEmpty) == 7 {
		return nonEmpty[(int(day)+6)%7]
	}
	return strings.Join(nonEmpty, "\n")
}

// hasWordPrefix reports whether s starts with prefix followed by a non-letter.
func hasWordPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	rest := s[len(prefix):]
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ':', ' ', ',', '.', '-', '\t':
		return true
	default:
		return false
	}
}
