// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package cache

import (
	"sync"
	"testing"
)

func TestAhoCorasick_SuffixMatches(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick([]string{"he", "she", "his", "hers"})
	for _, text := range []string{"ushers", "this", "ahem"} {
		if !ac.Contains(text) {
			t.Errorf("Contains(%q) = false, want true", text)
		}
	}
	if ac.Contains("shrug") {
		t.Error(`Contains("shrug") = true, want false`)
	}
}

func TestAhoCorasick_Contains(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick([]string{"closed", "kapalı", "24 hours"})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact", "closed", true},
		{"case insensitive", "Monday: CLOSED", true},
		{"turkish", "Pazartesi: Kapalı", true},
		{"collapsed whitespace", "Open 24\t  Hours", true},
		{"no match", "Monday: 9:00 AM – 5:00 PM", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ac.Contains(tt.text); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAhoCorasick_EmptyPatterns(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick([]string{"", "   "})
	if ac.Contains("anything") || ac.Contains("") {
		t.Error("empty automaton should never match")
	}
}

func TestAhoCorasick_FailureLinks(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick([]string{"open until", "until late"})
	if !ac.Contains("we stay open until late") {
		t.Error("expected a match through the failure link")
	}
	if ac.Contains("open unti") {
		t.Error("partial pattern should not match")
	}
}

func TestPatternMatcher(t *testing.T) {
	t.Parallel()

	pm := NewPatternMatcher(map[string][]string{
		"closed": {"closed", "geschlossen"},
		"late":   {"late night", "24 hours"},
	})

	if !pm.Contains("closed", "Sonntag: Geschlossen") {
		t.Error("expected closed marker in German text")
	}
	if pm.Contains("late", "Sonntag: Geschlossen") {
		t.Error("closed text should not match late markers")
	}
	if !pm.Contains("late", "Open 24 hours") {
		t.Error("expected late marker")
	}
	if pm.Contains("missing", "closed") {
		t.Error("unknown label should never match")
	}
}

func TestPatternMatcher_ConcurrentReads(t *testing.T) {
	t.Parallel()

	pm := NewPatternMatcher(map[string][]string{"closed": {"closed"}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !pm.Contains("closed", "Tuesday: Closed") {
					t.Error("concurrent Contains returned false")
					return
				}
			}
		}()
	}
	wg.Wait()
}
