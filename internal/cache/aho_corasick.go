// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package cache

import (
	"strings"
	"unicode"
)

// AhoCorasick reports whether any phrase of a fixed set occurs in a text in a
// single pass, O(n + m) for text length n and total pattern length m.
//
// The automaton is immutable once built, so a built instance can be shared by
// concurrent readers without locking. Matching is case-insensitive and
// whitespace-insensitive: runs of Unicode spaces in both patterns and text
// collapse to a single space before matching.
//
// Example:
//
//	ac := NewAhoCorasick([]string{"24 hours", "late night"})
//	ac.Contains("Friday: Open 24 Hours") // true
type AhoCorasick struct {
	nodes    []acNode
	patterns []string
}

type acNode struct {
	next   map[rune]int
	fail   int
	output []int // pattern indices ending here, including via failure links
}

// NewAhoCorasick builds an automaton for patterns. Empty patterns are ignored.
func NewAhoCorasick(patterns []string) *AhoCorasick {
	ac := &AhoCorasick{nodes: []acNode{{next: map[rune]int{}}}}
	for _, p := range patterns {
		norm := normalizeText(p)
		if norm == "" {
			continue
		}
		ac.insert(norm, len(ac.patterns))
		ac.patterns = append(ac.patterns, norm)
	}
	ac.link()
	return ac
}

func (ac *AhoCorasick) insert(pattern string, index int) {
	state := 0
	for _, r := range pattern {
		nxt, ok := ac.nodes[state].next[r]
		if !ok {
			ac.nodes = append(ac.nodes, acNode{next: map[rune]int{}})
			nxt = len(ac.nodes) - 1
			ac.nodes[state].next[r] = nxt
		}
		state = nxt
	}
	ac.nodes[state].output = append(ac.nodes[state].output, index)
}

// link computes failure links breadth-first from the root.
func (ac *AhoCorasick) link() {
	queue := make([]int, 0, len(ac.nodes))
	for _, child := range ac.nodes[0].next {
		ac.nodes[child].fail = 0
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		for r, child := range ac.nodes[state].next {
			queue = append(queue, child)

			fail := ac.nodes[state].fail
			for fail != 0 {
				if _, ok := ac.nodes[fail].next[r]; ok {
					break
				}
				fail = ac.nodes[fail].fail
			}
			if target, ok := ac.nodes[fail].next[r]; ok && target != child {
				ac.nodes[child].fail = target
			} else {
				ac.nodes[child].fail = 0
			}
			ac.nodes[child].output = append(ac.nodes[child].output, ac.nodes[ac.nodes[child].fail].output...)
		}
	}
}

func (ac *AhoCorasick) step(state int, r rune) int {
	for {
		if nxt, ok := ac.nodes[state].next[r]; ok {
			return nxt
		}
		if state == 0 {
			return 0
		}
		state = ac.nodes[state].fail
	}
}

// Contains reports whether any pattern occurs in text.
func (ac *AhoCorasick) Contains(text string) bool {
	if len(ac.patterns) == 0 {
		return false
	}
	state := 0
	for _, r := range normalizeText(text) {
		state = ac.step(state, r)
		if len(ac.nodes[state].output) > 0 {
			return true
		}
	}
	return false
}

// PatternMatcher groups phrase sets under labels, e.g. "closed" and "late"
// markers for free-text opening hours, and answers which labels occur.
type PatternMatcher struct {
	byName map[string]*AhoCorasick
}

// NewPatternMatcher builds one automaton per label.
func NewPatternMatcher(sets map[string][]string) *PatternMatcher {
	pm := &PatternMatcher{byName: make(map[string]*AhoCorasick, len(sets))}
	for label, phrases := range sets {
		pm.byName[label] = NewAhoCorasick(phrases)
	}
	return pm
}

// Contains reports whether any phrase under label occurs in text.
// Unknown labels never match.
func (pm *PatternMatcher) Contains(label, text string) bool {
	ac, ok := pm.byName[label]
	if !ok {
		return false
	}
	return ac.Contains(text)
}

// normalizeText lowercases text and collapses whitespace runs to one space.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteRune(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
