// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package reranking

import "strings"

// tagSet is a lowercased set of tags.
type tagSet map[string]struct{}

func newTagSet(tags []string) tagSet {
	set := make(tagSet, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// Jaccard computes |A∩B| / |A∪B| over two tag lists, case-insensitively.
// Two empty lists have similarity 0.
func Jaccard(a, b []string) float64 {
	return newTagSet(a).jaccard(newTagSet(b))
}

func (s tagSet) jaccard(other tagSet) float64 {
	if len(s) == 0 && len(other) == 0 {
		return 0
	}

	intersection := 0
	for t := range s {
		if _, ok := other[t]; ok {
			intersection++
		}
	}

	union := len(s) + len(other) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// maxSimilarity returns the highest Jaccard similarity between s and any set
// in history.
func (s tagSet) maxSimilarity(history []tagSet) float64 {
	best := 0.0
	for _, h := range history {
		if sim := s.jaccard(h); sim > best {
			best = sim
		}
	}
	return best
}
