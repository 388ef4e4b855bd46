// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package reranking

import (
	"math"
	"testing"
)

func TestJaccard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 0},
		{"one empty", []string{"cafe"}, nil, 0},
		{"identical", []string{"cafe", "italian"}, []string{"italian", "cafe"}, 1},
		{"disjoint", []string{"cafe"}, []string{"bar"}, 0},
		{"one of three", []string{"cafe", "italian"}, []string{"cafe", "turkish"}, 1.0 / 3.0},
		{"case insensitive", []string{"Cafe"}, []string{" cafe "}, 1},
		{"duplicates collapse", []string{"cafe", "cafe"}, []string{"cafe"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Jaccard(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}
			if got := Jaccard(tt.b, tt.a); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard() is not symmetric: %v", got)
			}
		})
	}
}

func TestTagSet_MaxSimilarity(t *testing.T) {
	t.Parallel()

	s := newTagSet([]string{"a", "b"})
	history := []tagSet{
		newTagSet([]string{"c"}),
		newTagSet([]string{"a", "c"}),
		newTagSet([]string{"a", "b", "c"}),
	}
	if got := s.maxSimilarity(history); math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("maxSimilarity() = %v, want 2/3", got)
	}
	if got := s.maxSimilarity(nil); got != 0 {
		t.Errorf("maxSimilarity(nil) = %v, want 0", got)
	}
}
