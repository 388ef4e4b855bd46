// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package cache provides in-memory data structures shared by the recommendation
pipeline and the scoring client.

# Overview

The package provides:
  - AhoCorasick / PatternMatcher: single-pass multi-phrase search, used for
    the "closed" and "open late" markers in free-text opening hours
  - SpatialHashGrid: fixed-cell geo index, used by the diversity reranker to
    count already-ranked venues near a candidate
  - LRU: generic least-recently-used cache with TTL, used to memoize
    generative quality scores in front of the Badger store and to
    deduplicate refresh requests

# Usage Example

Marker search:

	markers := cache.NewPatternMatcher(map[string][]string{
	    "closed": {"closed", "kapalı"},
	    "late":   {"24 hours", "late night"},
	})
	markers.Contains("closed", "Monday: Closed") // true

Location repetition:

	grid := cache.NewSpatialHashGrid(0.5)
	grid.Insert("p1", 41.0369, 28.9850)
	n := grid.CountNearby(41.0370, 28.9851, 0.3, "p2") // 1

Score memo:

	memo := cache.NewLRU[float64](4096, 10*time.Minute)
	memo.Set("score:p1:friends", 82)
	if v, ok := memo.Get("score:p1:friends"); ok {
	    // use v
	}

# Thread Safety

LRU and SpatialHashGrid guard their state with a mutex. AhoCorasick and
PatternMatcher are immutable after construction and safe for concurrent use
without locking.
*/
package cache
