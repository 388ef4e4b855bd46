// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package reranking

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/AliTurkarslan/whereto-sub000/internal/cache"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
	"github.com/AliTurkarslan/whereto-sub000/internal/recommend"
)

// minGridCellKm keeps the spatial grid usable for tiny radii.
const minGridCellKm = 0.05

// Diversity penalizes repetition among the top results and rewards
// qualified places that differ from the user's history.
//
// Items are walked greedily in pre-diversity order (BaseScore + ContextDelta).
// The k-th repeat (zero-based) of a value already seen earlier in the walk
// costs weight*k*factor per dimension:
//
//	category     factor 1
//	cuisine      CuisineFactor     (primary cuisine only)
//	atmosphere   AtmosphereFactor
//	location     LocationFactor    (places within LocationRadiusKm)
//
// A dimension whose value is identical across the whole window carries no
// signal and is skipped. The total penalty is capped at MaxPenalty and only
// the first Window items are penalized.
//
// Serendipity adds SerendipityWeight*(1 - maxJaccard) for places whose
// pre-diversity score clears QualityFloor, where maxJaccard is the highest
// tag-set similarity to any history item. Places already in history get no
// bonus.
//
// Both adjustments are recomputed from the pre-diversity score on every call,
// so reranking an already reranked list changes nothing.
type Diversity struct {
	cfg recommend.DiversityConfig
}

// NewDiversity creates a diversity reranker.
func NewDiversity(cfg recommend.DiversityConfig) *Diversity {
	return &Diversity{cfg: cfg}
}

// Name returns the reranker identifier.
func (d *Diversity) Name() string {
	return "diversity"
}

// dimension extracts one repetition key from a place. Empty keys never repeat.
type dimension struct {
	factor float64
	key    func(p *models.Place) string
}

// Rerank sets DiversityDelta and SerendipityDelta on a copy of items and
// recomputes their final scores. Item order is left to the caller's sort.
func (d *Diversity) Rerank(_ context.Context, items []models.ScoredPlace, opts models.DiversityOptions) []models.ScoredPlace {
	out := make([]models.ScoredPlace, len(items))
	copy(out, items)
	if len(out) == 0 {
		return out
	}

	weight := d.cfg.PenaltyWeight
	if opts.PenaltyWeight != nil && *opts.PenaltyWeight >= 0 && !math.IsNaN(*opts.PenaltyWeight) {
		weight = *opts.PenaltyWeight
	}

	order := preDiversityOrder(out)
	window := d.cfg.Window
	if window > len(order) {
		window = len(order)
	}

	dims := d.activeDimensions(out, order[:window])
	seen := make([]map[string]int, len(dims))
	for i := range seen {
		seen[i] = make(map[string]int)
	}

	var grid *cache.SpatialHashGrid
	useLocation := d.cfg.LocationRadiusKm > 0 && d.cfg.LocationFactor > 0
	if useLocation {
		grid = cache.NewSpatialHashGrid(math.Max(d.cfg.LocationRadiusKm, minGridCellKm))
	}

	history := historyTagSets(opts.History)
	historyIDs := make(map[string]struct{}, len(opts.History))
	for i := range opts.History {
		historyIDs[opts.History[i].ID] = struct{}{}
	}

	for rank, idx := range order {
		item := &out[idx]

		penalty := 0.0
		if rank < window && weight > 0 {
			for i, dim := range dims {
				if key := dim.key(&item.Place); key != "" {
					penalty += weight * dim.factor * float64(seen[i][key])
					seen[i][key]++
				}
			}
			if useLocation && hasCoordinates(&item.Place) {
				near := grid.CountNearby(item.Latitude, item.Longitude, d.cfg.LocationRadiusKm, item.ID)
				penalty += weight * d.cfg.LocationFactor * float64(near)
				grid.Insert(item.ID, item.Latitude, item.Longitude)
			}
			penalty = math.Min(penalty, d.cfg.MaxPenalty)
		}
		item.DiversityDelta = -penalty

		item.SerendipityDelta = d.serendipity(item, history, historyIDs)
		item.Recompute()
	}

	return out
}

// activeDimensions returns the tag dimensions that vary within the window.
func (d *Diversity) activeDimensions(items []models.ScoredPlace, window []int) []dimension {
	all := []dimension{
		{factor: 1, key: func(p *models.Place) string { return strings.ToLower(strings.TrimSpace(p.Category)) }},
		{factor: d.cfg.CuisineFactor, key: func(p *models.Place) string { return p.PrimaryCuisine() }},
		{factor: d.cfg.AtmosphereFactor, key: func(p *models.Place) string {
			if p.Atmosphere.Index() < 0 {
				return ""
			}
			return strings.ToLower(string(p.Atmosphere))
		}},
	}

	active := make([]dimension, 0, len(all))
	for _, dim := range all {
		if dim.factor <= 0 {
			continue
		}
		values := make(map[string]struct{})
		for _, idx := range window {
			values[dim.key(&items[idx].Place)] = struct{}{}
		}
		if len(values) > 1 {
			active = append(active, dim)
		}
	}
	return active
}

func (d *Diversity) serendipity(item *models.ScoredPlace, history []tagSet, historyIDs map[string]struct{}) float64 {
	if len(history) == 0 || d.cfg.SerendipityWeight <= 0 {
		return 0
	}
	if item.PreDiversityScore() < d.cfg.QualityFloor {
		return 0
	}
	if _, chosen := historyIDs[item.ID]; chosen {
		return 0
	}

	tags := newTagSet(item.Tags())
	if len(tags) == 0 {
		return 0
	}
	return d.cfg.SerendipityWeight * (1 - tags.maxSimilarity(history))
}

// preDiversityOrder returns item indices sorted by pre-diversity score
// descending, then match score descending, distance ascending and ID.
func preDiversityOrder(items []models.ScoredPlace) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := &items[order[i]], &items[order[j]]
		if pa, pb := a.PreDiversityScore(), b.PreDiversityScore(); pa != pb {
			return pa > pb
		}
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.ID < b.ID
	})
	return order
}

func historyTagSets(history []models.Place) []tagSet {
	out := make([]tagSet, 0, len(history))
	for i := range history {
		if set := newTagSet(history[i].Tags()); len(set) > 0 {
			out = append(out, set)
		}
	}
	return out
}

func hasCoordinates(p *models.Place) bool {
	return p.Latitude != 0 || p.Longitude != 0
}

// Ensure Diversity implements the interface.
var _ recommend.Reranker = (*Diversity)(nil)
