// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package cache

import (
	"math"
	"sync"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.32
)

// SpatialHashGrid buckets points into fixed-size lat/lon cells so proximity
// queries only inspect the cells around the query point.
//
// Use cases:
//   - Location repetition: count already-ranked venues near a candidate
//
// Time Complexity:
//   - Insert: O(1)
//   - Query nearby: O(k) where k = entries in nearby cells (vs O(n) for linear scan)
type SpatialHashGrid struct {
	mu      sync.RWMutex
	cells   map[CellKey][]*SpatialEntry
	cellDeg float64
	entries map[string]*SpatialEntry
}

// CellKey represents a grid cell coordinate.
type CellKey struct {
	X, Y int
}

// SpatialEntry represents one point in the grid.
type SpatialEntry struct {
	ID   string
	Lat  float64
	Lon  float64
	cell CellKey
}

// NewSpatialHashGrid creates a grid with cells of roughly cellSizeKm on a side.
// Non-positive sizes fall back to 1 km.
func NewSpatialHashGrid(cellSizeKm float64) *SpatialHashGrid {
	if cellSizeKm <= 0 || math.IsNaN(cellSizeKm) {
		cellSizeKm = 1
	}
	return &SpatialHashGrid{
		cells:   make(map[CellKey][]*SpatialEntry),
		cellDeg: cellSizeKm / kmPerDegree,
		entries: make(map[string]*SpatialEntry),
	}
}

// CellFor returns the cell containing a coordinate.
func (g *SpatialHashGrid) CellFor(lat, lon float64) CellKey {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	lon -= 180
	return CellKey{
		X: int(math.Floor(lon / g.cellDeg)),
		Y: int(math.Floor(lat / g.cellDeg)),
	}
}

// Insert adds or moves an entry.
func (g *SpatialHashGrid) Insert(id string, lat, lon float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.entries[id]; ok {
		g.unlinkLocked(existing)
	}

	entry := &SpatialEntry{ID: id, Lat: lat, Lon: lon, cell: g.CellFor(lat, lon)}
	g.cells[entry.cell] = append(g.cells[entry.cell], entry)
	g.entries[id] = entry
}

func (g *SpatialHashGrid) unlinkLocked(entry *SpatialEntry) {
	bucket := g.cells[entry.cell]
	for i, e := range bucket {
		if e.ID == entry.ID {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(g.cells, entry.cell)
		return
	}
	g.cells[entry.cell] = bucket
}

// QueryNearby returns copies of all entries within radiusKm of the point.
func (g *SpatialHashGrid) QueryNearby(lat, lon, radiusKm float64) []SpatialEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if radiusKm < 0 || len(g.entries) == 0 {
		return nil
	}

	// Longitude degrees shrink with latitude; widen the column span to match.
	latSpan := int(math.Ceil(radiusKm/kmPerDegree/g.cellDeg)) + 1
	cosLat := math.Cos(lat * math.Pi / 180)
	lonSpan := latSpan
	if cosLat > 0.01 {
		lonSpan = int(math.Ceil(radiusKm/(kmPerDegree*cosLat)/g.cellDeg)) + 1
	}

	center := g.CellFor(lat, lon)
	var out []SpatialEntry
	for dx := -lonSpan; dx <= lonSpan; dx++ {
		for dy := -latSpan; dy <= latSpan; dy++ {
			for _, e := range g.cells[CellKey{X: center.X + dx, Y: center.Y + dy}] {
				if HaversineKm(lat, lon, e.Lat, e.Lon) <= radiusKm {
					out = append(out, *e)
				}
			}
		}
	}
	return out
}

// CountNearby returns how many entries lie within radiusKm, excluding the
// entry with excludeID.
func (g *SpatialHashGrid) CountNearby(lat, lon, radiusKm float64, excludeID string) int {
	n := 0
	for _, e := range g.QueryNearby(lat, lon, radiusKm) {
		if e.ID != excludeID {
			n++
		}
	}
	return n
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
