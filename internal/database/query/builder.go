// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package query

import (
	"fmt"
	"math"
	"strings"
)

// kmPerDegreeLat is the length of one degree of latitude.
const kmPerDegreeLat = 111.32

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddLatitudeBand(41.01, 5)
//	wb.AddCategory("cafe")
//	whereClause, args := wb.Build()
//	// latitude BETWEEN ? AND ? AND lower(category) = ?
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
//
// Parameters:
//   - clause: SQL condition fragment (e.g., "quality_score IS NULL")
//   - args: Arguments to bind to placeholders in the clause
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddLatitudeBand restricts rows to latitudes within radiusKm of lat.
// It is a cheap prefilter ahead of the exact great-circle distance; the
// longitude span is left to the distance check because it widens toward
// the poles.
func (wb *WhereBuilder) AddLatitudeBand(lat, radiusKm float64) *WhereBuilder {
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		return wb
	}
	delta := radiusKm / kmPerDegreeLat
	wb.clauses = append(wb.clauses, "latitude BETWEEN ? AND ?")
	wb.args = append(wb.args, lat-delta, lat+delta)
	return wb
}

// AddCategory adds a case-insensitive category filter. Empty is skipped.
func (wb *WhereBuilder) AddCategory(category string) *WhereBuilder {
	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" {
		wb.clauses = append(wb.clauses, "lower(category) = ?")
		wb.args = append(wb.args, category)
	}
	return wb
}

// AddIDs adds an id filter using IN clause.
// Generates "id IN (?, ?, ...)". An empty list matches nothing.
func (wb *WhereBuilder) AddIDs(ids []string) *WhereBuilder {
	if len(ids) == 0 {
		wb.clauses = append(wb.clauses, "1=0")
		return wb
	}
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		wb.args = append(wb.args, id)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	return wb
}

// AddMissingQuality matches places without an external quality score.
func (wb *WhereBuilder) AddMissingQuality() *WhereBuilder {
	wb.clauses = append(wb.clauses, "quality_score IS NULL")
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
//
// Example:
//
//	whereClause, args := wb.Build()
//	query := fmt.Sprintf("SELECT * FROM places WHERE %s", whereClause)
//	db.QueryContext(ctx, query, args...)
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
