// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
)

// Migration represents a versioned database migration.
type Migration struct {
	Version     int       // Unique version number (monotonically increasing)
	Name        string    // Human-readable migration name
	Description string    // Description of what this migration does
	SQL         string    // SQL statement to execute
	AppliedAt   time.Time // When the migration was applied (populated on query)
}

// schemaMigrationsTable creates the migration tracking table
const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// getMigrations returns all versioned migrations in order.
// Migrations MUST be append-only - never modify or remove existing migrations
// once databases exist with them applied.
//
// Places keep amenity and meal flags as columns; opening hours, cuisines and
// sentiment have loose shapes and are stored as JSON text. No secondary
// index is created on places: DuckDB upserts cannot assign to indexed
// columns.
func (db *DB) getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "create_places",
			Description: "Venue catalog with flattened features",
			SQL: `CREATE TABLE IF NOT EXISTS places (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				address TEXT,
				latitude DOUBLE NOT NULL,
				longitude DOUBLE NOT NULL,
				category TEXT,
				cuisines TEXT,
				price_tier INTEGER NOT NULL DEFAULT 2,
				rating DOUBLE,
				review_count INTEGER,

				wheelchair_accessible BOOLEAN NOT NULL DEFAULT false,
				pet_friendly BOOLEAN NOT NULL DEFAULT false,
				kid_friendly BOOLEAN NOT NULL DEFAULT false,
				parking BOOLEAN NOT NULL DEFAULT false,
				wifi BOOLEAN NOT NULL DEFAULT false,
				vegetarian_options BOOLEAN NOT NULL DEFAULT false,
				vegan_options BOOLEAN NOT NULL DEFAULT false,
				outdoor_seating BOOLEAN NOT NULL DEFAULT false,
				indoor_seating BOOLEAN NOT NULL DEFAULT false,
				live_music BOOLEAN NOT NULL DEFAULT false,
				reservations BOOLEAN NOT NULL DEFAULT false,

				serves_breakfast BOOLEAN NOT NULL DEFAULT false,
				serves_lunch BOOLEAN NOT NULL DEFAULT false,
				serves_dinner BOOLEAN NOT NULL DEFAULT false,
				serves_brunch BOOLEAN NOT NULL DEFAULT false,

				atmosphere TEXT,
				opening_hours TEXT,
				sentiment TEXT,
				quality_score DOUBLE,
				justification TEXT,
				updated_at TIMESTAMP NOT NULL,
				quality_updated_at TIMESTAMP
			)`,
		},
		{
			Version:     2,
			Name:        "create_choices",
			Description: "User choice history for serendipity",
			SQL: `CREATE TABLE IF NOT EXISTS choices (
				user_id TEXT NOT NULL,
				place_id TEXT NOT NULL,
				chosen_at TIMESTAMP NOT NULL
			)`,
		},
		{
			Version:     3,
			Name:        "index_choices_user",
			Description: "History lookups by user",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_choices_user ON choices(user_id, chosen_at)`,
		},
	}
}

// createMigrationsTable creates the schema_migrations table if it doesn't exist
func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, schemaMigrationsTable)
	return err
}

// getAppliedMigrations returns a map of version -> Migration for all applied migrations
func (db *DB) getAppliedMigrations(ctx context.Context) (map[int]Migration, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer closeWithLog(rows, "migration rows")

	applied := make(map[int]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[m.Version] = m
	}
	return applied, rows.Err()
}

// runVersionedMigrations executes only migrations that haven't been applied yet.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	newMigrations := 0
	for _, m := range db.getMigrations() {
		if _, exists := applied[m.Version]; exists {
			continue
		}

		if _, err := db.conn.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}

		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, description) VALUES (?, ?, ?)`,
			m.Version, m.Name, m.Description)
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
		}

		newMigrations++
	}

	if newMigrations > 0 {
		logging.Info().Int("count", newMigrations).Msg("Applied database migrations")
	}

	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration version
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
