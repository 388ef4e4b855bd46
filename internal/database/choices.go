// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/metrics"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// RecordChoice stores that userID picked placeID. The place must exist.
func (db *DB) RecordChoice(ctx context.Context, userID, placeID string) error {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO choices (user_id, place_id, chosen_at)
		SELECT ?, id, ? FROM places WHERE id = ?`,
		userID, db.now().UTC(), placeID)
	metrics.RecordDBQuery("record_choice", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record choice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPlaceNotFound, placeID)
	}
	return nil
}

// History returns the distinct places userID has chosen, most recent first.
func (db *DB) History(ctx context.Context, userID string, limit int) ([]models.Place, error) {
	if limit <= 0 {
		limit = db.cfg.HistoryLimit
	}

	q := fmt.Sprintf(`SELECT %s
		FROM places
		JOIN (
			SELECT place_id, MAX(chosen_at) AS last_chosen
			FROM choices
			WHERE user_id = ?
			GROUP BY place_id
		) AS recent ON recent.place_id = places.id
		ORDER BY recent.last_chosen DESC, places.id
		LIMIT %d`, placeColumns, limit)

	start := time.Now()
	places, err := db.queryPlaces(ctx, q, []interface{}{userID}, false)
	metrics.RecordDBQuery("history", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", userID, err)
	}
	return places, nil
}
