// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/AliTurkarslan/whereto-sub000/internal/database/query"
	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
	"github.com/AliTurkarslan/whereto-sub000/internal/metrics"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// earthRadiusKm matches cache.HaversineKm so SQL and in-process distances agree.
const earthRadiusKm = 6371.0

// placeColumns is the scan order shared by every place query.
const placeColumns = `id, name, address, latitude, longitude, category, cuisines,
	price_tier, rating, review_count,
	wheelchair_accessible, pet_friendly, kid_friendly, parking, wifi,
	vegetarian_options, vegan_options, outdoor_seating, indoor_seating,
	live_music, reservations,
	serves_breakfast, serves_lunch, serves_dinner, serves_brunch,
	atmosphere, opening_hours, sentiment, quality_score, justification`

// distanceExpr is the haversine great-circle distance from (?, ?) in km.
// Parameters: lat, lat, lon.
var distanceExpr = fmt.Sprintf(`2 * %f * asin(least(1.0, sqrt(
		pow(sin(radians(latitude - ?) / 2), 2) +
		cos(radians(?)) * cos(radians(latitude)) * pow(sin(radians(longitude - ?) / 2), 2)
	)))`, earthRadiusKm)

const upsertPlaceSQL = `INSERT INTO places (` + placeColumns + `, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		category = EXCLUDED.category,
		cuisines = EXCLUDED.cuisines,
		price_tier = EXCLUDED.price_tier,
		rating = EXCLUDED.rating,
		review_count = EXCLUDED.review_count,
		wheelchair_accessible = EXCLUDED.wheelchair_accessible,
		pet_friendly = EXCLUDED.pet_friendly,
		kid_friendly = EXCLUDED.kid_friendly,
		parking = EXCLUDED.parking,
		wifi = EXCLUDED.wifi,
		vegetarian_options = EXCLUDED.vegetarian_options,
		vegan_options = EXCLUDED.vegan_options,
		outdoor_seating = EXCLUDED.outdoor_seating,
		indoor_seating = EXCLUDED.indoor_seating,
		live_music = EXCLUDED.live_music,
		reservations = EXCLUDED.reservations,
		serves_breakfast = EXCLUDED.serves_breakfast,
		serves_lunch = EXCLUDED.serves_lunch,
		serves_dinner = EXCLUDED.serves_dinner,
		serves_brunch = EXCLUDED.serves_brunch,
		atmosphere = EXCLUDED.atmosphere,
		opening_hours = EXCLUDED.opening_hours,
		sentiment = COALESCE(EXCLUDED.sentiment, sentiment),
		quality_score = COALESCE(EXCLUDED.quality_score, quality_score),
		justification = COALESCE(EXCLUDED.justification, justification),
		updated_at = EXCLUDED.updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// UpsertPlaces inserts or updates a batch of places in one transaction.
// Places are normalized first; a later duplicate id in the batch wins.
// A batch without a quality score or sentiment keeps the stored values, so
// re-ingesting a catalog does not discard enrichment.
func (db *DB) UpsertPlaces(ctx context.Context, places []models.Place) (int, error) {
	if len(places) == 0 {
		return 0, nil
	}

	start := time.Now()
	batch := dedupePlaces(places)

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	err := db.withConflictRetry(ctx, func(ctx context.Context) error {
		return db.doUpsertPlaces(ctx, batch)
	})
	metrics.RecordDBQuery("upsert_places", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert places: %w", err)
	}

	logging.Debug().Int("count", len(batch)).Msg("Upserted places")
	return len(batch), nil
}

func (db *DB) doUpsertPlaces(ctx context.Context, batch []models.Place) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// Rollback after commit returns sql.ErrTxDone, which is expected
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, upsertPlaceSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer closeWithLog(stmt, "upsert statement")

	now := db.now().UTC()
	for i := range batch {
		args, err := placeArgs(&batch[i])
		if err != nil {
			return fmt.Errorf("place %s: %w", batch[i].ID, err)
		}
		args = append(args, now)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("place %s: %w", batch[i].ID, err)
		}
	}

	return tx.Commit()
}

// GetPlace returns one place with its stored (unadjusted) quality score.
func (db *DB) GetPlace(ctx context.Context, id string) (*models.Place, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `SELECT `+placeColumns+` FROM places WHERE id = ?`, id)

	p, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("get_place", time.Since(start), nil)
		return nil, fmt.Errorf("%w: %s", ErrPlaceNotFound, id)
	}
	metrics.RecordDBQuery("get_place", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get place %s: %w", id, err)
	}
	return &p, nil
}

// GetPlaces returns the places with the given ids in the order requested.
// Unknown ids are skipped.
func (db *DB) GetPlaces(ctx context.Context, ids []string) ([]models.Place, error) {
	if len(ids) == 0 {
		return []models.Place{}, nil
	}

	start := time.Now()
	whereClause, args := query.NewWhereBuilder().AddIDs(ids).BuildWithPrefix()
	places, err := db.queryPlaces(ctx, `SELECT `+placeColumns+` FROM places `+whereClause, args, false)
	metrics.RecordDBQuery("get_places", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get places: %w", err)
	}

	byID := make(map[string]models.Place, len(places))
	for i := range places {
		byID[places[i].ID] = places[i]
	}
	out := make([]models.Place, 0, len(places))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Nearby returns places within radiusKm of (lat, lon), nearest first, with
// DistanceKm filled in. Places with an external quality score carry the
// popularity-adjusted score (QualityAdjusted is set). A non-positive radius
// or limit falls back to the configured defaults.
func (db *DB) Nearby(ctx context.Context, lat, lon, radiusKm float64, category string, limit int) ([]models.Place, error) {
	if radiusKm <= 0 {
		radiusKm = db.cfg.DefaultRadiusKm
	}
	if limit <= 0 {
		limit = db.cfg.CandidateLimit
	}

	wb := query.NewWhereBuilder().
		AddLatitudeBand(lat, radiusKm).
		AddCategory(category)
	whereClause, whereArgs := wb.BuildWithPrefix()

	q := fmt.Sprintf(`SELECT * FROM (
		SELECT %s, %s AS distance_km
		FROM places
		%s
	) AS candidates
	WHERE distance_km <= ?
	ORDER BY distance_km, id
	LIMIT %d`, placeColumns, distanceExpr, whereClause, limit)

	args := make([]interface{}, 0, len(whereArgs)+4)
	args = append(args, lat, lat, lon)
	args = append(args, whereArgs...)
	args = append(args, radiusKm)

	start := time.Now()
	places, err := db.queryPlaces(ctx, q, args, true)
	metrics.RecordDBQuery("nearby", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby places: %w", err)
	}

	for i := range places {
		db.materializeQuality(&places[i])
	}
	return places, nil
}

// materializeQuality applies the popularity-confidence correction to an
// external quality score. Rating-only places are left for the engine so the
// enricher can still tell which places lack an external score.
func (db *DB) materializeQuality(p *models.Place) {
	if p.QualityScore == nil || p.QualityAdjusted {
		return
	}
	adjusted := db.confidence.Adjust(*p.QualityScore, p.Reviews())
	p.QualityScore = &adjusted
	p.QualityAdjusted = true
}

// UpdateQuality stores an external quality score and justification. An
// empty sentiment leaves the stored breakdown unchanged.
func (db *DB) UpdateQuality(ctx context.Context, id string, score float64, justification string, sentiment models.Sentiment) error {
	start := time.Now()
	score = models.ClampScore(score)
	now := db.now().UTC()

	var (
		res sql.Result
		err error
	)
	if sentiment.IsEmpty() {
		res, err = db.conn.ExecContext(ctx,
			`UPDATE places SET quality_score = ?, justification = ?, quality_updated_at = ? WHERE id = ?`,
			score, justification, now, id)
	} else {
		var encoded []byte
		encoded, err = json.Marshal(sentiment)
		if err != nil {
			return fmt.Errorf("encode sentiment: %w", err)
		}
		res, err = db.conn.ExecContext(ctx,
			`UPDATE places SET quality_score = ?, justification = ?, sentiment = ?, quality_updated_at = ? WHERE id = ?`,
			score, justification, string(encoded), now, id)
	}
	metrics.RecordDBQuery("update_quality", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update quality for %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPlaceNotFound, id)
	}
	return nil
}

// PlacesMissingQuality returns up to limit places without an external
// quality score, least recently updated first.
func (db *DB) PlacesMissingQuality(ctx context.Context, limit int) ([]models.Place, error) {
	if limit <= 0 {
		limit = db.cfg.CandidateLimit
	}

	whereClause, args := query.NewWhereBuilder().AddMissingQuality().BuildWithPrefix()
	q := fmt.Sprintf(`SELECT %s FROM places %s ORDER BY updated_at, id LIMIT %d`, placeColumns, whereClause, limit)

	start := time.Now()
	places, err := db.queryPlaces(ctx, q, args, false)
	metrics.RecordDBQuery("missing_quality", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query places missing quality: %w", err)
	}
	return places, nil
}

// CountPlaces returns the number of stored places.
func (db *DB) CountPlaces(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM places`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return n, nil
}

func (db *DB) queryPlaces(ctx context.Context, q string, args []interface{}, withDistance bool) ([]models.Place, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "place rows")

	places := make([]models.Place, 0)
	for rows.Next() {
		var (
			p   models.Place
			err error
		)
		if withDistance {
			p, err = scanPlaceWithDistance(rows)
		} else {
			p, err = scanPlace(rows)
		}
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// placeRow holds the nullable columns of a place row during a scan.
type placeRow struct {
	address, category, cuisines, atmosphere sql.NullString
	hours, sentiment, justification         sql.NullString
	rating, quality                         sql.NullFloat64
	reviews                                 sql.NullInt64
	priceTier                               int
}

func (r *placeRow) targets(p *models.Place) []interface{} {
	return []interface{}{
		&p.ID, &p.Name, &r.address, &p.Latitude, &p.Longitude, &r.category, &r.cuisines,
		&r.priceTier, &r.rating, &r.reviews,
		&p.Amenities.WheelchairAccessible, &p.Amenities.PetFriendly, &p.Amenities.KidFriendly,
		&p.Amenities.Parking, &p.Amenities.Wifi,
		&p.Amenities.VegetarianOptions, &p.Amenities.VeganOptions,
		&p.Amenities.OutdoorSeating, &p.Amenities.IndoorSeating,
		&p.Amenities.LiveMusic, &p.Amenities.Reservations,
		&p.Meals.Breakfast, &p.Meals.Lunch, &p.Meals.Dinner, &p.Meals.Brunch,
		&r.atmosphere, &r.hours, &r.sentiment, &r.quality, &r.justification,
	}
}

func scanPlace(s rowScanner) (models.Place, error) {
	var (
		p models.Place
		r placeRow
	)
	if err := s.Scan(r.targets(&p)...); err != nil {
		return models.Place{}, err
	}
	return p, r.fill(&p)
}

func scanPlaceWithDistance(s rowScanner) (models.Place, error) {
	var (
		p models.Place
		r placeRow
	)
	if err := s.Scan(append(r.targets(&p), &p.DistanceKm)...); err != nil {
		return models.Place{}, err
	}
	return p, r.fill(&p)
}

func (r *placeRow) fill(p *models.Place) error {
	p.Address = r.address.String
	p.Category = r.category.String
	p.Atmosphere = models.Atmosphere(r.atmosphere.String)
	p.Justification = r.justification.String
	p.PriceTier = models.PriceTier(r.priceTier).Clamp()

	if r.rating.Valid {
		v := r.rating.Float64
		p.Rating = &v
	}
	if r.reviews.Valid {
		n := int(r.reviews.Int64)
		p.ReviewCount = &n
	}
	if r.quality.Valid {
		v := r.quality.Float64
		p.QualityScore = &v
	}

	if r.cuisines.Valid && r.cuisines.String != "" {
		if err := json.Unmarshal([]byte(r.cuisines.String), &p.Cuisines); err != nil {
			return fmt.Errorf("decode cuisines for %s: %w", p.ID, err)
		}
	}
	if r.hours.Valid && r.hours.String != "" {
		if err := json.Unmarshal([]byte(r.hours.String), &p.Hours); err != nil {
			return fmt.Errorf("decode opening hours for %s: %w", p.ID, err)
		}
	}
	if r.sentiment.Valid && r.sentiment.String != "" {
		if err := json.Unmarshal([]byte(r.sentiment.String), &p.Sentiment); err != nil {
			return fmt.Errorf("decode sentiment for %s: %w", p.ID, err)
		}
	}
	return nil
}

// placeArgs returns the insert arguments for p in placeColumns order.
// Nullable values are passed as untyped nil.
func placeArgs(p *models.Place) ([]interface{}, error) {
	cuisines, err := jsonOrNull(len(p.Cuisines) > 0, p.Cuisines)
	if err != nil {
		return nil, fmt.Errorf("encode cuisines: %w", err)
	}
	stored := p.Hours.ForStorage()
	hours, err := jsonOrNull(stored.Kind() != models.HoursUnknown, stored)
	if err != nil {
		return nil, fmt.Errorf("encode opening hours: %w", err)
	}
	sentiment, err := jsonOrNull(!p.Sentiment.IsEmpty(), p.Sentiment)
	if err != nil {
		return nil, fmt.Errorf("encode sentiment: %w", err)
	}

	return []interface{}{
		p.ID, p.Name, stringOrNull(p.Address), p.Latitude, p.Longitude,
		stringOrNull(p.Category), cuisines,
		int(p.PriceTier.Clamp()), floatOrNull(p.Rating), intOrNull(p.ReviewCount),
		p.Amenities.WheelchairAccessible, p.Amenities.PetFriendly, p.Amenities.KidFriendly,
		p.Amenities.Parking, p.Amenities.Wifi,
		p.Amenities.VegetarianOptions, p.Amenities.VeganOptions,
		p.Amenities.OutdoorSeating, p.Amenities.IndoorSeating,
		p.Amenities.LiveMusic, p.Amenities.Reservations,
		p.Meals.Breakfast, p.Meals.Lunch, p.Meals.Dinner, p.Meals.Brunch,
		stringOrNull(strings.ToLower(strings.TrimSpace(string(p.Atmosphere)))),
		hours, sentiment, floatOrNull(p.QualityScore), stringOrNull(p.Justification),
	}, nil
}

func dedupePlaces(places []models.Place) []models.Place {
	index := make(map[string]int, len(places))
	out := make([]models.Place, 0, len(places))
	for i := range places {
		p := places[i].Normalize()
		if j, ok := index[p.ID]; ok {
			out[j] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}

func jsonOrNull(present bool, v interface{}) (interface{}, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func stringOrNull(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func floatOrNull(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intOrNull(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
