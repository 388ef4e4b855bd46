// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package database

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/AliTurkarslan/whereto-sub000/internal/cache"
	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
	"github.com/AliTurkarslan/whereto-sub000/internal/recommend"
)

// testDBSemaphore serializes DuckDB-backed tests. Concurrent CGO calls from
// many in-memory databases can stall under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB opens an in-memory place store held for the whole test.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	cfg := &config.DatabaseConfig{
		Path:            ":memory:",
		MaxMemory:       "512MB",
		Threads:         2,
		CandidateLimit:  200,
		DefaultRadiusKm: 5,
		HistoryLimit:    20,
	}
	db, err := New(cfg, recommend.ConfidenceAdjuster{K: 10, Prior: 50})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

// steppingClock returns a clock that advances one minute per call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func mustUpsert(t *testing.T, db *DB, places ...models.Place) {
	t.Helper()
	if _, err := db.UpsertPlaces(context.Background(), places); err != nil {
		t.Fatalf("UpsertPlaces() error = %v", err)
	}
}

func TestNew_AppliesMigrations(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.GetCurrentSchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion() error = %v", err)
	}
	if want := len(db.getMigrations()); version != want {
		t.Errorf("schema version = %d, want %d", version, want)
	}

	// Re-running is a no-op.
	if err := db.runVersionedMigrations(); err != nil {
		t.Errorf("second migration run error = %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, recommend.ConfidenceAdjuster{}); err == nil {
		t.Error("New(nil) should fail")
	}
}

func TestConnectionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path, mem string
		threads   int
		want      string
	}{
		{":memory:", "", 4, ":memory:?threads=4"},
		{"/data/w.duckdb", "2GB", 2, "/data/w.duckdb?threads=2&max_memory=2GB"},
	}
	for _, tt := range tests {
		if got := connectionString(tt.path, tt.threads, tt.mem); got != tt.want {
			t.Errorf("connectionString(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsTransactionConflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("TransactionContext Error: Transaction conflict: cannot update"), true},
		{errors.New("Conflict on update!"), true},
		{errors.New("Binder Error: column not found"), false},
	}
	for _, tt := range tests {
		if got := isTransactionConflict(tt.err); got != tt.want {
			t.Errorf("isTransactionConflict(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWithConflictRetry(t *testing.T) {
	t.Parallel()

	db := &DB{maxRetries: 3}
	ctx := context.Background()

	t.Run("retries conflicts", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := db.withConflictRetry(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("Transaction conflict")
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d; want nil, 3", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := db.withConflictRetry(ctx, func(context.Context) error {
			calls++
			return errors.New("Transaction conflict")
		})
		if err == nil || calls != 3 {
			t.Errorf("err = %v, calls = %d; want error after 3", err, calls)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		t.Parallel()
		calls := 0
		sentinel := errors.New("syntax error")
		err := db.withConflictRetry(ctx, func(context.Context) error {
			calls++
			return sentinel
		})
		if !errors.Is(err, sentinel) || calls != 1 {
			t.Errorf("err = %v, calls = %d; want sentinel once", err, calls)
		}
	})
}

func TestUpsertPlaces_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := models.Place{
		ID:          "p1",
		Name:        "Kahve Durağı",
		Address:     "Moda Cd. 12",
		Latitude:    40.987,
		Longitude:   29.026,
		Category:    "cafe",
		Cuisines:    []string{"coffee", "turkish"},
		PriceTier:   1,
		Rating:      ptrFloat(4.5),
		ReviewCount: ptrInt(120),
		Amenities:   models.Amenities{Wifi: true, OutdoorSeating: true, PetFriendly: true},
		Meals:       models.Meals{Breakfast: true, Brunch: true},
		Atmosphere:  models.AtmosphereQuiet,
		Hours: models.PeriodSchedule(
			models.Period{Day: time.Monday, Open: 8 * 60, Close: 22 * 60},
			models.Period{Day: time.Friday, Open: 18 * 60, Close: 2 * 60},
		),
		Sentiment:     models.Sentiment{Service: ptrFloat(80), Speed: ptrFloat(60)},
		QualityScore:  ptrFloat(88),
		Justification: "quiet, good coffee",
	}

	n, err := db.UpsertPlaces(ctx, []models.Place{in})
	if err != nil || n != 1 {
		t.Fatalf("UpsertPlaces() = %d, %v", n, err)
	}

	got, err := db.GetPlace(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPlace() error = %v", err)
	}

	if got.Name != in.Name || got.Address != in.Address || got.Category != in.Category {
		t.Errorf("identity mismatch: %+v", got)
	}
	if got.Latitude != in.Latitude || got.Longitude != in.Longitude {
		t.Errorf("coordinates = (%v, %v)", got.Latitude, got.Longitude)
	}
	if len(got.Cuisines) != 2 || got.Cuisines[1] != "turkish" {
		t.Errorf("Cuisines = %v", got.Cuisines)
	}
	if got.PriceTier != 1 || *got.Rating != 4.5 || *got.ReviewCount != 120 {
		t.Errorf("price/rating/reviews = %d/%v/%v", got.PriceTier, *got.Rating, *got.ReviewCount)
	}
	if got.Amenities != in.Amenities || got.Meals != in.Meals {
		t.Errorf("flags = %+v %+v", got.Amenities, got.Meals)
	}
	if got.Atmosphere != models.AtmosphereQuiet {
		t.Errorf("Atmosphere = %q", got.Atmosphere)
	}
	if got.Hours.Kind() != models.HoursPeriods || len(got.Hours.Periods) != 2 {
		t.Fatalf("Hours = %+v", got.Hours)
	}
	if p := got.Hours.Periods[1]; p.Day != time.Friday || p.Open != 1080 || p.Close != 120 {
		t.Errorf("Friday period = %+v", p)
	}
	if v, ok := got.Sentiment.Get(models.SentimentService); !ok || v != 80 {
		t.Errorf("Sentiment.Service = %v, %v", v, ok)
	}
	if _, ok := got.Sentiment.Get(models.SentimentPrice); ok {
		t.Error("Sentiment.Price should be absent")
	}
	if got.QualityScore == nil || *got.QualityScore != 88 || got.QualityAdjusted {
		t.Errorf("GetPlace should return the raw quality score, got %v adjusted=%v", got.QualityScore, got.QualityAdjusted)
	}
	if got.Justification != in.Justification {
		t.Errorf("Justification = %q", got.Justification)
	}
}

func TestUpsertPlaces_ExplicitFlagAndMissingFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustUpsert(t, db, models.Place{ID: "flag", Name: "Flag", Hours: models.ExplicitFlag(false)})
	mustUpsert(t, db, models.Place{ID: "bare", Name: "Bare"})

	flag, err := db.GetPlace(ctx, "flag")
	if err != nil {
		t.Fatal(err)
	}
	if flag.Hours.Kind() != models.HoursExplicitFlag || *flag.Hours.OpenNow {
		t.Errorf("flag Hours = %+v", flag.Hours)
	}

	bare, err := db.GetPlace(ctx, "bare")
	if err != nil {
		t.Fatal(err)
	}
	if bare.Hours.Kind() != models.HoursUnknown || bare.Rating != nil || bare.ReviewCount != nil ||
		bare.QualityScore != nil || !bare.Sentiment.IsEmpty() || len(bare.Cuisines) != 0 {
		t.Errorf("bare place should have no optional data: %+v", bare)
	}
}

func TestUpsertPlaces_ScheduleOverridesIngestionFlag(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	closed := false
	hours := models.OpeningHours{OpenNow: &closed}
	for d := time.Sunday; d <= time.Saturday; d++ {
		hours.Periods = append(hours.Periods, models.Period{Day: d, Open: 9 * 60, Close: 22 * 60})
	}
	mustUpsert(t, db, models.Place{ID: "sched", Name: "Sched", Latitude: centerLat, Longitude: centerLon, Hours: hours})

	got, err := db.Nearby(ctx, centerLat, centerLon, 1, "", 0)
	if err != nil {
		t.Fatalf("Nearby() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Nearby() = %v", placeIDs(got))
	}
	if got[0].Hours.OpenNow != nil || got[0].Hours.Kind() != models.HoursPeriods || len(got[0].Hours.Periods) != 7 {
		t.Fatalf("stored Hours = %+v, want periods only", got[0].Hours)
	}

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	tests := []struct {
		name string
		hour int
		want int
	}{
		{"open by schedule", 12, 1},
		{"closed by schedule", 23, 0},
	}
	for _, tt := range tests {
		snap := models.Context{Hour: tt.hour, Weekday: time.Wednesday}
		res := engine.Recommend(ctx, got, models.Profile{}, &snap, nil)
		if len(res) != tt.want {
			t.Errorf("%s: Recommend() returned %d places, want %d", tt.name, len(res), tt.want)
		}
	}
}

func TestUpsertPlaces_Normalizes(t *testing.T) {
	db := setupTestDB(t)

	mustUpsert(t, db, models.Place{
		ID: "n", Name: "N", PriceTier: 9, Rating: ptrFloat(7), ReviewCount: ptrInt(-3),
		QualityScore: ptrFloat(140),
	})
	got, err := db.GetPlace(context.Background(), "n")
	if err != nil {
		t.Fatal(err)
	}
	if got.PriceTier != models.MaxPriceTier || *got.Rating != models.MaxRating || *got.ReviewCount != 0 || *got.QualityScore != 100 {
		t.Errorf("values not clamped: tier=%d rating=%v reviews=%v quality=%v",
			got.PriceTier, *got.Rating, *got.ReviewCount, *got.QualityScore)
	}
}

func TestUpsertPlaces_DuplicateLastWins(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.UpsertPlaces(context.Background(), []models.Place{
		{ID: "d", Name: "First"},
		{ID: "d", Name: "Second"},
	})
	if err != nil || n != 1 {
		t.Fatalf("UpsertPlaces() = %d, %v; want 1", n, err)
	}
	got, err := db.GetPlace(context.Background(), "d")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Second" {
		t.Errorf("Name = %q, want Second", got.Name)
	}
}

func TestUpsertPlaces_KeepsEnrichment(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustUpsert(t, db, models.Place{ID: "k", Name: "Before"})
	if err := db.UpdateQuality(ctx, "k", 77, "solid", models.Sentiment{Quality: ptrFloat(90)}); err != nil {
		t.Fatal(err)
	}
	mustUpsert(t, db, models.Place{ID: "k", Name: "After"})

	got, err := db.GetPlace(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "After" {
		t.Errorf("Name = %q, want After", got.Name)
	}
	if got.QualityScore == nil || *got.QualityScore != 77 || got.Justification != "solid" {
		t.Errorf("enrichment lost: quality=%v justification=%q", got.QualityScore, got.Justification)
	}
	if v, ok := got.Sentiment.Get(models.SentimentQuality); !ok || v != 90 {
		t.Errorf("sentiment lost: %v %v", v, ok)
	}
}

func TestUpsertPlaces_Empty(t *testing.T) {
	t.Parallel()

	db := &DB{}
	n, err := db.UpsertPlaces(context.Background(), nil)
	if n != 0 || err != nil {
		t.Errorf("UpsertPlaces(nil) = %d, %v", n, err)
	}
}

func TestGetPlace_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetPlace(context.Background(), "missing")
	if !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("error = %v, want ErrPlaceNotFound", err)
	}
}

func TestGetPlaces_Order(t *testing.T) {
	db := setupTestDB(t)

	mustUpsert(t, db,
		models.Place{ID: "a", Name: "A"},
		models.Place{ID: "b", Name: "B"},
		models.Place{ID: "c", Name: "C"},
	)

	got, err := db.GetPlaces(context.Background(), []string{"c", "missing", "a", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if ids := placeIDs(got); len(ids) != 2 || ids[0] != "c" || ids[1] != "a" {
		t.Errorf("GetPlaces() ids = %v, want [c a]", ids)
	}

	empty, err := db.GetPlaces(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetPlaces(nil) = %v, %v", empty, err)
	}
}

func placeIDs(places []models.Place) []string {
	out := make([]string, len(places))
	for i := range places {
		out[i] = places[i].ID
	}
	return out
}

// Istanbul, Kadıköy pier.
const centerLat, centerLon = 40.9905, 29.0230

func seedNearby(t *testing.T, db *DB) {
	t.Helper()
	mustUpsert(t, db,
		models.Place{ID: "here", Name: "Here", Category: "cafe", Latitude: centerLat, Longitude: centerLon,
			QualityScore: ptrFloat(90), ReviewCount: ptrInt(10)},
		models.Place{ID: "near", Name: "Near", Category: "Restaurant", Latitude: centerLat + 0.01, Longitude: centerLon,
			Rating: ptrFloat(4)},
		models.Place{ID: "mid", Name: "Mid", Category: "cafe", Latitude: centerLat, Longitude: centerLon + 0.04},
		models.Place{ID: "far", Name: "Far", Category: "cafe", Latitude: centerLat + 0.1, Longitude: centerLon},
	)
}

func TestNearby_RadiusAndOrder(t *testing.T) {
	db := setupTestDB(t)
	seedNearby(t, db)

	got, err := db.Nearby(context.Background(), centerLat, centerLon, 5, "", 0)
	if err != nil {
		t.Fatalf("Nearby() error = %v", err)
	}

	ids := placeIDs(got)
	want := []string{"here", "near", "mid"}
	if len(ids) != len(want) {
		t.Fatalf("Nearby() ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Nearby() ids = %v, want %v", ids, want)
		}
	}

	for i := range got {
		p := &got[i]
		expected := cache.HaversineKm(centerLat, centerLon, p.Latitude, p.Longitude)
		if math.Abs(p.DistanceKm-expected) > 1e-6 {
			t.Errorf("%s DistanceKm = %v, want %v", p.ID, p.DistanceKm, expected)
		}
	}
}

func TestNearby_MaterializesQuality(t *testing.T) {
	db := setupTestDB(t)
	seedNearby(t, db)

	got, err := db.Nearby(context.Background(), centerLat, centerLon, 5, "", 0)
	if err != nil {
		t.Fatal(err)
	}

	here, near := got[0], got[1]
	// (10*50 + 10*90) / 20
	if here.QualityScore == nil || *here.QualityScore != 70 || !here.QualityAdjusted {
		t.Errorf("here quality = %v adjusted=%v, want 70 adjusted", here.QualityScore, here.QualityAdjusted)
	}
	if near.QualityScore != nil || near.QualityAdjusted {
		t.Errorf("rating-only place should stay raw, got %v adjusted=%v", near.QualityScore, near.QualityAdjusted)
	}
}

func TestNearby_FiltersAndLimits(t *testing.T) {
	db := setupTestDB(t)
	seedNearby(t, db)
	ctx := context.Background()

	tests := []struct {
		name     string
		radius   float64
		category string
		limit    int
		want     []string
	}{
		{name: "category is case-insensitive", radius: 5, category: "restaurant", want: []string{"near"}},
		{name: "limit", radius: 5, limit: 2, want: []string{"here", "near"}},
		{name: "tiny radius", radius: 0.5, want: []string{"here"}},
		{name: "wide radius", radius: 20, category: "CAFE", want: []string{"here", "mid", "far"}},
		{name: "default radius", radius: 0, want: []string{"here", "near", "mid"}},
		{name: "unknown category", radius: 5, category: "museum", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Nearby(ctx, centerLat, centerLon, tt.radius, tt.category, tt.limit)
			if err != nil {
				t.Fatal(err)
			}
			ids := placeIDs(got)
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestUpdateQuality(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUpsert(t, db, models.Place{ID: "q", Name: "Q", Sentiment: models.Sentiment{Price: ptrFloat(40)}})

	if err := db.UpdateQuality(ctx, "q", 120, "great for families", models.Sentiment{}); err != nil {
		t.Fatalf("UpdateQuality() error = %v", err)
	}
	got, err := db.GetPlace(ctx, "q")
	if err != nil {
		t.Fatal(err)
	}
	if *got.QualityScore != 100 || got.Justification != "great for families" {
		t.Errorf("quality = %v, justification = %q", *got.QualityScore, got.Justification)
	}
	if v, ok := got.Sentiment.Get(models.SentimentPrice); !ok || v != 40 {
		t.Error("empty sentiment should keep the stored breakdown")
	}

	if err := db.UpdateQuality(ctx, "q", 60, "ok", models.Sentiment{Service: ptrFloat(55)}); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetPlace(ctx, "q")
	if _, ok := got.Sentiment.Get(models.SentimentPrice); ok {
		t.Error("new sentiment should replace the stored breakdown")
	}

	if err := db.UpdateQuality(ctx, "ghost", 50, "", models.Sentiment{}); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("UpdateQuality(ghost) error = %v, want ErrPlaceNotFound", err)
	}
}

func TestPlacesMissingQuality(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	db.now = steppingClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	mustUpsert(t, db, models.Place{ID: "old", Name: "Old"})
	mustUpsert(t, db, models.Place{ID: "scored", Name: "Scored", QualityScore: ptrFloat(70)})
	mustUpsert(t, db, models.Place{ID: "new", Name: "New"})

	got, err := db.PlacesMissingQuality(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if ids := placeIDs(got); len(ids) != 2 || ids[0] != "old" || ids[1] != "new" {
		t.Errorf("PlacesMissingQuality() = %v, want [old new]", ids)
	}

	got, err = db.PlacesMissingQuality(ctx, 1)
	if err != nil || len(got) != 1 {
		t.Errorf("limit 1 returned %d places, err %v", len(got), err)
	}

	count, err := db.CountPlaces(ctx)
	if err != nil || count != 3 {
		t.Errorf("CountPlaces() = %d, %v; want 3", count, err)
	}
}

func TestChoicesAndHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	db.now = steppingClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	mustUpsert(t, db,
		models.Place{ID: "a", Name: "A"},
		models.Place{ID: "b", Name: "B"},
		models.Place{ID: "c", Name: "C"},
	)

	for _, id := range []string{"a", "b", "a", "c"} {
		if err := db.RecordChoice(ctx, "u1", id); err != nil {
			t.Fatalf("RecordChoice(%s) error = %v", id, err)
		}
	}
	if err := db.RecordChoice(ctx, "u2", "b"); err != nil {
		t.Fatal(err)
	}

	got, err := db.History(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	ids := placeIDs(got)
	want := []string{"c", "a", "b"}
	if len(ids) != len(want) {
		t.Fatalf("History() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("History() = %v, want %v", ids, want)
		}
	}

	limited, err := db.History(ctx, "u1", 1)
	if err != nil || len(limited) != 1 || limited[0].ID != "c" {
		t.Errorf("History(limit 1) = %v, %v", placeIDs(limited), err)
	}

	none, err := db.History(ctx, "nobody", 0)
	if err != nil || len(none) != 0 {
		t.Errorf("History(nobody) = %v, %v", placeIDs(none), err)
	}
}

func TestRecordChoice_UnknownPlace(t *testing.T) {
	db := setupTestDB(t)

	err := db.RecordChoice(context.Background(), "u1", "ghost")
	if !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("error = %v, want ErrPlaceNotFound", err)
	}
}
