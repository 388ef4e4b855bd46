// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package database provides the DuckDB-backed place store.

The store holds the venue catalog and each user's choice history. It is the
only component that talks to DuckDB; the recommendation engine receives
plain model values and never queries the store itself.

# Schema

  - places: one row per venue. Amenity and meal flags are boolean columns;
    cuisines, opening hours and sentiment are JSON text decoded through the
    models package, which also accepts the loose upstream shapes.
  - choices: (user_id, place_id, chosen_at), append only.
  - schema_migrations: applied versions (see migrations.go).

# Radius Queries

Nearby computes the haversine distance in SQL after a latitude-band
prefilter and returns rows nearest first. An external quality score is
returned already corrected by the popularity-confidence formula from the
recommend package, with QualityAdjusted set, so the engine does not apply
it twice. Rating-only places are returned raw and corrected by the engine.

# Concurrency

Reads run on the connection pool. Batch upserts are serialized and retried
on DuckDB transaction conflicts with exponential backoff.

# Testing

Tests open an in-memory database (Path ":memory:").
*/
package database
