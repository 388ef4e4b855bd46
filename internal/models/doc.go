// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package models defines data structures for the WhereTo application.

This package contains the domain types shared by the recommendation pipeline,
the place store, the scoring client and the HTTP API. It is the single source
of truth for data structure definitions and for the neutral defaults applied
when a field is missing.

Key Components:

  - Place: one candidate venue with amenities, meals, atmosphere, opening
    hours, review sentiment and the externally computed quality score
  - OpeningHours: the normalized opening-hours variant (explicit flag,
    period schedule or free text)
  - Profile: one recommendation request's user preferences
  - ScoredPlace: a Place extended with match details and scores
  - Context: the time/weather snapshot a request is evaluated in
  - APIResponse: standardized API response wrapper

Missing Data:

Optional numeric fields are pointers. A nil pointer means "missing" and is
resolved through the constants in defaults.go, never through inline
fallbacks scattered across the scoring code.

Ingestion:

Loose upstream shapes (opening hours as a string list or a structured object,
price level as a string enum or a number) are normalized by the UnmarshalJSON
methods in this package. Nothing downstream of decoding needs to inspect the
raw shapes.

Thread Safety:

All models are plain data. They are safe for concurrent reads; the
recommendation pipeline copies Place values into ScoredPlace values and never
mutates its input.
*/
package models
