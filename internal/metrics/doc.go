// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

// Package metrics defines the Prometheus collectors for WhereTo.
//
// Collectors are registered with the default registry through promauto and
// exposed by the API at /metrics. The Record* helpers keep label handling
// in one place:
//
//	metrics.RecordRecommendation(companion, res.Candidates, res.Eligible, len(res.Places), excluded, res.Duration)
//	metrics.RecordCacheLookup("badger", hit)
package metrics
