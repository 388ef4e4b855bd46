// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package scoring fills venue quality scores from the generative scoring service.

Components:

  - Client: HTTP client for POST {base_url}/score. Each call waits on a token
    bucket limiter, runs inside a circuit breaker and retries transient
    failures (network errors, 429, 5xx) with exponential backoff.
  - ScoreCache: Badger-backed cache keyed by score:<place_id>:<companion>
    with a TTL, fronted by an in-process LRU memo.
  - Enricher: request-path component that copies cached scores onto
    candidates and either fetches misses inline (bounded by errgroup) or
    queues them for the refresh worker.
  - Worker: Watermill router consuming score.refresh messages from an
    in-process Go-channel pub/sub. It scores the place, caches the result and
    persists the default-companion score to the place store. A periodic sweep
    queues places that have never been scored.

Scores returned by the service are raw (0-100). The popularity-confidence
correction is applied later by the store or the recommendation engine, never
here.

Sentinel errors (ErrCircuitOpen, ErrRateLimited, ErrNotCached) are checked
with errors.Is.
*/
package scoring
