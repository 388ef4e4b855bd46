// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/database"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

// stubScorer returns value for every place except those in fail.
type stubScorer struct {
	value float64
	fail  map[string]bool
	delay time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *stubScorer) Score(ctx context.Context, req ScoreRequest) (*Score, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.fail[req.PlaceID] {
		return nil, fmt.Errorf("stub failure for %s", req.PlaceID)
	}
	return &Score{
		PlaceID:       req.PlaceID,
		Companion:     req.Companion,
		Value:         s.value,
		Justification: "stub " + req.PlaceID,
		ScoredAt:      time.Now().UTC(),
	}, nil
}

type qualityUpdate struct {
	score         float64
	justification string
}

type stubStore struct {
	mu      sync.Mutex
	places  map[string]models.Place
	updates map[string]qualityUpdate
	missing []string
}

func newStubStore(ids ...string) *stubStore {
	s := &stubStore{places: map[string]models.Place{}, updates: map[string]qualityUpdate{}}
	for _, id := range ids {
		s.places[id] = models.Place{ID: id, Name: "Place " + id}
	}
	return s
}

func (s *stubStore) GetPlace(_ context.Context, id string) (*models.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.places[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", database.ErrPlaceNotFound, id)
	}
	return &p, nil
}

func (s *stubStore) UpdateQuality(_ context.Context, id string, score float64, justification string, _ models.Sentiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[id] = qualityUpdate{score: score, justification: justification}
	return nil
}

func (s *stubStore) PlacesMissingQuality(_ context.Context, limit int) ([]models.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Place
	for _, id := range s.missing {
		if _, done := s.updates[id]; done {
			continue
		}
		out = append(out, s.places[id])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubStore) update(id string) (qualityUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.updates[id]
	return u, ok
}

type stubQueue struct {
	mu   sync.Mutex
	reqs []RefreshRequest
	err  error
}

func (q *stubQueue) Enqueue(_ context.Context, reqs ...RefreshRequest) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reqs = append(q.reqs, reqs...)
	return nil
}

func (q *stubQueue) ids() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.reqs))
	for _, r := range q.reqs {
		out = append(out, r.PlaceID)
	}
	return out
}

func candidates(ids ...string) []models.Place {
	out := make([]models.Place, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Place{ID: id, Name: "Place " + id})
	}
	return out
}

func TestEnricher_NilAndEmpty(t *testing.T) {
	t.Parallel()

	var e *Enricher
	stats, err := e.Enrich(context.Background(), candidates("a"), models.CompanionAlone)
	if err != nil || stats != (EnrichStats{}) {
		t.Errorf("nil enricher: stats=%+v err=%v", stats, err)
	}

	e = NewEnricher(newTestCache(t, 0), nil, nil, nil, nil)
	stats, err = e.Enrich(context.Background(), nil, models.CompanionAlone)
	if err != nil || stats != (EnrichStats{}) {
		t.Errorf("empty input: stats=%+v err=%v", stats, err)
	}
}

func TestEnricher_AppliesCachedScores(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, 16)
	ctx := context.Background()
	if err := c.Put(ctx, &Score{
		PlaceID:       "a",
		Companion:     models.CompanionFamily,
		Value:         88,
		Justification: "playground",
		Sentiment:     models.Sentiment{Service: ptrFloat(90)},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	queue := &stubQueue{}
	e := NewEnricher(c, nil, nil, queue, &config.ScoringConfig{})

	places := candidates("a", "b")
	stored := 40.0
	places[0].QualityScore = &stored
	places[0].QualityAdjusted = true

	stats, err := e.Enrich(ctx, places, models.CompanionFamily)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if stats.Hits != 1 || stats.Queued != 1 || stats.Pending() != 1 {
		t.Errorf("stats = %+v", stats)
	}

	a := places[0]
	if a.QualityScore == nil || *a.QualityScore != 88 {
		t.Errorf("QualityScore = %v, want 88", a.QualityScore)
	}
	if a.QualityAdjusted {
		t.Error("cached scores are raw; QualityAdjusted must be false")
	}
	if a.Justification != "playground" {
		t.Errorf("Justification = %q", a.Justification)
	}
	if a.Sentiment.Service == nil || *a.Sentiment.Service != 90 {
		t.Errorf("Sentiment = %+v", a.Sentiment)
	}

	if places[1].QualityScore != nil {
		t.Errorf("miss must stay unscored, got %v", *places[1].QualityScore)
	}
	if got := queue.ids(); len(got) != 1 || got[0] != "b" {
		t.Errorf("queued = %v, want [b]", got)
	}
}

func TestEnricher_SkipsStoredDefaultCompanion(t *testing.T) {
	t.Parallel()

	queue := &stubQueue{}
	e := NewEnricher(newTestCache(t, 0), nil, nil, queue, nil)

	places := candidates("a")
	stored := 65.0
	places[0].QualityScore = &stored
	places[0].QualityAdjusted = true

	stats, err := e.Enrich(context.Background(), places, models.DefaultCompanion)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if stats != (EnrichStats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if !places[0].QualityAdjusted || *places[0].QualityScore != 65 {
		t.Errorf("stored score must be left as loaded: %+v", places[0])
	}
	if len(queue.ids()) != 0 {
		t.Errorf("nothing should be queued, got %v", queue.ids())
	}
}

func TestEnricher_InlineFetch(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, 16)
	scorer := &stubScorer{value: 73, fail: map[string]bool{"c": true}}
	store := newStubStore("a", "b", "c")
	queue := &stubQueue{}
	cfg := &config.ScoringConfig{Enabled: true, EnrichOnRequest: true, MaxConcurrency: 2}
	e := NewEnricher(c, scorer, store, queue, cfg)

	ctx := context.Background()
	places := candidates("a", "b", "c")
	stats, err := e.Enrich(ctx, places, models.CompanionAlone)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if stats.Fetched != 2 || stats.Failed != 1 || stats.Queued != 0 {
		t.Errorf("stats = %+v", stats)
	}
	for _, p := range places[:2] {
		if p.QualityScore == nil || *p.QualityScore != 73 {
			t.Errorf("%s QualityScore = %v", p.ID, p.QualityScore)
		}
		if _, err := c.Get(ctx, p.ID, models.CompanionAlone); err != nil {
			t.Errorf("%s not cached: %v", p.ID, err)
		}
		if u, ok := store.update(p.ID); !ok || u.score != 73 {
			t.Errorf("%s not persisted: %+v %v", p.ID, u, ok)
		}
	}
	if places[2].QualityScore != nil {
		t.Error("failed fetch must leave the place unscored")
	}
	if got := queue.ids(); len(got) != 1 || got[0] != "c" {
		t.Errorf("queued = %v, want [c]", got)
	}
}

func TestEnricher_InlineFetchNonDefaultCompanion(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, 0)
	store := newStubStore("a")
	e := NewEnricher(c, &stubScorer{value: 55}, store, nil,
		&config.ScoringConfig{Enabled: true, EnrichOnRequest: true})

	places := candidates("a")
	if _, err := e.Enrich(context.Background(), places, models.CompanionColleagues); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if places[0].QualityScore == nil || *places[0].QualityScore != 55 {
		t.Errorf("QualityScore = %v", places[0].QualityScore)
	}
	if _, ok := store.update("a"); ok {
		t.Error("companion-specific scores must not overwrite the stored score")
	}
	if _, err := c.Get(context.Background(), "a", models.CompanionColleagues); err != nil {
		t.Errorf("score not cached: %v", err)
	}
}

func TestEnricher_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	scorer := &stubScorer{value: 50, delay: 5 * time.Millisecond}
	cfg := &config.ScoringConfig{Enabled: true, EnrichOnRequest: true, MaxConcurrency: 2}
	e := NewEnricher(newTestCache(t, 0), scorer, nil, nil, cfg)

	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i)
	}
	stats, err := e.Enrich(context.Background(), candidates(ids...), models.CompanionFriends)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if stats.Fetched != 10 {
		t.Errorf("Fetched = %d, want 10", stats.Fetched)
	}
	if got := scorer.maxSeen.Load(); got > 2 {
		t.Errorf("max concurrent calls = %d, want <= 2", got)
	}
}

func TestEnricher_DisabledScoringQueuesOnly(t *testing.T) {
	t.Parallel()

	scorer := &stubScorer{value: 50}
	queue := &stubQueue{}
	cfg := &config.ScoringConfig{Enabled: false, EnrichOnRequest: true}
	e := NewEnricher(newTestCache(t, 0), scorer, nil, queue, cfg)

	stats, err := e.Enrich(context.Background(), candidates("a", "b"), models.CompanionAlone)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if scorer.calls.Load() != 0 {
		t.Error("scorer must not be called when scoring is disabled")
	}
	if stats.Queued != 2 {
		t.Errorf("Queued = %d, want 2", stats.Queued)
	}
}

func TestEnricher_QueueErrorIsNotFatal(t *testing.T) {
	t.Parallel()

	queue := &stubQueue{err: errors.New("queue down")}
	e := NewEnricher(newTestCache(t, 0), nil, nil, queue, nil)

	stats, err := e.Enrich(context.Background(), candidates("a"), models.CompanionAlone)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if stats.Queued != 0 {
		t.Errorf("Queued = %d, want 0", stats.Queued)
	}
}

func TestEnricher_CanceledContext(t *testing.T) {
	t.Parallel()

	e := NewEnricher(newTestCache(t, 0), nil, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Enrich(ctx, candidates("a"), models.CompanionAlone); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
