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
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AliTurkarslan/whereto-sub000/internal/cache"
	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/database"
	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
	"github.com/AliTurkarslan/whereto-sub000/internal/metrics"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

const (
	// RefreshTopic carries RefreshRequest messages.
	RefreshTopic = "score.refresh"

	// FailedTopic receives refresh messages that failed after all retries.
	FailedTopic = "score.refresh.failed"

	refreshHandlerName = "score_refresh"
	failedHandlerName  = "score_refresh_failed"
)

// WorkerStats holds runtime counters for the worker.
type WorkerStats struct {
	Published int64 `json:"published"`
	Skipped   int64 `json:"skipped"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Swept     int64 `json:"swept"`
}

// Worker consumes score.refresh messages from an in-process Go-channel
// pub/sub and scores places in the background.
//
// Handlers run behind a throttle, a poison queue, retry with backoff and a
// panic recoverer (outermost first). Messages that still fail go to
// FailedTopic and are acknowledged there, so a broken scoring service cannot
// cause a redelivery loop.
//
// Worker implements suture.Service. The pub/sub outlives restarts of Serve,
// but messages published while no router is running are dropped.
type Worker struct {
	cfg    config.WorkerConfig
	scorer Scorer
	cache  *ScoreCache
	store  PlaceStore

	pubSub *gochannel.GoChannel
	logger watermill.LoggerAdapter
	zlog   zerolog.Logger

	// recent suppresses duplicate requests for the same key within one
	// refresh interval.
	recent *cache.LRU[struct{}]

	ready     chan struct{}
	readyOnce sync.Once

	published atomic.Int64
	skipped   atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	swept     atomic.Int64
}

var _ RefreshQueue = (*Worker)(nil)

// NewWorker creates the refresh worker.
func NewWorker(cfg *config.WorkerConfig, scorer Scorer, c *ScoreCache, store PlaceStore) (*Worker, error) {
	if cfg == nil {
		return nil, errors.New("worker config is required")
	}
	if scorer == nil {
		return nil, errors.New("worker requires a scorer")
	}

	zlog := logging.WithComponent("score-worker")
	logger := watermill.NewSlogLogger(logging.NewSlogLogger(zlog))

	dedupeTTL := cfg.RefreshInterval
	if dedupeTTL <= 0 {
		dedupeTTL = 5 * time.Minute
	}

	return &Worker{
		cfg:    *cfg,
		scorer: scorer,
		cache:  c,
		store:  store,
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.BufferSize,
		}, logger),
		logger: logger,
		zlog:   zlog,
		recent: cache.NewLRU[struct{}](10000, dedupeTTL),
		ready:  make(chan struct{}),
	}, nil
}

// String names the service in the supervisor tree.
func (w *Worker) String() string {
	return "score-refresh-worker"
}

// Ready is closed once the first router is running and subscribed.
func (w *Worker) Ready() <-chan struct{} {
	return w.ready
}

// Stats returns a snapshot of the counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Published: w.published.Load(),
		Skipped:   w.skipped.Load(),
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
		Swept:     w.swept.Load(),
	}
}

// Enqueue publishes refresh requests. Requests for a place and companion
// already queued within the refresh interval are skipped.
func (w *Worker) Enqueue(ctx context.Context, reqs ...RefreshRequest) error {
	msgs := make([]*message.Message, 0, len(reqs))
	for _, r := range reqs {
		if r.PlaceID == "" {
			continue
		}
		r.Companion = r.Companion.Normalize()
		key := r.key()
		if _, seen := w.recent.Get(key); seen {
			w.skipped.Add(1)
			continue
		}

		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode refresh request: %w", err)
		}
		msg := message.NewMessage(uuid.NewString(), payload)
		msg.Metadata.Set("place_id", r.PlaceID)
		msg.Metadata.Set("companion", string(r.Companion))
		if id := logging.CorrelationIDFromContext(ctx); id != "" {
			msg.Metadata.Set("correlation_id", id)
		}
		msgs = append(msgs, msg)
		w.recent.Set(key, struct{}{})
	}

	if len(msgs) == 0 {
		return nil
	}
	if err := w.pubSub.Publish(RefreshTopic, msgs...); err != nil {
		for _, m := range msgs {
			w.recent.Remove(cacheKey(m.Metadata.Get("place_id"), models.Companion(m.Metadata.Get("companion"))))
		}
		return fmt.Errorf("publish refresh requests: %w", err)
	}

	w.published.Add(int64(len(msgs)))
	for range msgs {
		metrics.RecordWorkerMessage("published")
	}
	return nil
}

// Serve runs the router and the periodic sweep until ctx is done.
func (w *Worker) Serve(ctx context.Context) error {
	router, err := w.newRouter()
	if err != nil {
		return err
	}

	// runCtx ends when ctx does or when the router stops, whichever is
	// first, so the helpers below never outlive Run.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-router.Running():
			w.readyOnce.Do(func() { close(w.ready) })
		case <-runCtx.Done():
		}
	}()

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		select {
		case <-router.Running():
		case <-runCtx.Done():
			return
		}
		w.sweepLoop(runCtx)
	}()

	w.zlog.Info().
		Str("topic", RefreshTopic).
		Dur("refresh_interval", w.cfg.RefreshInterval).
		Int("batch_size", w.cfg.BatchSize).
		Msg("Score refresh worker starting")

	runErr := router.Run(runCtx)
	cancel()
	<-sweepDone

	if closeErr := router.Close(); closeErr != nil {
		w.zlog.Warn().Err(closeErr).Msg("Error closing score refresh router")
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("score refresh router: %w", runErr)
	}
	return ctx.Err()
}

// Close shuts the pub/sub down. Call after the last Serve has returned.
func (w *Worker) Close() error {
	return w.pubSub.Close()
}

func (w *Worker) newRouter() (*message.Router, error) {
	closeTimeout := w.cfg.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = 10 * time.Second
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: closeTimeout}, w.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	if w.cfg.ThrottlePerSecond > 0 {
		throttle := middleware.NewThrottle(w.cfg.ThrottlePerSecond, time.Second)
		router.AddMiddleware(throttle.Middleware)
	}

	poisonQueue, err := middleware.PoisonQueue(w.pubSub, FailedTopic)
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(poisonQueue)

	retry := middleware.Retry{
		MaxRetries:      w.cfg.RetryCount,
		InitialInterval: w.cfg.RetryInitialInterval,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
		Logger:          w.logger,
	}
	router.AddMiddleware(retry.Middleware)
	router.AddMiddleware(middleware.Recoverer)

	router.AddConsumerHandler(refreshHandlerName, RefreshTopic, w.pubSub, w.handleRefresh)
	router.AddConsumerHandler(failedHandlerName, FailedTopic, w.pubSub, w.handleFailed)

	return router, nil
}

// handleRefresh scores one place. Unknown places are acknowledged.
func (w *Worker) handleRefresh(msg *message.Message) error {
	var req RefreshRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		w.zlog.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed refresh request")
		w.failed.Add(1)
		metrics.RecordWorkerMessage("failed")
		return nil
	}

	ctx := msg.Context()
	if id := msg.Metadata.Get("correlation_id"); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	if err := w.Refresh(ctx, req.PlaceID, req.Companion); err != nil {
		if errors.Is(err, database.ErrPlaceNotFound) {
			w.zlog.Debug().Str("place_id", req.PlaceID).Msg("Refresh requested for unknown place")
			return nil
		}
		return err
	}

	w.recent.Remove(req.key())
	w.processed.Add(1)
	metrics.RecordWorkerMessage("processed")
	return nil
}

func (w *Worker) handleFailed(msg *message.Message) error {
	w.failed.Add(1)
	metrics.RecordWorkerMessage("failed")
	w.recent.Remove(cacheKey(msg.Metadata.Get("place_id"), models.Companion(msg.Metadata.Get("companion"))))
	w.zlog.Warn().
		Str("place_id", msg.Metadata.Get("place_id")).
		Str("companion", msg.Metadata.Get("companion")).
		Str("reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey)).
		Msg("Score refresh failed after retries")
	return nil
}

// Refresh scores one place synchronously, caches the result and persists the
// default-companion score.
func (w *Worker) Refresh(ctx context.Context, placeID string, companion models.Companion) error {
	companion = companion.Normalize()

	var place *models.Place
	if w.store != nil {
		p, err := w.store.GetPlace(ctx, placeID)
		if err != nil {
			return err
		}
		place = p
	} else {
		place = &models.Place{ID: placeID}
	}

	s, err := w.scorer.Score(ctx, RequestForPlace(place, companion))
	if err != nil {
		return fmt.Errorf("score %s for %s: %w", placeID, companion, err)
	}
	return storeScore(ctx, w.cache, w.store, s)
}

// sweepLoop queues never-scored places once at start and then every refresh
// interval.
func (w *Worker) sweepLoop(ctx context.Context) {
	if w.store == nil || w.cfg.BatchSize <= 0 {
		return
	}

	w.sweep(ctx)
	if w.cfg.RefreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(w.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	places, err := w.store.PlacesMissingQuality(ctx, w.cfg.BatchSize)
	if err != nil {
		if ctx.Err() == nil {
			w.zlog.Warn().Err(err).Msg("Failed to list places missing quality scores")
		}
		return
	}
	if len(places) == 0 {
		return
	}

	reqs := make([]RefreshRequest, 0, len(places))
	now := time.Now().UTC()
	for i := range places {
		reqs = append(reqs, RefreshRequest{
			PlaceID:     places[i].ID,
			Companion:   models.DefaultCompanion,
			RequestedAt: now,
		})
	}
	if err := w.Enqueue(ctx, reqs...); err != nil {
		w.zlog.Warn().Err(err).Msg("Failed to queue sweep batch")
		return
	}
	w.swept.Add(int64(len(reqs)))
	w.zlog.Debug().Int("count", len(reqs)).Msg("Queued places missing quality scores")
}
