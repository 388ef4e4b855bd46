// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// checkpointTimeout bounds one checkpoint, including the final one run
// after the supervisor context is canceled.
const checkpointTimeout = 30 * time.Second

// Checkpointer flushes buffered writes to durable storage.
// *database.DB implements it.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService runs periodic database checkpoints under supervision.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCheckpointService creates a checkpoint service. A non-positive interval
// disables the periodic checkpoints; the final one on shutdown still runs.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCheckpointService(db Checkpointer, interval time.Duration, logger zerolog.Logger) *CheckpointService {
	return &CheckpointService{
		db:       db,
		interval: interval,
		logger:   logger.With().Str("service", "checkpoint").Logger(),
		name:     "duckdb-checkpoint",
	}
}

// Serve implements suture.Service.
func (s *CheckpointService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("checkpoint service starting")

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			// The parent context is done; the final flush gets its own.
			finalCtx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
			s.checkpoint(finalCtx)
			cancel()
			s.logger.Info().Msg("checkpoint service shutting down")
			return ctx.Err()

		case <-tick:
			runCtx, cancel := context.WithTimeout(ctx, checkpointTimeout)
			s.checkpoint(runCtx)
			cancel()
		}
	}
}

func (s *CheckpointService) checkpoint(ctx context.Context) {
	start := time.Now()
	if err := s.db.Checkpoint(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("checkpoint failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("checkpoint complete")
}

// String returns the service name for logging.
func (s *CheckpointService) String() string {
	return s.name
}
