// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// Validate checks ranges and cross-field requirements. Pipeline weight sums
// are checked again, more precisely, when the engine is built.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateBadger,
		c.validateScoring,
		c.validateRecommend,
		c.validateWorker,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.Timezone != "" {
		if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Server.Timezone, err)
		}
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	if c.Database.CandidateLimit < 1 {
		return fmt.Errorf("CANDIDATE_LIMIT must be at least 1, got %d", c.Database.CandidateLimit)
	}
	if c.Database.DefaultRadiusKm <= 0 || c.Database.DefaultRadiusKm > 50 {
		return fmt.Errorf("DEFAULT_RADIUS_KM must be in (0, 50], got %f", c.Database.DefaultRadiusKm)
	}
	if c.Database.CheckpointInterval < 0 {
		return fmt.Errorf("CHECKPOINT_INTERVAL must be non-negative, got %v", c.Database.CheckpointInterval)
	}
	if c.Database.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must be non-negative, got %d", c.Database.HistoryLimit)
	}
	return nil
}

func (c *Config) validateBadger() error {
	if !c.Badger.InMemory && c.Badger.Path == "" {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	if c.Badger.ScoreTTL <= 0 {
		return fmt.Errorf("SCORE_CACHE_TTL must be positive, got %v", c.Badger.ScoreTTL)
	}
	return nil
}

func (c *Config) validateScoring() error {
	s := c.Scoring
	if !s.Enabled {
		return nil
	}
	if s.BaseURL == "" {
		return fmt.Errorf("SCORING_BASE_URL is required when SCORING_ENABLED=true")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("SCORING_BASE_URL must be an http(s) URL, got %q", s.BaseURL)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("SCORING_TIMEOUT must be positive, got %v", s.Timeout)
	}
	if s.RateLimit <= 0 || s.Burst < 1 {
		return fmt.Errorf("SCORING_RATE_LIMIT must be positive and SCORING_BURST at least 1")
	}
	if s.MaxRetries < 1 {
		return fmt.Errorf("SCORING_MAX_RETRIES must be at least 1, got %d", s.MaxRetries)
	}
	if s.MaxConcurrency < 1 {
		return fmt.Errorf("SCORING_MAX_CONCURRENCY must be at least 1, got %d", s.MaxConcurrency)
	}
	if s.BreakerFailureRatio <= 0 || s.BreakerFailureRatio > 1 {
		return fmt.Errorf("SCORING_BREAKER_RATIO must be in (0, 1], got %f", s.BreakerFailureRatio)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	sum := r.BudgetWeight + r.AtmosphereWeight + r.SpecialNeedsWeight + r.MealTypeWeight + r.ReviewWeight
	if math.Abs(sum-1) > 0.01 {
		return fmt.Errorf("recommend match weights must sum to 1.0, got %f", sum)
	}
	if math.Abs(r.MatchBlend+r.QualityBlend-1) > 0.01 {
		return fmt.Errorf("recommend match_blend + quality_blend must equal 1.0, got %f", r.MatchBlend+r.QualityBlend)
	}
	if r.ConfidenceK < 0 {
		return fmt.Errorf("RECOMMEND_CONFIDENCE_K must be non-negative, got %f", r.ConfidenceK)
	}
	if r.DefaultLimit < 1 || r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("recommend limits must satisfy 1 <= default_limit <= max_limit, got %d and %d", r.DefaultLimit, r.MaxLimit)
	}
	return nil
}

func (c *Config) validateWorker() error {
	if !c.Worker.Enabled {
		return nil
	}
	if c.Worker.RefreshInterval <= 0 {
		return fmt.Errorf("WORKER_REFRESH_INTERVAL must be positive, got %v", c.Worker.RefreshInterval)
	}
	if c.Worker.BatchSize < 1 {
		return fmt.Errorf("WORKER_BATCH_SIZE must be at least 1, got %d", c.Worker.BatchSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	if c.IsProduction() {
		for _, o := range c.Security.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
