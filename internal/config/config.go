// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package config

import "time"

// Config holds all service configuration. Values are layered: struct
// defaults, then an optional YAML file, then environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Badger    BadgerConfig    `koanf:"badger"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Recommend RecommendConfig `koanf:"recommend"`
	Worker    WorkerConfig    `koanf:"worker"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`

	// Timezone is the IANA zone used to derive the context snapshot when a
	// request does not carry one. Default: UTC
	Timezone string `koanf:"timezone"`
}

// DatabaseConfig holds DuckDB place store settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// CandidateLimit bounds the rows a radius query returns before ranking.
	CandidateLimit int `koanf:"candidate_limit"`

	// DefaultRadiusKm is used when the profile does not set a radius.
	DefaultRadiusKm float64 `koanf:"default_radius_km"`

	// HistoryLimit bounds how many past choices feed serendipity.
	HistoryLimit int `koanf:"history_limit"`

	// CheckpointInterval is how often the WAL is flushed into the database
	// file. Zero disables periodic checkpoints.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`
}

// BadgerConfig holds the score cache settings.
type BadgerConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	ScoreTTL   time.Duration `koanf:"score_ttl"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// ScoringConfig holds the generative scoring client settings.
type ScoringConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	RateLimit      float64       `koanf:"rate_limit"`
	Burst          int           `koanf:"burst"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	MaxConcurrency int           `koanf:"max_concurrency"`

	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`

	MemoSize int           `koanf:"memo_size"`
	MemoTTL  time.Duration `koanf:"memo_ttl"`

	// EnrichOnRequest fetches missing scores inline before ranking.
	// When false, missing scores are only queued for the refresh worker.
	EnrichOnRequest bool `koanf:"enrich_on_request"`
}

// RecommendConfig exposes the pipeline constants. Zero weights are valid;
// the engine validates sums when it is built.
type RecommendConfig struct {
	BudgetWeight       float64 `koanf:"budget_weight"`
	AtmosphereWeight   float64 `koanf:"atmosphere_weight"`
	SpecialNeedsWeight float64 `koanf:"special_needs_weight"`
	MealTypeWeight     float64 `koanf:"meal_type_weight"`
	ReviewWeight       float64 `koanf:"review_weight"`

	MatchBlend   float64 `koanf:"match_blend"`
	QualityBlend float64 `koanf:"quality_blend"`

	ConfidenceK     float64 `koanf:"confidence_k"`
	ConfidencePrior float64 `koanf:"confidence_prior"`

	ContextMaxDelta float64 `koanf:"context_max_delta"`

	DiversityWeight     float64 `koanf:"diversity_weight"`
	DiversityWindow     int     `koanf:"diversity_window"`
	DiversityMaxPenalty float64 `koanf:"diversity_max_penalty"`
	SerendipityWeight   float64 `koanf:"serendipity_weight"`
	SerendipityFloor    float64 `koanf:"serendipity_floor"`

	OpeningSoonBonus   float64       `koanf:"opening_soon_bonus"`
	OpeningSoonHorizon time.Duration `koanf:"opening_soon_horizon"`

	RequireOpenNow   bool `koanf:"require_open_now"`
	AdmitOpeningSoon bool `koanf:"admit_opening_soon"`

	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
}

// WorkerConfig holds the background score refresh settings.
type WorkerConfig struct {
	Enabled              bool          `koanf:"enabled"`
	RefreshInterval      time.Duration `koanf:"refresh_interval"`
	BatchSize            int           `koanf:"batch_size"`
	BufferSize           int64         `koanf:"buffer_size"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	ThrottlePerSecond    int64         `koanf:"throttle_per_second"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// SecurityConfig holds request-facing protections.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Location resolves Server.Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Server.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
