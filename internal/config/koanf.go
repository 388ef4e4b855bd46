// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/whereto/config.yaml",
	"/etc/whereto/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. They are loaded first and
// overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
			Timezone:        "UTC",
		},
		Database: DatabaseConfig{
			Path:            "/data/whereto.duckdb",
			MaxMemory:       "1GB",
			Threads:         0, // 0 = DuckDB default
			CandidateLimit:  200,
			DefaultRadiusKm: 5,
			HistoryLimit:    20,

			CheckpointInterval: 5 * time.Minute,
		},
		Badger: BadgerConfig{
			Path:       "/data/scores",
			InMemory:   false,
			ScoreTTL:   24 * time.Hour,
			GCInterval: 10 * time.Minute,
		},
		Scoring: ScoringConfig{
			Enabled:             false, // opt-in: needs an external service
			BaseURL:             "",
			Timeout:             20 * time.Second,
			RateLimit:           5,
			Burst:               2,
			MaxRetries:          3,
			RetryBaseDelay:      500 * time.Millisecond,
			MaxConcurrency:      4,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
			BreakerTimeout:      30 * time.Second,
			MemoSize:            10000,
			MemoTTL:             5 * time.Minute,
			EnrichOnRequest:     false,
		},
		Recommend: RecommendConfig{
			BudgetWeight:        0.20,
			AtmosphereWeight:    0.25,
			SpecialNeedsWeight:  0.20,
			MealTypeWeight:      0.15,
			ReviewWeight:        0.20,
			MatchBlend:          0.6,
			QualityBlend:        0.4,
			ConfidenceK:         10,
			ConfidencePrior:     50,
			ContextMaxDelta:     5,
			DiversityWeight:     3,
			DiversityWindow:     20,
			DiversityMaxPenalty: 15,
			SerendipityWeight:   5,
			SerendipityFloor:    60,
			OpeningSoonBonus:    3,
			OpeningSoonHorizon:  30 * time.Minute,
			RequireOpenNow:      true,
			AdmitOpeningSoon:    true,
			DefaultLimit:        10,
			MaxLimit:            50,
		},
		Worker: WorkerConfig{
			Enabled:              true,
			RefreshInterval:      15 * time.Minute,
			BatchSize:            25,
			BufferSize:           256,
			RetryCount:           3,
			RetryInitialInterval: 200 * time.Millisecond,
			ThrottlePerSecond:    2,
			CloseTimeout:         30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			MaxBodyBytes:      1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration in three layers, each overriding the
// previous: struct defaults, the YAML config file (if found) and
// environment variables.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first
// existing default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as a single string
// from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Variables not listed are ignored.
var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",
	"timezone":              "server.timezone",

	"duckdb_path":               "database.path",
	"duckdb_max_memory":         "database.max_memory",
	"duckdb_threads":            "database.threads",
	"candidate_limit":           "database.candidate_limit",
	"default_radius_km":         "database.default_radius_km",
	"history_limit":             "database.history_limit",
	"checkpoint_interval":       "database.checkpoint_interval",
	"badger_path":               "badger.path",
	"badger_in_memory":          "badger.in_memory",
	"score_cache_ttl":           "badger.score_ttl",
	"badger_gc_interval":        "badger.gc_interval",
	"scoring_enabled":           "scoring.enabled",
	"scoring_base_url":          "scoring.base_url",
	"scoring_api_key":           "scoring.api_key",
	"scoring_timeout":           "scoring.timeout",
	"scoring_rate_limit":        "scoring.rate_limit",
	"scoring_burst":             "scoring.burst",
	"scoring_max_retries":       "scoring.max_retries",
	"scoring_retry_base_delay":  "scoring.retry_base_delay",
	"scoring_max_concurrency":   "scoring.max_concurrency",
	"scoring_breaker_min":       "scoring.breaker_min_requests",
	"scoring_breaker_ratio":     "scoring.breaker_failure_ratio",
	"scoring_breaker_timeout":   "scoring.breaker_timeout",
	"scoring_memo_size":         "scoring.memo_size",
	"scoring_memo_ttl":          "scoring.memo_ttl",
	"scoring_enrich_on_request": "scoring.enrich_on_request",

	"recommend_budget_weight":         "recommend.budget_weight",
	"recommend_atmosphere_weight":     "recommend.atmosphere_weight",
	"recommend_special_needs_weight":  "recommend.special_needs_weight",
	"recommend_meal_type_weight":      "recommend.meal_type_weight",
	"recommend_review_weight":         "recommend.review_weight",
	"recommend_match_blend":           "recommend.match_blend",
	"recommend_quality_blend":         "recommend.quality_blend",
	"recommend_confidence_k":          "recommend.confidence_k",
	"recommend_confidence_prior":      "recommend.confidence_prior",
	"recommend_context_max_delta":     "recommend.context_max_delta",
	"recommend_diversity_weight":      "recommend.diversity_weight",
	"recommend_diversity_window":      "recommend.diversity_window",
	"recommend_diversity_max_penalty": "recommend.diversity_max_penalty",
	"recommend_serendipity_weight":    "recommend.serendipity_weight",
	"recommend_serendipity_floor":     "recommend.serendipity_floor",
	"recommend_opening_soon_bonus":    "recommend.opening_soon_bonus",
	"recommend_opening_soon_horizon":  "recommend.opening_soon_horizon",
	"recommend_require_open_now":      "recommend.require_open_now",
	"recommend_admit_opening_soon":    "recommend.admit_opening_soon",
	"recommend_default_limit":         "recommend.default_limit",
	"recommend_max_limit":             "recommend.max_limit",

	"worker_enabled":          "worker.enabled",
	"worker_refresh_interval": "worker.refresh_interval",
	"worker_batch_size":       "worker.batch_size",
	"worker_buffer_size":      "worker.buffer_size",
	"worker_retry_count":      "worker.retry_count",
	"worker_retry_interval":   "worker.retry_initial_interval",
	"worker_throttle":         "worker.throttle_per_second",
	"worker_close_timeout":    "worker.close_timeout",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"max_body_bytes":      "security.max_body_bytes",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unknown names return "" and are skipped by the provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
