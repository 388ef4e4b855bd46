// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AliTurkarslan/whereto-sub000/internal/api"
	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/database"
	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
	"github.com/AliTurkarslan/whereto-sub000/internal/recommend"
	"github.com/AliTurkarslan/whereto-sub000/internal/scoring"
	"github.com/AliTurkarslan/whereto-sub000/internal/supervisor"
	"github.com/AliTurkarslan/whereto-sub000/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// scoringComponents holds the optional score pipeline. Every field may be
// nil: without a cache nothing is enriched, without a client nothing is
// fetched, and without a worker misses are not queued.
type scoringComponents struct {
	cache    *scoring.ScoreCache
	client   *scoring.Client
	worker   *scoring.Worker
	enricher *scoring.Enricher
}

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "whereto",
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("scoring_enabled", cfg.Scoring.Enabled).
		Msg("Starting WhereTo with supervisor tree")

	engine, engineCfg, err := initEngine(cfg, logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	db, err := database.New(&cfg.Database, recommend.NewConfidenceAdjuster(engineCfg.Confidence))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	sc, err := initScoring(cfg, db)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize score pipeline")
		return
	}
	defer sc.close()

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" && cfg.IsProduction() {
			logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS to the client domains")
			break
		}
	}

	handler := api.NewHandler(db, engine, cfg)
	handler.SetVersion(version)
	if sc.enricher != nil {
		handler.SetEnricher(sc.enricher)
	}
	if sc.client != nil {
		handler.SetBreakerReporter(sc.client)
	}

	router := api.NewRouter(handler, &cfg.Security)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		supervisor.TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
		},
	)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	tree.AddStorageService(services.NewCheckpointService(db, cfg.Database.CheckpointInterval, logging.WithComponent("checkpoint")))
	if sc.worker != nil {
		tree.AddWorkerService(sc.worker)
		logging.Info().Dur("refresh_interval", cfg.Worker.RefreshInterval).Msg("Score refresh worker added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// initScoring opens the score cache and, when scoring is enabled, the
// client and refresh worker. A cache that cannot be opened disables
// enrichment rather than failing startup.
func initScoring(cfg *config.Config, db *database.DB) (*scoringComponents, error) {
	sc := &scoringComponents{}

	c, err := scoring.OpenScoreCache(&cfg.Badger, cfg.Scoring.MemoSize, cfg.Scoring.MemoTTL)
	if err != nil {
		logging.Warn().Err(err).Msg("Score cache unavailable, ranking on stored scores only")
		return sc, nil
	}
	sc.cache = c

	var (
		scorer scoring.Scorer
		queue  scoring.RefreshQueue
	)
	if cfg.Scoring.Enabled {
		client, err := scoring.NewClient(&cfg.Scoring)
		if err != nil {
			sc.close()
			return nil, fmt.Errorf("scoring client: %w", err)
		}
		sc.client = client
		scorer = client
		logging.Info().
			Str("base_url", cfg.Scoring.BaseURL).
			Float64("rate_limit", cfg.Scoring.RateLimit).
			Bool("enrich_on_request", cfg.Scoring.EnrichOnRequest).
			Msg("Scoring client initialized")

		if cfg.Worker.Enabled {
			worker, err := scoring.NewWorker(&cfg.Worker, client, c, db)
			if err != nil {
				sc.close()
				return nil, fmt.Errorf("score refresh worker: %w", err)
			}
			sc.worker = worker
			queue = worker
		}
	} else {
		logging.Info().Msg("Scoring service disabled (SCORING_ENABLED=false)")
	}

	sc.enricher = scoring.NewEnricher(c, scorer, db, queue, &cfg.Scoring)
	return sc, nil
}

// close releases the worker's queue and the cache. The worker is closed
// first so no handler writes to a closed cache.
func (sc *scoringComponents) close() {
	if sc.worker != nil {
		if err := sc.worker.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing score refresh worker")
		}
	}
	if sc.cache != nil {
		if err := sc.cache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing score cache")
		}
	}
}
