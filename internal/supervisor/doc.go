// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package supervisor provides process supervision for WhereTo using suture v4.

# Overview

Long-running services are organized into three layers for failure
isolation:

	RootSupervisor ("whereto")
	├── StorageSupervisor ("storage-layer")
	│   └── CheckpointService (periodic DuckDB CHECKPOINT)
	├── WorkerSupervisor ("worker-layer")
	│   └── scoring.Worker (score refresh queue, if WORKER_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashing refresh worker is restarted inside its own layer; the HTTP
server keeps answering, and places without a cached score are ranked on
their ratings until the worker is back.

# Usage Example

	logger := logging.NewSlogLogger(logging.WithComponent("supervisor"))
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddStorageService(services.NewCheckpointService(db, cfg.Database.CheckpointInterval, log))
	tree.AddWorkerService(worker)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)

# Configuration

TreeConfig controls restart behavior; zero fields take suture's defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

Events (restarts, backoff, stop timeouts) are logged through sutureslog.

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return an error: the service crashed and is restarted
  - Context canceled: shutdown was requested; return promptly

# What Is NOT Supervised

DuckDB and the Badger score cache are embedded libraries, not services.
They are opened before the tree starts and closed after it stops.

# Debugging Shutdown Issues

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("service did not stop")
	}
*/
package supervisor
