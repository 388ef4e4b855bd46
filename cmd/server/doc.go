// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package main is the entry point for the WhereTo server.

WhereTo ranks nearby venues for a user profile: who they are out with, their
budget, the atmosphere and meal they want and any accessibility needs. A
place's score blends how well it matches the profile with a quality score,
then small context, diversity and serendipity adjustments are applied.

# Application Architecture

	RootSupervisor ("whereto")
	├── StorageSupervisor ("storage-layer")
	│   └── DuckDB checkpoint service
	├── WorkerSupervisor ("worker-layer")
	│   └── Score refresh worker (if SCORING_ENABLED and WORKER_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog with JSON/console output modes
 3. Recommendation engine: pipeline constants from RECOMMEND_* settings
 4. Database: DuckDB place store and choice history
 5. Score cache: BadgerDB with an in-process LRU in front
 6. Scoring client: rate limited, retried, behind a circuit breaker
 7. Refresh worker: Watermill GoChannel queue for missing scores
 8. Supervisor tree: suture v4
 9. HTTP server: chi router with middleware stack

# Configuration

Configuration is loaded in layers, highest priority last:
  - Built-in defaults
  - Config file (config.yaml, or CONFIG_PATH)
  - Environment variables

The scoring service is optional. Without SCORING_ENABLED=true every place
is ranked on its stored quality score or its rating.

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests for HTTP_SHUTDOWN_TIMEOUT, the worker closes its queue,
the checkpoint service flushes DuckDB, and then the score cache and the
database are closed.

# Example Usage

	export DUCKDB_PATH=./whereto.duckdb
	export BADGER_PATH=./scores
	export SCORING_ENABLED=true
	export SCORING_BASE_URL=http://localhost:9000
	export SCORING_API_KEY=secret
	./whereto
*/
package main
