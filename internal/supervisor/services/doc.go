// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package services provides suture.Service wrappers for WhereTo components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

Checkpoint (CheckpointService):
  - Flushes the DuckDB write-ahead log into the database file on a fixed
    interval
  - Runs a final checkpoint on shutdown so a restart does not replay a
    long log

The score refresh worker (scoring.Worker) implements suture.Service itself
and is added to the tree without a wrapper.

# Error Semantics

Serve returns ctx.Err() on a requested shutdown and a wrapped error when
the component fails. Suture restarts services that return for any reason
other than the supervisor's own context being canceled.
*/
package services
