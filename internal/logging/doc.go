// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

// Package logging provides the zerolog-based structured logging used across
// WhereTo.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Service: "whereto"})
//
//	logging.Info().Str("addr", addr).Msg("server listening")
//	logging.Err(err).Str("place_id", id).Msg("score refresh failed")
//
// # Request Context
//
// HTTP middleware stores a request ID in the request context; background
// jobs use a short correlation ID instead. Ctx picks up whichever is present:
//
//	logging.Ctx(ctx).Debug().Int("eligible", n).Msg("ranked candidates")
//
// # slog Bridge
//
// Libraries that accept an *slog.Logger (the supervisor tree and the
// message router) are handed NewSlogLogger so their output shares the same
// format and level.
//
// # Configuration
//
// Level, Format and Caller come from the logging section of the service
// configuration (WHERETO_LOGGING_LEVEL and friends). Init may be called
// again at any time to reconfigure.
package logging
