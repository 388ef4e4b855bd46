// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

// Package query provides SQL WHERE clause construction for the place store.
//
// All values are bound as placeholders; clause text never contains caller
// input.
package query
