// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

// Package config loads service configuration with koanf.
//
// Layers, lowest priority first:
//
//  1. Struct defaults (defaultConfig)
//  2. A YAML file: CONFIG_PATH, else config.yaml in the working directory
//     or /etc/whereto/config.yaml
//  3. Environment variables, mapped by an explicit table (HTTP_PORT,
//     DUCKDB_PATH, SCORING_BASE_URL, RECOMMEND_DIVERSITY_WEIGHT, ...)
//
// Example file:
//
//	server:
//	  port: 8080
//	  timezone: Europe/Istanbul
//	scoring:
//	  enabled: true
//	  base_url: http://scorer:9000
//	recommend:
//	  diversity_weight: 4
//	  opening_soon_horizon: 45m
//
// Validate checks ranges and required fields. The recommend section is
// checked again by recommend.Config.Validate when the engine is built.
package config
