// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" {
		t.Errorf("DefaultConfig() = %+v, want info/json", cfg)
	}
	if cfg.Caller {
		t.Error("expected caller to be off by default")
	}
	if !cfg.Timestamp {
		t.Error("expected timestamps on by default")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"off", zerolog.Disabled},
		{" DEBUG ", zerolog.DebugLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"debug", "INFO", "warning", "off"} {
		if !ValidLevel(ok) {
			t.Errorf("ValidLevel(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "verbose", "critical"} {
		if ValidLevel(bad) {
			t.Errorf("ValidLevel(%q) = true", bad)
		}
	}
}

// TestInit mutates the global logger and must not run in parallel.
func TestInit(t *testing.T) {
	original := Logger()
	t.Cleanup(func() {
		SetLogger(original)
		SetLevelString("info")
	})

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Service: "whereto", Output: &buf})

	Debug().Str("place_id", "p1").Msg("scored")
	Err(errors.New("boom")).Msg("failed")

	out := buf.String()
	for _, want := range []string{`"level":"debug"`, `"service":"whereto"`, `"place_id":"p1"`, `"error":"boom"`, `"message":"failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestInit_LevelFilters(t *testing.T) {
	original := Logger()
	t.Cleanup(func() {
		SetLogger(original)
		SetLevelString("info")
	})

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("hidden")
	Warn().Msg("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn message missing")
	}
}

func TestWithComponent(t *testing.T) {
	original := Logger()
	t.Cleanup(func() { SetLogger(original) })

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	logger := WithComponent("store")
	logger.Info().Msg("opened")

	if !strings.Contains(buf.String(), `"component":"store"`) {
		t.Errorf("component field missing: %s", buf.String())
	}
}
