// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
	"github.com/AliTurkarslan/whereto-sub000/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"upstream id kept", "req-123", true},
		{"id with spaces replaced", "bad id", false},
		{"control characters replaced", "x\nforged=1", false},
		{"overlong id replaced", strings.Repeat("a", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
				if logging.CorrelationIDFromContext(r.Context()) == "" {
					t.Error("correlation id not set")
				}
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header == "" || header != seen {
				t.Fatalf("header %q, context %q", header, seen)
			}
			if tt.keep && header != tt.incoming {
				t.Errorf("got %q, want upstream %q", header, tt.incoming)
			}
			if !tt.keep && header == tt.incoming {
				t.Errorf("upstream id %q should have been replaced", tt.incoming)
			}
		})
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/implicit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/things/{id}", "418")
	before := testutil.ToFloat64(counter)
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}
	if got := testutil.ToFloat64(counter); got != before+2 {
		t.Errorf("route counter = %v, want %v", got, before+2)
	}

	implicit := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/implicit", "200")
	before = testutil.ToFloat64(implicit)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/implicit", nil))
	if got := testutil.ToFloat64(implicit); got != before+1 {
		t.Errorf("implicit 200 counter = %v, want %v", got, before+1)
	}
}

func TestAccessLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := RequestID(AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", nil)
	req.Header.Set(RequestIDHeader, "trace-me")
	req = req.WithContext(logging.ContextWithLogger(req.Context(), logging.NewTestLogger(&buf)))

	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"message":"HTTP request"`, `"status":500`, `"request_id":"trace-me"`, `"path":"/api/v1/recommendations"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}
