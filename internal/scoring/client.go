// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
	"github.com/AliTurkarslan/whereto-sub000/internal/metrics"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

const (
	breakerName = "scoring-api"

	// maxErrorBody bounds how much of a failed response is kept for logging.
	maxErrorBody = 512

	// maxRetryAfter caps the server-requested wait between attempts.
	maxRetryAfter = time.Minute
)

// Client calls the generative scoring service.
//
// Every call waits on the limiter, then runs inside the circuit breaker. The
// retry loop lives inside the breaker, so one logical call counts once
// toward the trip ratio regardless of how many attempts it took.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[*Score]
	attempts   int
	baseDelay  time.Duration
	now        func() time.Time
}

var _ Scorer = (*Client)(nil)

// NewClient creates a scoring client from cfg.
func NewClient(cfg *config.ScoringConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("scoring config is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("scoring base URL is required")
	}

	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(limit, burst),
		attempts:   attempts,
		baseDelay:  cfg.RetryBaseDelay,
		now:        time.Now,
	}

	minRequests := cfg.BreakerMinRequests
	ratio := cfg.BreakerFailureRatio

	c.cb = gobreaker.NewCircuitBreaker[*Score](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= ratio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening scoring circuit")
			}
			return shouldTrip
		},

		// Caller cancellations and rejected requests say nothing about the
		// health of the service.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var se *statusError
			if errors.As(err, &se) && !se.retryable() {
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordBreakerTransition(name, fromStr, toStr)
		},
	})

	return c, nil
}

// BreakerState reports the breaker state: "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return stateToString(c.cb.State())
}

// Score asks the service to score one place for one companion type.
func (c *Client) Score(ctx context.Context, req ScoreRequest) (*Score, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordScoringCall("rate_limited", 0)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	score, err := c.cb.Execute(func() (*Score, error) {
		return c.doWithRetry(ctx, req)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.RecordScoringCall("circuit_open", 0)
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		case errors.Is(err, ErrRateLimited):
			metrics.RecordScoringCall("rate_limited", time.Since(start))
		default:
			metrics.RecordScoringCall("error", time.Since(start))
		}
		return nil, err
	}

	metrics.RecordScoringCall("success", time.Since(start))
	return score, nil
}

// doWithRetry retries network errors, 429 and 5xx with exponential backoff.
// A Retry-After header in seconds overrides the computed delay, up to
// maxRetryAfter.
func (c *Client) doWithRetry(ctx context.Context, req ScoreRequest) (*Score, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode score request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		score, retryAfter, err := c.do(ctx, req, body)
		if err == nil {
			return score, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}
		if attempt == c.attempts-1 {
			break
		}

		delay := c.baseDelay * (1 << attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}

		logging.Warn().
			Err(err).
			Str("place_id", req.PlaceID).
			Dur("retry_delay", delay).
			Int("attempt", attempt+1).
			Int("max_attempts", c.attempts).
			Msg("Scoring request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	var se *statusError
	if errors.As(lastErr, &se) && se.code == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w after %d attempts", ErrRateLimited, c.attempts)
	}
	return nil, fmt.Errorf("scoring failed after %d attempts: %w", c.attempts, lastErr)
}

// scoreResponse is the service's answer.
type scoreResponse struct {
	Score         *float64         `json:"score"`
	Justification string           `json:"justification"`
	Sentiment     models.Sentiment `json:"sentiment"`
}

// do performs one attempt. The returned duration is the server's Retry-After
// hint, zero when absent.
func (c *Client) do(ctx context.Context, req ScoreRequest, body []byte) (*Score, time.Duration, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create score request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("execute score request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), &statusError{
			code: resp.StatusCode,
			body: strings.TrimSpace(string(snippet)),
		}
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("decode score response: %w", err)
	}
	if out.Score == nil {
		return nil, 0, errors.New("score response has no score")
	}

	return &Score{
		PlaceID:       req.PlaceID,
		Companion:     req.Companion.Normalize(),
		Value:         models.ClampScore(*out.Score),
		Justification: strings.TrimSpace(out.Justification),
		Sentiment:     out.Sentiment.Clamped(),
		ScoredAt:      c.now().UTC(),
	}, 0, nil
}

// parseRetryAfter accepts the delay-seconds form of Retry-After, capped at
// maxRetryAfter.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || seconds < 0 {
		return 0
	}
	if seconds >= int(maxRetryAfter/time.Second) {
		return maxRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// statusError is a non-200 response from the scoring service.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("scoring service returned status %d", e.code)
	}
	return fmt.Sprintf("scoring service returned status %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
