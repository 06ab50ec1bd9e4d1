package valhalla

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPMatcher posts trace requests to a valhalla service endpoint. An
// explicit client timeout is always set: a hung oracle call surfaces as a
// match failure instead of stalling the run.
type HTTPMatcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPMatcher builds a matcher against baseURL. ratePerSec throttles
// requests client-side; zero or negative disables throttling.
func NewHTTPMatcher(baseURL string, timeout time.Duration, ratePerSec float64) *HTTPMatcher {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &HTTPMatcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (m *HTTPMatcher) TraceRoute(ctx context.Context, shape []ShapePoint) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(NewTraceRequest(shape))
	if err != nil {
		return "", fmt.Errorf("valhalla: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/trace_route", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("valhalla: trace_route: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("valhalla: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("valhalla: trace_route status %d: %s",
			resp.StatusCode, errorMessage(payload))
	}

	var trace TraceResponse
	if err := json.Unmarshal(payload, &trace); err != nil {
		return "", fmt.Errorf("valhalla: decode response: %w", err)
	}
	return geometry(trace)
}

func geometry(trace TraceResponse) (string, error) {
	if len(trace.Matchings) == 0 {
		return "", errors.New("valhalla: response has no matchings")
	}
	return trace.Matchings[0].Geometry, nil
}

// errorMessage pulls the human-readable message out of an oracle error
// body, falling back to the raw payload.
func errorMessage(payload []byte) string {
	var failure struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &failure); err == nil && failure.Error != "" {
		return failure.Error
	}
	return string(payload)
}
