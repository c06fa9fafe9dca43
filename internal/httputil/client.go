// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// NewClient returns an HTTP client with the given timeout. Redirects are
// followed (the default policy); open-access landing pages frequently
// redirect to the hosting repository.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// NewLimiter returns a client-side rate limiter allowing requestsPerSecond
// sustained calls with a burst of one, or nil when requestsPerSecond is
// zero or negative. The bibliographic APIs are shared community services;
// a polite client paces itself rather than retrying after a 429.
func NewLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// Do waits on the limiter (when non-nil) and then executes the request
// with ctx attached. If the context is cancelled while waiting, the
// request is never sent.
func Do(ctx context.Context, client *http.Client, limiter *rate.Limiter, req *http.Request) (*http.Response, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return client.Do(req.WithContext(ctx))
}

// ExpectJSON returns an error unless resp carries a 200 status and a JSON
// content type. Providers occasionally answer HTML error pages with a 200;
// treating those as malformed keeps the parse step fail-closed.
func ExpectJSON(resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "json") {
		return fmt.Errorf("unexpected content type %q", ct)
	}
	return nil
}
