// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns a DOI into an open-access full-text URL via the
// Unpaywall API. Enrichment is best-effort: a missing record or a failing
// call yields an empty URL, never a lookup failure.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-finder/internal/httputil"
	"github.com/pdiddy/paper-finder/pkg/types"
)

// unpaywallAPIBase is the Unpaywall DOI endpoint. Declared as a var so
// tests can substitute an httptest server.
var unpaywallAPIBase = "https://api.unpaywall.org/v2/"

// OpenAccessURL queries Unpaywall for doi and returns the best open-access
// full-text URL, or "" when the paper has none. Unpaywall requires a
// contact email on every request; callers must not call this with an empty
// email (enrichment is disabled instead).
func OpenAccessURL(ctx context.Context, client *http.Client, limiter *rate.Limiter, doi string, cfg types.UnpaywallConfig) (string, error) {
	if doi == "" || cfg.Email == "" {
		return "", nil
	}

	reqURL := unpaywallAPIBase + doi + "?email=" + url.QueryEscape(cfg.Email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating Unpaywall request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.Do(ctx, client, limiter, req)
	if err != nil {
		return "", fmt.Errorf("Unpaywall API request: %w", err)
	}
	defer resp.Body.Close()

	// An unknown DOI is a normal negative answer.
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if err := httputil.ExpectJSON(resp); err != nil {
		return "", fmt.Errorf("Unpaywall API: %w", err)
	}

	var ur unpaywallResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("parsing Unpaywall response: %w", err)
	}

	if u := ur.BestOALocation.pick(); u != "" {
		return u, nil
	}
	for _, loc := range ur.OALocations {
		if u := loc.pick(); u != "" {
			return u, nil
		}
	}
	return "", nil
}

// Unpaywall API JSON structures.
type unpaywallResponse struct {
	BestOALocation unpaywallLocation   `json:"best_oa_location"`
	OALocations    []unpaywallLocation `json:"oa_locations"`
}

type unpaywallLocation struct {
	URLForPDF string `json:"url_for_pdf"`
	URL       string `json:"url"`
}

// pick prefers the direct PDF URL over the landing page.
func (l unpaywallLocation) pick() string {
	if l.URLForPDF != "" {
		return l.URLForPDF
	}
	return l.URL
}
