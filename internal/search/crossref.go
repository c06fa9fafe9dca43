// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-finder/internal/httputil"
	"github.com/pdiddy/paper-finder/pkg/types"
)

// crossrefSearchBase is the Crossref works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var crossrefSearchBase = "https://api.crossref.org/works"

// CrossrefBackend queries the Crossref REST API by title.
type CrossrefBackend struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// Name returns the backend identifier.
func (b *CrossrefBackend) Name() string { return "crossref" }

// Search queries Crossref with the title as a bibliographic query and
// normalizes each returned work into a CandidateRecord.
func (b *CrossrefBackend) Search(ctx context.Context, query types.Query, cfg types.SearchConfig) ([]types.CandidateRecord, error) {
	rows := cfg.MaxResults
	if rows <= 0 {
		rows = 15
	}

	params := url.Values{
		"query.title": {query.Title},
		"rows":        {fmt.Sprintf("%d", rows)},
	}
	reqURL := crossrefSearchBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.Do(ctx, b.Client, b.Limiter, req)
	if err != nil {
		return nil, fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.ExpectJSON(resp); err != nil {
		return nil, fmt.Errorf("Crossref API: %w", err)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing Crossref response: %w", err)
	}

	var records []types.CandidateRecord
	for _, item := range cr.Message.Items {
		records = append(records, crossrefRecord(item))
	}
	return records, nil
}

// crossrefRecord normalizes one Crossref work into a CandidateRecord.
func crossrefRecord(item crossrefWork) types.CandidateRecord {
	r := types.CandidateRecord{
		Source: types.SourceCrossref,
		DOI:    item.DOI,
	}
	if len(item.Title) > 0 {
		r.Title = item.Title[0]
	}

	for i, a := range item.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name != "" {
			r.Authors = append(r.Authors, name)
		}
		if i == 0 && a.Family != "" {
			r.FirstAuthorLastName = strings.TrimSpace(a.Family)
		}
	}

	if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		r.Year = item.Issued.DateParts[0][0]
	}

	// The first link served as application/pdf is the provider-native
	// full-text URL. Other content types (text/xml, text/html) are
	// metadata renditions, not the paper.
	for _, link := range item.Link {
		if link.URL != "" && strings.Contains(strings.ToLower(link.ContentType), "pdf") {
			r.OAURL = link.URL
			break
		}
	}
	return r
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefWork `json:"items"`
}

type crossrefWork struct {
	Title  []string         `json:"title"`
	DOI    string           `json:"DOI"`
	Author []crossrefAuthor `json:"author"`
	Issued crossrefDate     `json:"issued"`
	Link   []crossrefLink   `json:"link"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}
