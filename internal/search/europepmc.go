// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-finder/internal/httputil"
	"github.com/pdiddy/paper-finder/pkg/types"
)

// europePMCSearchBase is the Europe PMC REST search endpoint. Declared as
// a var so tests can substitute an httptest server.
var europePMCSearchBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

// EuropePMCBackend queries the Europe PMC REST API by title and author.
type EuropePMCBackend struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// Name returns the backend identifier.
func (b *EuropePMCBackend) Name() string { return "europe_pmc" }

// Search queries Europe PMC with a fielded TITLE/AUTH query and normalizes
// each result into a CandidateRecord.
func (b *EuropePMCBackend) Search(ctx context.Context, query types.Query, cfg types.SearchConfig) ([]types.CandidateRecord, error) {
	pageSize := cfg.MaxResults
	if pageSize <= 0 {
		pageSize = 15
	}

	fielded := fmt.Sprintf("TITLE:%q AND AUTH:%q", query.Title, query.FirstAuthorLastName)
	params := url.Values{
		"query":    {fielded},
		"format":   {"json"},
		"pageSize": {fmt.Sprintf("%d", pageSize)},
	}
	reqURL := europePMCSearchBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.Do(ctx, b.Client, b.Limiter, req)
	if err != nil {
		return nil, fmt.Errorf("Europe PMC API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.ExpectJSON(resp); err != nil {
		return nil, fmt.Errorf("Europe PMC API: %w", err)
	}

	var er europePMCResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing Europe PMC response: %w", err)
	}

	var records []types.CandidateRecord
	for _, result := range er.ResultList.Result {
		records = append(records, europePMCRecord(result))
	}
	return records, nil
}

// europePMCRecord normalizes one Europe PMC result into a CandidateRecord.
func europePMCRecord(result europePMCResult) types.CandidateRecord {
	r := types.CandidateRecord{
		Source: types.SourceEuropePMC,
		Title:  result.Title,
		DOI:    result.DOI,
	}
	if result.AuthorString != "" {
		r.Authors = []string{result.AuthorString}
	}
	// firstAuthor comes as "Family Initials"; the family name is the
	// first token.
	if fa := strings.TrimSpace(result.FirstAuthor); fa != "" {
		r.FirstAuthorLastName = strings.Fields(fa)[0]
	}
	if y, err := strconv.Atoi(result.PubYear); err == nil {
		r.Year = y
	}
	r.OAURL = europePMCFullTextURL(result)
	return r
}

// europePMCFullTextURL picks the result's PDF full-text URL: an explicit
// documentStyle=pdf entry (or .pdf suffix) wins, falling back to the
// europepmc.org PDF render endpoint when only a PMCID is known.
func europePMCFullTextURL(result europePMCResult) string {
	for _, entry := range result.FullTextURLList.FullTextURL {
		if entry.URL == "" {
			continue
		}
		style := strings.ToLower(entry.DocumentStyle)
		if style == "pdf" || strings.HasSuffix(strings.ToLower(entry.URL), ".pdf") {
			return entry.URL
		}
	}
	if pmcid := strings.TrimSpace(result.PMCID); pmcid != "" {
		return "https://europepmc.org/articles/" + pmcid + "?pdf=render"
	}
	return ""
}

// Europe PMC API JSON structures.
type europePMCResponse struct {
	ResultList europePMCResultList `json:"resultList"`
}

type europePMCResultList struct {
	Result []europePMCResult `json:"result"`
}

type europePMCResult struct {
	Title           string                  `json:"title"`
	DOI             string                  `json:"doi"`
	AuthorString    string                  `json:"authorString"`
	FirstAuthor     string                  `json:"firstAuthor"`
	PubYear         string                  `json:"pubYear"`
	PMCID           string                  `json:"pmcid"`
	IsOpenAccess    string                  `json:"isOpenAccess"`
	FullTextURLList europePMCFullTextURLList `json:"fullTextUrlList"`
}

type europePMCFullTextURLList struct {
	FullTextURL []europePMCFullTextURLEntry `json:"fullTextUrl"`
}

type europePMCFullTextURLEntry struct {
	URL           string `json:"url"`
	DocumentStyle string `json:"documentStyle"`
}
