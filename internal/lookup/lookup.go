// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup orchestrates a paper lookup: provider fan-out, best-match
// selection, open-access enrichment, and download token minting.
package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/paper-finder/internal/httputil"
	"github.com/pdiddy/paper-finder/internal/match"
	"github.com/pdiddy/paper-finder/internal/resolve"
	"github.com/pdiddy/paper-finder/internal/search"
	"github.com/pdiddy/paper-finder/internal/token"
	"github.com/pdiddy/paper-finder/pkg/types"
)

// Validation limits for incoming queries, matching the public API contract.
const (
	minTitleLen  = 5
	minAuthorLen = 2
)

// ErrInvalidQuery is returned when a query is missing or too short after
// trimming. The HTTP layer maps it to a 400.
var ErrInvalidQuery = errors.New("title and first_author_last_name are required")

// Result is the outcome of one lookup. A nil Match with no error is a
// valid negative result: nothing cleared the similarity threshold.
type Result struct {
	Match         *types.ResolvedMatch
	DownloadToken string
	Warnings      []string
}

// Service wires the lookup stages together. Construct with New.
type Service struct {
	backends  []search.Backend
	tokens    *token.Store
	searchCfg types.SearchConfig
	unpaywall types.UnpaywallConfig

	// resolveOA is the enrichment call; swapped in tests.
	resolveOA func(ctx context.Context, doi string) (string, error)
}

// New assembles a Service from configuration. Backends are registered in
// tie-break order: crossref first, then europe_pmc.
func New(cfg types.AppConfig, tokens *token.Store) *Service {
	client := httputil.NewClient(cfg.Search.Timeout)
	limiter := httputil.NewLimiter(cfg.Search.RequestsPerSecond)

	var backends []search.Backend
	if cfg.Search.EnableCrossref {
		backends = append(backends, &search.CrossrefBackend{Client: client, Limiter: limiter})
	}
	if cfg.Search.EnableEuropePMC {
		backends = append(backends, &search.EuropePMCBackend{Client: client, Limiter: limiter})
	}

	return &Service{
		backends:  backends,
		tokens:    tokens,
		searchCfg: cfg.Search,
		unpaywall: cfg.Unpaywall,
		resolveOA: func(ctx context.Context, doi string) (string, error) {
			return resolve.OpenAccessURL(ctx, client, limiter, doi, cfg.Unpaywall)
		},
	}
}

// Validate checks that both query fields meet the minimum lengths after
// trimming.
func Validate(q types.Query) error {
	q = q.Trimmed()
	if len(q.Title) < minTitleLen || len(q.FirstAuthorLastName) < minAuthorLen {
		return ErrInvalidQuery
	}
	return nil
}

// Resolve runs search, matching, and enrichment for a query without
// touching the token store. A nil match with nil error means no candidate
// cleared the threshold.
func (s *Service) Resolve(ctx context.Context, q types.Query) (*types.ResolvedMatch, []string, error) {
	if err := Validate(q); err != nil {
		return nil, nil, err
	}
	q = q.Trimmed()

	out, err := search.Run(ctx, q, s.backends, s.searchCfg)
	if err != nil {
		return nil, nil, err
	}
	warnings := out.Warnings

	m, err := match.Best(q, out.Candidates)
	if errors.Is(err, match.ErrNoMatch) {
		return nil, warnings, nil
	}
	if err != nil {
		return nil, warnings, err
	}

	if m.DOI != "" {
		if s.unpaywall.Email == "" {
			warnings = append(warnings, "unpaywall email is not configured; open-access coverage is reduced")
		} else {
			oaURL, err := s.resolveOA(ctx, m.DOI)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("unpaywall: %v", err))
			} else if oaURL != "" {
				m.CandidateURLs = match.MergeURLs(m.CandidateURLs, []string{oaURL})
			}
		}
	}
	return m, warnings, nil
}

// Do runs a full lookup and, when the match has at least one candidate
// URL, mints a single-use download token for the first one. A match with
// metadata but no URLs yields a metadata-only result without a token.
func (s *Service) Do(ctx context.Context, q types.Query) (Result, error) {
	m, warnings, err := s.Resolve(ctx, q)
	if err != nil {
		return Result{}, err
	}
	res := Result{Match: m, Warnings: warnings}
	if m == nil || len(m.CandidateURLs) == 0 {
		return res, nil
	}

	tok, err := s.tokens.Mint(m.CandidateURLs[0], m.Metadata.Title)
	if err != nil {
		return Result{}, fmt.Errorf("minting download token: %w", err)
	}
	res.DownloadToken = tok
	return res, nil
}
