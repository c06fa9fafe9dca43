// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries bibliographic APIs and returns normalized candidate
// records. Crossref and Europe PMC run concurrently; a failing provider
// degrades the lookup instead of aborting it.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// Backend searches a single bibliographic API. Each provider implements
// this interface so the fan-out stays provider-agnostic.
type Backend interface {
	Name() string
	Search(ctx context.Context, query types.Query, cfg types.SearchConfig) ([]types.CandidateRecord, error)
}

// Output holds the merged candidates and per-backend failure notices.
type Output struct {
	Candidates []types.CandidateRecord
	Warnings   []string
}

// Run fans the query out to all backends concurrently and merges the
// results. Backend failures become warnings, never errors: a lookup with
// one provider down still proceeds on the other's results. Candidate order
// is deterministic regardless of arrival order — backends are concatenated
// in registration order, provider ordering preserved within each.
func Run(ctx context.Context, query types.Query, backends []Backend, cfg types.SearchConfig) (Output, error) {
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no search backends configured")
	}

	results := make([][]types.CandidateRecord, len(backends))
	errs := make([]error, len(backends))

	var wg sync.WaitGroup
	for i, b := range backends {
		wg.Add(1)
		go func(i int, b Backend) {
			defer wg.Done()
			results[i], errs[i] = b.Search(ctx, query, cfg)
		}(i, b)
	}
	wg.Wait()

	var out Output
	for i, b := range backends {
		if errs[i] != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %v", b.Name(), errs[i]))
			continue
		}
		out.Candidates = append(out.Candidates, results[i]...)
	}
	return out, nil
}
