// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// fakeBackend returns canned records or an error, optionally after a delay.
type fakeBackend struct {
	name    string
	records []types.CandidateRecord
	err     error
	delay   time.Duration
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Search(ctx context.Context, _ types.Query, _ types.SearchConfig) ([]types.CandidateRecord, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.records, f.err
}

func TestRun_MergesInRegistrationOrder(t *testing.T) {
	// The slower backend is registered first; its results still come first.
	first := &fakeBackend{
		name:    "crossref",
		delay:   20 * time.Millisecond,
		records: []types.CandidateRecord{{Source: types.SourceCrossref, Title: "a"}, {Source: types.SourceCrossref, Title: "b"}},
	}
	second := &fakeBackend{
		name:    "europe_pmc",
		records: []types.CandidateRecord{{Source: types.SourceEuropePMC, Title: "c"}},
	}

	out, err := Run(context.Background(), types.Query{Title: "whatever title"}, []Backend{first, second}, types.SearchConfig{})
	require.NoError(t, err)
	require.Len(t, out.Candidates, 3)
	assert.Equal(t, "a", out.Candidates[0].Title)
	assert.Equal(t, "b", out.Candidates[1].Title)
	assert.Equal(t, "c", out.Candidates[2].Title)
	assert.Empty(t, out.Warnings)
}

func TestRun_BackendFailureBecomesWarning(t *testing.T) {
	down := &fakeBackend{name: "crossref", err: errors.New("connection refused")}
	up := &fakeBackend{name: "europe_pmc", records: []types.CandidateRecord{{Title: "survivor"}}}

	out, err := Run(context.Background(), types.Query{Title: "whatever title"}, []Backend{down, up}, types.SearchConfig{})
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "survivor", out.Candidates[0].Title)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "crossref")
	assert.Contains(t, out.Warnings[0], "connection refused")
}

func TestRun_AllBackendsDown(t *testing.T) {
	out, err := Run(context.Background(), types.Query{Title: "whatever title"}, []Backend{
		&fakeBackend{name: "crossref", err: errors.New("timeout")},
		&fakeBackend{name: "europe_pmc", err: errors.New("HTTP 503")},
	}, types.SearchConfig{})
	require.NoError(t, err)
	assert.Empty(t, out.Candidates)
	assert.Len(t, out.Warnings, 2)
}

func TestRun_NoBackends(t *testing.T) {
	_, err := Run(context.Background(), types.Query{Title: "whatever title"}, nil, types.SearchConfig{})
	assert.Error(t, err)
}
