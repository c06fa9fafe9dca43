// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// LookupFile is the on-disk representation of a lookup and its outcome.
// A lookup run from the CLI can be saved to a file and reloaded later
// without re-querying the APIs.
type LookupFile struct {
	Query   types.Query          `yaml:"query"`
	Match   *types.ResolvedMatch `yaml:"match,omitempty"`
	Summary LookupSummary        `yaml:"summary"`
}

// LookupSummary stores outcome statistics and a timestamp.
type LookupSummary struct {
	Matched       bool      `yaml:"matched"`
	CandidateURLs int       `yaml:"candidate_urls"`
	Warnings      []string  `yaml:"warnings,omitempty"`
	Timestamp     time.Time `yaml:"timestamp"`
}

// WriteLookupFile saves a query and its outcome to a YAML file.
func WriteLookupFile(path string, query types.Query, match *types.ResolvedMatch, warnings []string) error {
	lf := LookupFile{
		Query: query,
		Match: match,
		Summary: LookupSummary{
			Matched:   match != nil,
			Warnings:  warnings,
			Timestamp: time.Now(),
		},
	}
	if match != nil {
		lf.Summary.CandidateURLs = len(match.CandidateURLs)
	}

	data, err := yaml.Marshal(&lf)
	if err != nil {
		return fmt.Errorf("marshaling lookup file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLookupFile loads a previously saved lookup file from disk.
func ReadLookupFile(path string) (*LookupFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lookup file: %w", err)
	}
	var lf LookupFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lookup file: %w", err)
	}
	return &lf, nil
}
