// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-finder pipeline:
// the lookup query, normalized candidate records from bibliographic providers,
// and the resolved best match handed to the token/download stages.
package types

import "strings"

// Source identifies the bibliographic provider a candidate record came from.
type Source string

const (
	SourceCrossref  Source = "crossref"
	SourceEuropePMC Source = "europe_pmc"
	SourceUnpaywall Source = "unpaywall"
)

// Query holds the user's lookup request: a paper title and the family name
// of the first author. The title is the primary match key; the author name
// disambiguates between similarly titled works.
type Query struct {
	Title               string `json:"title" yaml:"title"`
	FirstAuthorLastName string `json:"first_author_last_name" yaml:"first_author_last_name"`
}

// Trimmed returns a copy of the query with surrounding whitespace removed
// from both fields.
func (q Query) Trimmed() Query {
	return Query{
		Title:               strings.TrimSpace(q.Title),
		FirstAuthorLastName: strings.TrimSpace(q.FirstAuthorLastName),
	}
}

// CandidateRecord is a normalized search result from one provider. Records
// are constructed by the provider clients and scored by the matcher; they
// are not mutated after construction.
type CandidateRecord struct {
	// Source identifies which provider returned this record.
	Source Source `json:"source" yaml:"source"`

	// Title is the candidate paper title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Authors lists the candidate's authors in provider order. Formats
	// differ between providers ("Jennifer Doudna" vs "Doudna JA"); the
	// matcher normalizes before comparing.
	Authors []string `json:"authors" yaml:"authors"`

	// FirstAuthorLastName is the family name of the first author when the
	// provider exposes it in structured form. Empty when unknown.
	FirstAuthorLastName string `json:"first_author_last_name,omitempty" yaml:"first_author_last_name,omitempty"`

	// DOI is the candidate's Digital Object Identifier, if any.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Year is the publication year, or 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// OAURL is a provider-native open-access full-text URL, if any.
	OAURL string `json:"oa_url,omitempty" yaml:"oa_url,omitempty"`

	// Score is the matcher-assigned relevance score. Zero until scored.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// ResolvedMatch is the matcher's output: the chosen best record plus the
// merged, ordered list of candidate full-text URLs.
type ResolvedMatch struct {
	// Metadata is the best candidate record with its score zeroed; the
	// score is an internal ranking detail, not part of the match.
	Metadata CandidateRecord `json:"metadata" yaml:"metadata"`

	// CandidateURLs lists believed-legal full-text URLs in preference
	// order: provider-native open-access URL first, enrichment URLs after.
	CandidateURLs []string `json:"candidate_urls" yaml:"candidate_urls"`

	// DOI is the best candidate's DOI, if any.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}
