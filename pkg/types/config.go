// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with outbound requests
	// (e.g. "paper-finder/0.1"). Crossref and Unpaywall both ask polite
	// clients to identify themselves.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the provider search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the number of rows requested per provider (default 15).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableCrossref controls whether the Crossref backend is used.
	EnableCrossref bool `json:"enable_crossref" yaml:"enable_crossref"`

	// EnableEuropePMC controls whether the Europe PMC backend is used.
	EnableEuropePMC bool `json:"enable_europe_pmc" yaml:"enable_europe_pmc"`

	// RequestsPerSecond caps the outbound call rate across providers.
	// Zero disables client-side rate limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// UnpaywallConfig holds settings for DOI-based open-access enrichment.
type UnpaywallConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is the contact address sent with every Unpaywall request, as
	// required by its usage policy. Empty disables enrichment.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// TokenConfig holds settings for the download token store.
type TokenConfig struct {
	// TTL is how long a minted token stays redeemable (default 30m).
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// SweepInterval is how often expired tokens are evicted in the
	// background. Zero relies on lazy eviction only.
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// DownloadTimeout bounds a single upstream full-text fetch. Full-text
	// downloads are slower than metadata calls and get their own budget.
	DownloadTimeout time.Duration `json:"download_timeout" yaml:"download_timeout"`
}

// AppConfig groups all stage configurations.
type AppConfig struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	Unpaywall UnpaywallConfig `json:"unpaywall" yaml:"unpaywall"`
	Token     TokenConfig     `json:"token" yaml:"token"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
