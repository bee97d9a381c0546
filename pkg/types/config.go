// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "elsevier-harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RateLimitConfig holds the pacing and backoff policy applied to every
// outbound provider call.
type RateLimitConfig struct {
	// MinInterval is the minimum delay between successive requests
	// (default 1s).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`

	// Multiplier scales the interval after each throttling response
	// (default 2.0).
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`

	// Ceiling caps the escalated interval (default 2m).
	Ceiling time.Duration `json:"ceiling" yaml:"ceiling"`

	// MaxRetries bounds retries of a throttled request before the call
	// fails with a quota error (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// NetworkRetries bounds retries after network-level failures
	// (default 2).
	NetworkRetries int `json:"network_retries" yaml:"network_retries"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// RateLimit is the pacing policy for search requests.
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`

	// PageSize is the number of entries requested per page (default 50).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxRecords caps the total entries fetched per query; 0 means all.
	MaxRecords int `json:"max_records" yaml:"max_records"`
}

// MetricsConfig holds settings for the PlumX metrics stage.
type MetricsConfig struct {
	HTTPConfig `yaml:",inline"`

	// RateLimit is the pacing policy for per-DOI metrics requests.
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
}

// ObjectsConfig holds settings for the object retrieval stage.
type ObjectsConfig struct {
	HTTPConfig `yaml:",inline"`

	// RateLimit is the pacing policy for object requests.
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`

	// OutputDir is the base directory for retrieved objects (contains
	// graphics/, manuscripts/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SaveManuscripts controls whether author manuscript PDFs are
	// downloaded alongside graphics.
	SaveManuscripts bool `json:"save_manuscripts" yaml:"save_manuscripts"`
}

// OutputConfig holds settings for the persistence stage.
type OutputConfig struct {
	// Dir is the directory search and metrics output files are written to.
	Dir string `json:"dir" yaml:"dir"`

	// CSV enables the tabular sink alongside the JSON lines sink.
	CSV bool `json:"csv" yaml:"csv"`

	// ArchivePath is the SQLite archive database path; empty disables
	// archiving.
	ArchivePath string `json:"archive_path" yaml:"archive_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search  SearchConfig  `json:"search" yaml:"search"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Objects ObjectsConfig `json:"objects" yaml:"objects"`
	Output  OutputConfig  `json:"output" yaml:"output"`
}
