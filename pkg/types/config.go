package types

import "time"

// HTTPConfig holds shared HTTP settings used by every operation that talks
// to the PUG-REST service.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cheminf/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Retries is the number of attempts per request (default 3).
	Retries int `json:"retries" yaml:"retries"`

	// BaseDelay is the base backoff delay between attempts; attempt n
	// waits BaseDelay*n before the next try (default 2s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`
}

// SearchConfig holds settings for similarity and identity searches.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Threshold is the Tanimoto similarity threshold 0-100 (default 90).
	Threshold int `json:"threshold" yaml:"threshold"`

	// IdentityType selects the identity relationship for identity
	// searches (e.g. same_connectivity, same_parent). Default
	// same_connectivity.
	IdentityType string `json:"identity_type" yaml:"identity_type"`

	// Method selects the HTTP method for identity searches: "post"
	// (default) or "get". The GET fallback exists because the POST
	// endpoint is occasionally unstable.
	Method string `json:"method" yaml:"method"`
}

// RetrievalConfig holds settings for chunked batch property retrieval.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// ChunkSize is the number of CIDs per API request (default 100).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// InterChunkDelay is the pause between consecutive chunk requests,
	// applied regardless of chunk outcome (default 250ms).
	InterChunkDelay time.Duration `json:"inter_chunk_delay" yaml:"inter_chunk_delay"`

	// Properties lists the property fields to request. Empty means the
	// default six-field set.
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// StoreConfig holds settings for the local compound store.
type StoreConfig struct {
	// DataDir is the base directory for local data (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of listed CIDs (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// OutputConfig holds settings for saved artifacts.
type OutputConfig struct {
	// DownloadsDir is the directory for saved CSV/JSON/text artifacts
	// (default "downloads").
	DownloadsDir string `json:"downloads_dir" yaml:"downloads_dir"`
}

// Config groups all section configurations for the CLI.
type Config struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Output    OutputConfig    `json:"output" yaml:"output"`
}
