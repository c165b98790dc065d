package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "newsdesk-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ContentConfig holds settings for the fetch stage.
type ContentConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates listing requests; it is passed as the api-key
	// query parameter and never echoed to output.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the maximum number of listings to return (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableTopStories controls whether the top-stories backend is used.
	EnableTopStories bool `json:"enable_top_stories" yaml:"enable_top_stories"`

	// EnableArticleSearch controls whether the article-search backend is used.
	EnableArticleSearch bool `json:"enable_article_search" yaml:"enable_article_search"`

	// Section selects the top-stories section (default "home").
	Section string `json:"section" yaml:"section"`

	// RequestsPerSecond caps the sustained request rate against the
	// listing API (default 5).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// ScrapeConfig holds settings for the scrape stage.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// FetchDelay is the delay between consecutive page fetches (default 1s).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`

	// CorpusDir is the base directory for corpus files
	// (contains raw/, text/, metadata/, entities/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// BodySection is the name attribute of the HTML section holding the
	// article body (default "articleBody").
	BodySection string `json:"body_section" yaml:"body_section"`
}

// StorageConfig holds settings for bucket and object operations.
type StorageConfig struct {
	// Project is the cloud project that owns the buckets.
	Project string `json:"project" yaml:"project"`

	// StagingBucket is the bucket URI used to stage corpus text for
	// analysis (e.g. "gs://newsdesk-staging-1a2b").
	StagingBucket string `json:"staging_bucket" yaml:"staging_bucket"`
}

// AnalysisConfig holds settings for the entity-analysis stage.
type AnalysisConfig struct {
	// CorpusDir is the base directory for corpus files (contains text/, entities/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// StagingBucket, when set, receives a copy of each analyzed text file.
	StagingBucket string `json:"staging_bucket,omitempty" yaml:"staging_bucket,omitempty"`
}

// IndexConfig holds settings for the index stage.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite database and exports.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// CorpusDir is the base directory for corpus files read during ingest.
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Content  ContentConfig  `json:"content" yaml:"content"`
	Scrape   ScrapeConfig   `json:"scrape" yaml:"scrape"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Index    IndexConfig    `json:"index" yaml:"index"`
}
