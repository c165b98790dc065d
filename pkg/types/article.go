// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AnalysisStatus indicates the state of entity analysis for an article.
type AnalysisStatus string

const (
	AnalysisNone   AnalysisStatus = "none"
	AnalysisDone   AnalysisStatus = "analyzed"
	AnalysisFailed AnalysisStatus = "failed"
)

// Listing is one entry returned by a content-listing backend.
type Listing struct {
	// URL is the canonical article URL; listings are deduplicated on it.
	URL string `json:"url" yaml:"url"`

	// Title is the article headline.
	Title string `json:"title" yaml:"title"`

	// Abstract is the listing summary, when the backend provides one.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Byline credits the article authors (e.g. "By Jane Doe").
	Byline string `json:"byline,omitempty" yaml:"byline,omitempty"`

	// Section is the desk or section the article appeared under.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Published is the publication timestamp.
	Published time.Time `json:"published" yaml:"published"`

	// Source identifies which backend produced the listing
	// (e.g. "topstories", "articlesearch").
	Source string `json:"source" yaml:"source"`

	// RelevanceScore is a normalized [0,1] ranking score.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// Article holds metadata and file paths for a scraped article.
type Article struct {
	// ID is a slug derived from the article URL path.
	ID string `json:"id" yaml:"id"`

	// URL is the address the article body was fetched from.
	URL string `json:"url" yaml:"url"`

	// TextPath is the local filesystem path to the extracted body text.
	TextPath string `json:"text_path" yaml:"text_path"`

	// Title is the article headline.
	Title string `json:"title" yaml:"title"`

	// Byline credits the article authors.
	Byline string `json:"byline,omitempty" yaml:"byline,omitempty"`

	// Section is the desk or section the article appeared under.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Published is the publication timestamp, when known.
	Published time.Time `json:"published" yaml:"published"`

	// Scraped is the time the body text was extracted.
	Scraped time.Time `json:"scraped" yaml:"scraped"`

	// AnalysisStatus tracks whether entity analysis has run for the article.
	AnalysisStatus AnalysisStatus `json:"analysis_status" yaml:"analysis_status"`
}
