// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze runs entity analysis over scraped article text and
// persists per-article entity records in the corpus.
package analyze

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/newsdesk-engine/internal/cli"
	"github.com/pdiddy/newsdesk-engine/internal/storage"
	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

const (
	textDir     = "text"
	metadataDir = "metadata"
	entitiesDir = "entities"
)

// BatchResult holds the outcome of a batch analysis run.
type BatchResult struct {
	Analyzed int
	Skipped  int
	Failed   int
	Results  []*types.AnalysisResult
}

// Total returns the total number of articles processed.
func (r BatchResult) Total() int {
	return r.Analyzed + r.Skipped + r.Failed
}

// HasFailures reports whether any articles failed analysis.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// EntitiesPath returns the corpus path of the entity record for slug.
func EntitiesPath(cfg types.AnalysisConfig, slug string) string {
	return filepath.Join(cfg.CorpusDir, entitiesDir, slug+"-entities.yaml")
}

// AnalyzeArticle runs entity analysis for one scraped article. The text
// file is optionally staged to the configured bucket first, then fed to
// the analysis tool; recognized entities are written to
// corpus/entities/[slug]-entities.yaml and the article metadata status
// is updated. If the entity record already exists, analysis is skipped
// and the existing record is returned.
func AnalyzeArticle(gcloud, gsutil *cli.Tool, slug string, cfg types.AnalysisConfig, w io.Writer) (result *types.AnalysisResult, skipped bool, err error) {
	textPath := filepath.Join(cfg.CorpusDir, textDir, slug+".txt")
	if _, err := os.Stat(textPath); err != nil {
		return nil, false, fmt.Errorf("no corpus text for %s: %w", slug, err)
	}

	outPath := EntitiesPath(cfg, slug)
	if _, err := os.Stat(outPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already analyzed)\n", slug)
		existing, readErr := ReadResult(outPath)
		if readErr != nil {
			return nil, false, fmt.Errorf("reading existing entity record for %s: %w", slug, readErr)
		}
		return existing, true, nil
	}

	if err := os.MkdirAll(filepath.Join(cfg.CorpusDir, entitiesDir), 0o755); err != nil {
		return nil, false, fmt.Errorf("creating entities directory: %w", err)
	}

	fmt.Fprintf(w, "analyzing: %s\n", slug)

	stagedObject := ""
	if cfg.StagingBucket != "" && gsutil != nil {
		stagedObject = strings.TrimSuffix(cfg.StagingBucket, "/") + "/" + slug + ".txt"
		if err := storage.Copy(gsutil, textPath, stagedObject); err != nil {
			// Staging is an archival convenience; analysis reads the
			// local file either way.
			fmt.Fprintf(w, "warning: staging %s failed: %v\n", slug, err)
			stagedObject = ""
		}
	}

	annotated, err := cli.AnnotateEntities(gcloud, textPath)
	if err != nil {
		markStatus(cfg, slug, types.AnalysisFailed)
		return nil, false, err
	}

	entities := annotated.Entities
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Salience > entities[j].Salience
	})
	for i := range entities {
		entities[i].ID = fmt.Sprintf("%s-e%03d", slug, i+1)
		entities[i].ArticleID = slug
	}

	result = &types.AnalysisResult{
		ArticleID:    slug,
		Language:     annotated.Language,
		AnalyzedAt:   time.Now().UTC(),
		StagedObject: stagedObject,
		Entities:     entities,
	}

	if err := writeResult(result, outPath); err != nil {
		return nil, false, fmt.Errorf("writing entity record for %s: %w", slug, err)
	}
	markStatus(cfg, slug, types.AnalysisDone)

	fmt.Fprintf(w, "analyzed: %s (%d entities)\n", slug, len(entities))
	return result, false, nil
}

// AnalyzeBatch analyzes multiple articles by slug, printing per-item
// status and returning a summary. It continues after individual failures.
func AnalyzeBatch(gcloud, gsutil *cli.Tool, slugs []string, cfg types.AnalysisConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, slug := range slugs {
		r, wasSkipped, err := AnalyzeArticle(gcloud, gsutil, slug, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", slug, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Analyzed++
		}
		result.Results = append(result.Results, r)
	}
	fmt.Fprintf(w, "\nBatch summary: %d analyzed, %d skipped, %d failed (total: %d)\n",
		result.Analyzed, result.Skipped, result.Failed, result.Total())
	return result
}

// ListScraped returns the slugs of all articles with corpus text, in
// lexical order. Used when a batch run is invoked without explicit slugs.
func ListScraped(cfg types.AnalysisConfig) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(cfg.CorpusDir, textDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing corpus text: %w", err)
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ".txt"))
	}
	return slugs, nil
}

// ReadResult reads an entity record from a YAML file.
func ReadResult(path string) (*types.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var result types.AnalysisResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// writeResult writes an entity record to a YAML file.
func writeResult(result *types.AnalysisResult, path string) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling entity record: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// markStatus updates the analysis status in the article metadata file.
// Missing metadata is not an error; the corpus text may have been placed
// by hand.
func markStatus(cfg types.AnalysisConfig, slug string, status types.AnalysisStatus) {
	metaPath := filepath.Join(cfg.CorpusDir, metadataDir, slug+".yaml")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return
	}
	var article types.Article
	if err := yaml.Unmarshal(data, &article); err != nil {
		return
	}
	article.AnalysisStatus = status
	if out, err := yaml.Marshal(&article); err == nil {
		os.WriteFile(metaPath, out, 0o644)
	}
}
