// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

// ExportEntry holds an indexed entity with article metadata for export.
type ExportEntry struct {
	ID        string          `json:"id" yaml:"id"`
	ArticleID string          `json:"article_id" yaml:"article_id"`
	Name      string          `json:"name" yaml:"name"`
	Type      string          `json:"type" yaml:"type"`
	Salience  float64         `json:"salience" yaml:"salience"`
	Mentions  []types.Mention `json:"mentions" yaml:"mentions"`
	Article   *ExportArticle  `json:"article,omitempty" yaml:"article,omitempty"`
}

// ExportArticle holds the article-level fields included in each export entry.
type ExportArticle struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes the entity index to IndexDir/export.yaml. It
// supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the entity index to IndexDir/export.json. It
// supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:        r.ID,
			ArticleID: r.ArticleID,
			Name:      r.Name,
			Type:      r.Type,
			Salience:  r.Salience,
			Mentions:  r.Mentions,
		}
		if r.ArticleTitle != "" || r.ArticleURL != "" {
			entries[i].Article = &ExportArticle{
				Title:   r.ArticleTitle,
				URL:     r.ArticleURL,
				Section: r.ArticleSection,
			}
		}
	}

	return entries, nil
}
