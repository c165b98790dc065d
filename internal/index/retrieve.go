// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

// QueryOptions holds parameters for entity index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string, matched against entity
	// names and mention spans.
	Query string

	// Type filters by entity category (PERSON, LOCATION, ...).
	Type string

	// ArticleID filters by article.
	ArticleID string

	// MinSalience drops entities below the threshold.
	MinSalience float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Type == "" && q.ArticleID == "" && q.MinSalience == 0
}

// QueryResult is an Entity with associated article metadata.
type QueryResult struct {
	types.Entity
	ArticleTitle   string `json:"article_title" yaml:"article_title"`
	ArticleURL     string `json:"article_url" yaml:"article_url"`
	ArticleSection string `json:"article_section,omitempty" yaml:"article_section,omitempty"`
}

// Retrieve queries the entity index with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries are sorted by salience, highest first.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT e.id, e.article_id, e.name, e.type, e.salience, e.mentions,
				a.title, a.url, a.section, entities_fts.rank
			FROM entities_fts
			JOIN entities e ON e.rowid = entities_fts.rowid
			LEFT JOIN articles a ON e.article_id = a.id
			WHERE entities_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT e.id, e.article_id, e.name, e.type, e.salience, e.mentions,
				a.title, a.url, a.section, 0 AS rank
			FROM entities e
			LEFT JOIN articles a ON e.article_id = a.id
			WHERE 1=1`)
	}

	if opts.Type != "" {
		qb.WriteString(` AND e.type = ?`)
		args = append(args, opts.Type)
	}

	if opts.ArticleID != "" {
		qb.WriteString(` AND e.article_id = ?`)
		args = append(args, opts.ArticleID)
	}

	if opts.MinSalience > 0 {
		qb.WriteString(` AND e.salience >= ?`)
		args = append(args, opts.MinSalience)
	}

	if useFTS {
		qb.WriteString(` ORDER BY entities_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY e.salience DESC, e.article_id, e.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying entity index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr           QueryResult
			mentionsJSON sql.NullString
			title        sql.NullString
			url          sql.NullString
			section      sql.NullString
			rank         float64
		)

		if err := rows.Scan(
			&qr.ID, &qr.ArticleID, &qr.Name, &qr.Type, &qr.Salience, &mentionsJSON,
			&title, &url, &section, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if mentionsJSON.Valid {
			json.Unmarshal([]byte(mentionsJSON.String), &qr.Mentions)
		}
		if title.Valid {
			qr.ArticleTitle = title.String
		}
		if url.Valid {
			qr.ArticleURL = url.String
		}
		if section.Valid {
			qr.ArticleSection = section.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// Context returns the text surrounding the first mention of an entity,
// read from the article's corpus text file. The window covers up to
// contextBytes on either side of the mention offset, widened to rune
// boundaries.
func (s *Store) Context(ctx context.Context, entityID string) (string, error) {
	var articleID, mentionsJSON, textPath string

	err := s.db.QueryRowContext(ctx,
		`SELECT e.article_id, e.mentions, COALESCE(a.text_path, '')
		 FROM entities e LEFT JOIN articles a ON e.article_id = a.id
		 WHERE e.id = ?`, entityID,
	).Scan(&articleID, &mentionsJSON, &textPath)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("entity %s not found", entityID)
		}
		return "", fmt.Errorf("looking up entity: %w", err)
	}

	var mentions []types.Mention
	if err := json.Unmarshal([]byte(mentionsJSON), &mentions); err != nil || len(mentions) == 0 {
		return "", fmt.Errorf("entity %s has no recorded mentions", entityID)
	}

	if textPath == "" {
		return "", fmt.Errorf("no corpus text recorded for article %s", articleID)
	}
	content, err := os.ReadFile(textPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", textPath, err)
	}

	return extractMentionContext(string(content), mentions[0].BeginOffset), nil
}

const contextBytes = 200

// extractMentionContext returns the window of text around offset,
// trimmed to whole lines where possible.
func extractMentionContext(content string, offset int) string {
	if offset < 0 || offset >= len(content) {
		return ""
	}
	start := offset - contextBytes
	if start < 0 {
		start = 0
	}
	end := offset + contextBytes
	if end > len(content) {
		end = len(content)
	}

	// Snap to line boundaries when a newline falls inside the window.
	if i := strings.LastIndexByte(content[start:offset], '\n'); i >= 0 {
		start += i + 1
	}
	if i := strings.IndexByte(content[offset:end], '\n'); i >= 0 {
		end = offset + i
	}

	return strings.TrimSpace(content[start:end])
}
