// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists analyzed entities in SQLite and builds a
// full-text retrieval index over entity names and mentions.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

const (
	entitiesDir = "entities"
	metadataDir = "metadata"
	dbFile      = "newsdesk.db"
)

// Store manages the entity index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	corpusDir  string
	maxResults int
}

// NewStore opens or creates the index database at IndexDir/newsdesk.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		indexDir:   cfg.IndexDir,
		corpusDir:  cfg.CorpusDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			url TEXT,
			title TEXT,
			byline TEXT,
			section TEXT,
			published TEXT,
			text_path TEXT,
			analysis_status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS entities (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			article_id TEXT NOT NULL REFERENCES articles(id),
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			salience REAL,
			mention_count INTEGER,
			mentions_text TEXT,
			mentions TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_article_id ON entities(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			article_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='entities_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE entities_fts USING fts5(name, mentions_text, content=entities, content_rowid=rowid)`,
			`CREATE TRIGGER entities_ai AFTER INSERT ON entities BEGIN
				INSERT INTO entities_fts(rowid, name, mentions_text) VALUES (new.rowid, new.name, new.mentions_text);
			END`,
			`CREATE TRIGGER entities_ad AFTER DELETE ON entities BEGIN
				INSERT INTO entities_fts(entities_fts, rowid, name, mentions_text) VALUES('delete', old.rowid, old.name, old.mentions_text);
			END`,
			`CREATE TRIGGER entities_au AFTER UPDATE ON entities BEGIN
				INSERT INTO entities_fts(entities_fts, rowid, name, mentions_text) VALUES('delete', old.rowid, old.name, old.mentions_text);
				INSERT INTO entities_fts(rowid, name, mentions_text) VALUES (new.rowid, new.name, new.mentions_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an index ingestion run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of articles processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads entity records from corpus/entities/ and populates the
// database. It detects new, changed, and unchanged files for incremental
// updates. On success it writes export.yaml alongside the database.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	entDir := filepath.Join(s.corpusDir, entitiesDir)
	metaDir := filepath.Join(s.corpusDir, metadataDir)

	entries, err := os.ReadDir(entDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading entities directory %s: %w", entDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-entities.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		articleID := strings.TrimSuffix(entry.Name(), "-entities.yaml")
		filePath := filepath.Join(entDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", articleID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE article_id = ?`, articleID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", articleID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", articleID, err)
			summary.Failed++
			continue
		}

		var result types.AnalysisResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", articleID, err)
			summary.Failed++
			continue
		}

		article := loadArticleMetadata(metaDir, articleID)

		if err := s.ingestArticle(ctx, articleID, &result, article, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", articleID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d entities)\n", articleID, len(result.Entities))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d entities)\n", articleID, len(result.Entities))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestArticle(ctx context.Context, articleID string, result *types.AnalysisResult, article *types.Article, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old entities if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE article_id = ?`, articleID); err != nil {
			return fmt.Errorf("deleting old entities: %w", err)
		}
	}

	if article != nil {
		publishedStr := ""
		if !article.Published.IsZero() {
			publishedStr = article.Published.Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO articles (id, url, title, byline, section, published, text_path, analysis_status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				url=excluded.url, title=excluded.title, byline=excluded.byline,
				section=excluded.section, published=excluded.published,
				text_path=excluded.text_path, analysis_status=excluded.analysis_status`,
			article.ID, article.URL, article.Title, article.Byline,
			article.Section, publishedStr, article.TextPath, string(article.AnalysisStatus),
		)
		if err != nil {
			return fmt.Errorf("upserting article: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO articles (id) VALUES (?)`, articleID,
		)
		if err != nil {
			return fmt.Errorf("inserting article stub: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO entities (id, article_id, name, type, salience, mention_count, mentions_text, mentions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range result.Entities {
		mentionsJSON, _ := json.Marshal(e.Mentions)
		_, err := stmt.ExecContext(ctx,
			e.ID, e.ArticleID, e.Name, e.Type, e.Salience,
			len(e.Mentions), mentionsText(e.Mentions), string(mentionsJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting entity %s: %w", e.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (article_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(article_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		articleID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// mentionsText joins distinct mention spans into the searchable column.
func mentionsText(mentions []types.Mention) string {
	seen := make(map[string]bool, len(mentions))
	var parts []string
	for _, m := range mentions {
		if !seen[m.Text] {
			seen[m.Text] = true
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, " ")
}

// loadArticleMetadata reads an Article record from metaDir/[articleID].yaml.
// Returns nil if the file does not exist or cannot be parsed.
func loadArticleMetadata(metaDir, articleID string) *types.Article {
	path := filepath.Join(metaDir, articleID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var article types.Article
	if err := yaml.Unmarshal(data, &article); err != nil {
		return nil
	}
	return &article
}
