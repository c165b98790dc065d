// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newsdesk-engine/internal/index"
	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the entity index (store, retrieve, export)",
	Long: `Index manages a local SQLite index built from analyzed entities. Use
subcommands to ingest entity records, query them, or export.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest analyzed entities into the index",
	Long: `Store reads entity YAML files from corpus/entities/, ingests them into
a SQLite database with FTS5 indexing over names and mentions, and writes
an export file. Unchanged articles are skipped on subsequent runs.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d article(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var indexRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the entity index with full-text search and filters",
	Long: `Retrieve searches the entity index using FTS5 full-text search over
entity names and mention spans, structured filters (type, article,
salience), or a combination of both. Results include the source article.

Use --context with an entity ID to view the text surrounding its first
mention.`,
	RunE: runIndexRetrieve,
}

func runIndexRetrieve(cmd *cobra.Command, args []string) error {
	contextID, _ := cmd.Flags().GetString("context")

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	// Context mode: show surrounding text for a specific entity.
	if contextID != "" {
		text, err := store.Context(cmd.Context(), contextID)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, --article, or --min-salience")
	}

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []index.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-30s  %-13s  %-8s  %-8s  %s\n",
		"Rank", "Entity", "Type", "Salience", "Mentions", "Article")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range results {
		name := r.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		article := r.ArticleID
		if len(article) > 25 {
			article = article[:22] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-30s  %-13s  %-8.4f  %-8d  %s\n",
			i+1, name, r.Type, r.Salience, len(r.Mentions), article)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the entity index to YAML or JSON",
	Long: `Export writes the full entity index (or a filtered subset) to
index/export.yaml or export.json. Supports the same filter flags as
retrieve for partial exports.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.yaml")
	case "json":
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func indexConfig(cmd *cobra.Command) types.IndexConfig {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	if indexDir == "" {
		indexDir = "index"
	}
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	if corpusDir == "" {
		corpusDir = "corpus"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.IndexConfig{
		IndexDir:   indexDir,
		CorpusDir:  corpusDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	entityType, _ := cmd.Flags().GetString("type")
	articleID, _ := cmd.Flags().GetString("article")
	minSalience, _ := cmd.Flags().GetFloat64("min-salience")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:       queryText,
		Type:        strings.ToUpper(entityType),
		ArticleID:   articleID,
		MinSalience: minSalience,
		MaxResults:  limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", "index", "directory for the SQLite database and exports")
	indexCmd.PersistentFlags().String("corpus-dir", "corpus", "base directory for corpus files (contains entities/, metadata/)")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Retrieve flags.
	indexRetrieveCmd.Flags().String("query", "", "full-text search query")
	indexRetrieveCmd.Flags().String("type", "", "filter by entity type: person, location, organization, ...")
	indexRetrieveCmd.Flags().String("article", "", "filter by article slug")
	indexRetrieveCmd.Flags().Float64("min-salience", 0, "drop entities below this salience")
	indexRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexRetrieveCmd.Flags().String("context", "", "show surrounding text for an entity ID")
	indexRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	indexExportCmd.Flags().String("type", "", "filter by entity type for partial export")
	indexExportCmd.Flags().String("article", "", "filter by article slug for partial export")
	indexExportCmd.Flags().Float64("min-salience", 0, "salience threshold for partial export")
	indexExportCmd.Flags().Int("limit", 0, "maximum entities to export (0 = all)")

	// Wire subcommands.
	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexRetrieveCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
