// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newsdesk-engine/internal/content"
	"github.com/pdiddy/newsdesk-engine/internal/httputil"
	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "newsdesk-engine/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [query]",
	Short: "Fetch article listings from the content API",
	Long: `Fetch queries the content API for article listings. The top-stories
backend returns the current listing for a section; the article-search
backend matches a free-text query against the archive. Results are
deduplicated by URL across backends and ranked by relevance.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("query", "", "free-text article-search query")
	fetchCmd.Flags().String("section", "", "top-stories section (default home)")
	fetchCmd.Flags().String("api-key", "", "content API key (default: content-api-key secret)")
	fetchCmd.Flags().Int("max-results", 20, "maximum number of listings to return")
	fetchCmd.Flags().Float64("rps", 5, "sustained request rate against the API")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	fetchCmd.Flags().Bool("top-stories", true, "query the top-stories backend")
	fetchCmd.Flags().Bool("article-search", true, "query the article-search backend")
	fetchCmd.Flags().Bool("json", false, "output listings as JSON")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = args[0]
	}
	section, _ := cmd.Flags().GetString("section")
	apiKey, _ := cmd.Flags().GetString("api-key")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	rps, _ := cmd.Flags().GetFloat64("rps")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	useTopStories, _ := cmd.Flags().GetBool("top-stories")
	useArticleSearch, _ := cmd.Flags().GetBool("article-search")

	cfg := types.ContentConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		APIKey:              secretDefault("content-api-key", apiKey),
		MaxResults:          maxResults,
		EnableTopStories:    useTopStories,
		EnableArticleSearch: useArticleSearch,
		Section:             section,
		RequestsPerSecond:   rps,
	}

	client := &http.Client{Timeout: cfg.Timeout}
	limiter := httputil.NewRateLimiter(cfg.RequestsPerSecond, 0)

	var backends []content.Backend
	if cfg.EnableTopStories {
		backends = append(backends, &content.TopStoriesBackend{Client: client, Limiter: limiter})
	}
	// The article-search backend needs a query to match against.
	if cfg.EnableArticleSearch && queryText != "" {
		backends = append(backends, &content.ArticleSearchBackend{Client: client, Limiter: limiter})
	}
	if len(backends) == 0 {
		return fmt.Errorf("no backends enabled: pass a query or enable --top-stories")
	}

	out, err := content.Fetch(cmd.Context(), content.Query{
		FreeText: queryText,
		Section:  section,
	}, backends, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return content.FormatJSON(out, os.Stdout)
	}
	content.FormatTable(out, os.Stdout)
	return nil
}
