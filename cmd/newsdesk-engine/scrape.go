// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newsdesk-engine/internal/scrape"
	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

const defaultFetchDelay = 1 * time.Second

var scrapeCmd = &cobra.Command{
	Use:   "scrape [urls...]",
	Short: "Download article pages and extract body text",
	Long: `Scrape downloads article pages, extracts the named body section to
plain text, and creates corpus records under corpus/{raw,text,metadata}/.
Articles whose text already exists are skipped.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	scrapeCmd.Flags().Duration("delay", 0, "delay between consecutive page fetches (default 1s)")
	scrapeCmd.Flags().String("corpus-dir", "corpus", "base directory for corpus files")
	scrapeCmd.Flags().String("section", "", "name attribute of the body section (default articleBody)")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more article URLs")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultFetchDelay
	}
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	section, _ := cmd.Flags().GetString("section")

	cfg := types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		FetchDelay:  delay,
		CorpusDir:   corpusDir,
		BodySection: section,
	}

	client := &http.Client{Timeout: cfg.Timeout}

	result := scrape.ScrapeBatch(client, args, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d article(s) failed scraping", result.Failed)
	}
	return nil
}
