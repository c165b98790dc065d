// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newsdesk-engine/internal/analyze"
	"github.com/pdiddy/newsdesk-engine/internal/cli"
	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [slugs...]",
	Short: "Run entity analysis over scraped article text",
	Long: `Analyze runs the cloud language tooling over scraped article text and
writes recognized entities to corpus/entities/. Without arguments it
analyzes every article with corpus text; articles already analyzed are
skipped.

When a staging bucket is configured, each text file is copied there
before analysis. Use --show with one slug to print the entity/mention
table for an analyzed article instead of running analysis.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("corpus-dir", "corpus", "base directory for corpus files")
	analyzeCmd.Flags().String("staging-bucket", "", "bucket URI to stage text files to (default: staging-bucket secret)")
	analyzeCmd.Flags().Bool("no-staging", false, "skip staging even when a bucket is configured")
	analyzeCmd.Flags().Bool("show", false, "print the entity/mention table for an analyzed article")
	analyzeCmd.Flags().Bool("json", false, "with --show, output mention rows as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	stagingBucket, _ := cmd.Flags().GetString("staging-bucket")
	noStaging, _ := cmd.Flags().GetBool("no-staging")

	cfg := types.AnalysisConfig{
		CorpusDir:     corpusDir,
		StagingBucket: secretDefault("staging-bucket", stagingBucket),
	}
	if noStaging {
		cfg.StagingBucket = ""
	}

	if show, _ := cmd.Flags().GetBool("show"); show {
		if len(args) != 1 {
			return fmt.Errorf("--show requires exactly one article slug")
		}
		result, err := analyze.ReadResult(analyze.EntitiesPath(cfg, args[0]))
		if err != nil {
			return fmt.Errorf("no entity record for %s: %w", args[0], err)
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return analyze.FormatMentionJSON(result, os.Stdout)
		}
		analyze.FormatMentionTable(result, os.Stdout)
		return nil
	}

	gcloud, err := cli.DetectGcloud()
	if err != nil {
		return err
	}

	var gsutil *cli.Tool
	if cfg.StagingBucket != "" {
		gsutil, err = cli.DetectGsutil()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: staging disabled: %v\n", err)
			cfg.StagingBucket = ""
		}
	}

	slugs := args
	if len(slugs) == 0 {
		slugs, err = analyze.ListScraped(cfg)
		if err != nil {
			return err
		}
		if len(slugs) == 0 {
			return fmt.Errorf("no scraped articles found under %s", corpusDir)
		}
	}

	result := analyze.AnalyzeBatch(gcloud, gsutil, slugs, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d article(s) failed analysis", result.Failed)
	}
	return nil
}
