// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/newsdesk-engine/internal/cli"
	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

// fakeExecutor maps "bin arg1 arg2" to canned stdout or an error.
type fakeExecutor struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeExecutor) key(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

func (f *fakeExecutor) LookPath(file string) (string, error) { return "/usr/bin/" + file, nil }

func (f *fakeExecutor) RunSilent(name string, args ...string) error {
	_, err := f.RunOutput(name, args...)
	return err
}

func (f *fakeExecutor) RunOutput(name string, args ...string) ([]byte, error) {
	key := f.key(name, args)
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, errors.New("unexpected command: " + key)
}

func (f *fakeExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	_, err := f.RunOutput(name, args...)
	return err
}

const sampleAnnotateJSON = `{
  "language": "en",
  "entities": [
    {
      "name": "London",
      "type": "LOCATION",
      "salience": 0.2,
      "mentions": [
        {"text": {"content": "London", "beginOffset": 40}, "type": "PROPER"}
      ]
    },
    {
      "name": "Ada Lovelace",
      "type": "PERSON",
      "salience": 0.7,
      "mentions": [
        {"text": {"content": "Ada Lovelace", "beginOffset": 0}, "type": "PROPER"},
        {"text": {"content": "she", "beginOffset": 58}, "type": "COMMON"}
      ]
    }
  ]
}`

// writeCorpusText seeds corpus text and metadata for one article slug.
func writeCorpusText(t *testing.T, corpusDir, slug, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(corpusDir, textDir), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(corpusDir, metadataDir), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(corpusDir, textDir, slug+".txt"), []byte(text), 0o644))

	meta, err := yaml.Marshal(&types.Article{
		ID:             slug,
		URL:            "https://example.com/" + slug + ".html",
		TextPath:       filepath.Join(corpusDir, textDir, slug+".txt"),
		AnalysisStatus: types.AnalysisNone,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(
		filepath.Join(corpusDir, metadataDir, slug+".yaml"), meta, 0o644))
}

func annotateKey(corpusDir, slug string) string {
	return "gcloud ml language analyze-entities --content-file=" +
		filepath.Join(corpusDir, textDir, slug+".txt") + " --format=json"
}

func TestAnalyzeArticle(t *testing.T) {
	cfg := types.AnalysisConfig{CorpusDir: t.TempDir()}
	writeCorpusText(t, cfg.CorpusDir, "ada", "Ada Lovelace was born in London, where she lived.")

	exec := &fakeExecutor{outputs: map[string]string{
		annotateKey(cfg.CorpusDir, "ada"): sampleAnnotateJSON,
	}}
	gcloud := cli.NewTool("gcloud", exec)

	var buf bytes.Buffer
	result, skipped, err := AnalyzeArticle(gcloud, nil, "ada", cfg, &buf)
	require.NoError(t, err)
	assert.False(t, skipped)

	require.Len(t, result.Entities, 2)
	// Entities are re-sorted by salience, IDs assigned in that order.
	assert.Equal(t, "Ada Lovelace", result.Entities[0].Name)
	assert.Equal(t, "ada-e001", result.Entities[0].ID)
	assert.Equal(t, "ada", result.Entities[0].ArticleID)
	assert.Equal(t, "ada-e002", result.Entities[1].ID)
	assert.Equal(t, "en", result.Language)
	assert.Empty(t, result.StagedObject)

	// Entity record written and readable.
	onDisk, err := ReadResult(EntitiesPath(cfg, "ada"))
	require.NoError(t, err)
	assert.Equal(t, result.ArticleID, onDisk.ArticleID)
	require.Len(t, onDisk.Entities, 2)
	assert.Len(t, onDisk.Entities[0].Mentions, 2)

	// Metadata status flipped to analyzed.
	meta, err := os.ReadFile(filepath.Join(cfg.CorpusDir, metadataDir, "ada.yaml"))
	require.NoError(t, err)
	var article types.Article
	require.NoError(t, yaml.Unmarshal(meta, &article))
	assert.Equal(t, types.AnalysisDone, article.AnalysisStatus)
}

func TestAnalyzeArticleStagesText(t *testing.T) {
	cfg := types.AnalysisConfig{
		CorpusDir:     t.TempDir(),
		StagingBucket: "gs://newsdesk-staging-1a2b/",
	}
	writeCorpusText(t, cfg.CorpusDir, "ada", "Ada Lovelace.")

	textPath := filepath.Join(cfg.CorpusDir, textDir, "ada.txt")
	exec := &fakeExecutor{outputs: map[string]string{
		annotateKey(cfg.CorpusDir, "ada"):                               sampleAnnotateJSON,
		"gsutil cp " + textPath + " gs://newsdesk-staging-1a2b/ada.txt": "",
	}}
	gcloud := cli.NewTool("gcloud", exec)
	gsutil := cli.NewTool("gsutil", exec)

	var buf bytes.Buffer
	result, _, err := AnalyzeArticle(gcloud, gsutil, "ada", cfg, &buf)
	require.NoError(t, err)
	assert.Equal(t, "gs://newsdesk-staging-1a2b/ada.txt", result.StagedObject)
}

func TestAnalyzeArticleStagingFailureIsWarning(t *testing.T) {
	cfg := types.AnalysisConfig{
		CorpusDir:     t.TempDir(),
		StagingBucket: "gs://newsdesk-staging-1a2b",
	}
	writeCorpusText(t, cfg.CorpusDir, "ada", "Ada Lovelace.")

	textPath := filepath.Join(cfg.CorpusDir, textDir, "ada.txt")
	exec := &fakeExecutor{
		outputs: map[string]string{
			annotateKey(cfg.CorpusDir, "ada"): sampleAnnotateJSON,
		},
		errs: map[string]error{
			"gsutil cp " + textPath + " gs://newsdesk-staging-1a2b/ada.txt": errors.New("AccessDeniedException: 403"),
		},
	}
	gcloud := cli.NewTool("gcloud", exec)
	gsutil := cli.NewTool("gsutil", exec)

	var buf bytes.Buffer
	result, _, err := AnalyzeArticle(gcloud, gsutil, "ada", cfg, &buf)
	require.NoError(t, err)
	assert.Empty(t, result.StagedObject)
	assert.Contains(t, buf.String(), "warning: staging ada failed")
}

func TestAnalyzeArticleSkipsExisting(t *testing.T) {
	cfg := types.AnalysisConfig{CorpusDir: t.TempDir()}
	writeCorpusText(t, cfg.CorpusDir, "ada", "Ada Lovelace.")

	exec := &fakeExecutor{outputs: map[string]string{
		annotateKey(cfg.CorpusDir, "ada"): sampleAnnotateJSON,
	}}
	gcloud := cli.NewTool("gcloud", exec)

	var buf bytes.Buffer
	_, _, err := AnalyzeArticle(gcloud, nil, "ada", cfg, &buf)
	require.NoError(t, err)

	result, skipped, err := AnalyzeArticle(gcloud, nil, "ada", cfg, &buf)
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Equal(t, "ada", result.ArticleID)
	// Tool invoked only on the first run.
	assert.Len(t, exec.calls, 1)
}

func TestAnalyzeArticleMissingText(t *testing.T) {
	cfg := types.AnalysisConfig{CorpusDir: t.TempDir()}
	gcloud := cli.NewTool("gcloud", &fakeExecutor{})

	var buf bytes.Buffer
	_, _, err := AnalyzeArticle(gcloud, nil, "nope", cfg, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no corpus text")
}

func TestAnalyzeArticleToolFailureMarksMetadata(t *testing.T) {
	cfg := types.AnalysisConfig{CorpusDir: t.TempDir()}
	writeCorpusText(t, cfg.CorpusDir, "ada", "Ada Lovelace.")

	exec := &fakeExecutor{errs: map[string]error{
		annotateKey(cfg.CorpusDir, "ada"): errors.New("exit status 1: API not enabled"),
	}}
	gcloud := cli.NewTool("gcloud", exec)

	var buf bytes.Buffer
	_, _, err := AnalyzeArticle(gcloud, nil, "ada", cfg, &buf)
	require.Error(t, err)

	meta, readErr := os.ReadFile(filepath.Join(cfg.CorpusDir, metadataDir, "ada.yaml"))
	require.NoError(t, readErr)
	var article types.Article
	require.NoError(t, yaml.Unmarshal(meta, &article))
	assert.Equal(t, types.AnalysisFailed, article.AnalysisStatus)
}

func TestAnalyzeBatch(t *testing.T) {
	cfg := types.AnalysisConfig{CorpusDir: t.TempDir()}
	writeCorpusText(t, cfg.CorpusDir, "ada", "Ada Lovelace.")
	writeCorpusText(t, cfg.CorpusDir, "grace", "Grace Hopper.")

	exec := &fakeExecutor{
		outputs: map[string]string{
			annotateKey(cfg.CorpusDir, "ada"): sampleAnnotateJSON,
		},
		errs: map[string]error{
			annotateKey(cfg.CorpusDir, "grace"): errors.New("exit status 1"),
		},
	}
	gcloud := cli.NewTool("gcloud", exec)

	var buf bytes.Buffer
	result := AnalyzeBatch(gcloud, nil, []string{"ada", "grace"}, cfg, &buf)

	assert.Equal(t, 1, result.Analyzed)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())
	assert.Contains(t, buf.String(), "Batch summary: 1 analyzed, 0 skipped, 1 failed (total: 2)")
}

func TestListScraped(t *testing.T) {
	cfg := types.AnalysisConfig{CorpusDir: t.TempDir()}
	writeCorpusText(t, cfg.CorpusDir, "beta", "b")
	writeCorpusText(t, cfg.CorpusDir, "alpha", "a")

	slugs, err := ListScraped(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, slugs)
}

func TestListScrapedNoCorpus(t *testing.T) {
	slugs, err := ListScraped(types.AnalysisConfig{CorpusDir: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)
	assert.Empty(t, slugs)
}
