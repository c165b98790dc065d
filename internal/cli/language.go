// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

// AnnotateResult holds the decoded output of an analyze-entities run.
// Entity IDs and article linkage are assigned by the analyze stage.
type AnnotateResult struct {
	Language string
	Entities []types.Entity
}

// AnnotateEntities runs the language-analysis subcommand of gcloud against
// a local text file or a gs:// object and decodes the entity JSON.
func AnnotateEntities(t *Tool, contentFile string) (*AnnotateResult, error) {
	out, err := t.Output("ml", "language", "analyze-entities",
		"--content-file="+contentFile, "--format=json")
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", contentFile, err)
	}

	var resp annotateResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("parsing analyze-entities output for %s: %w", contentFile, err)
	}

	result := &AnnotateResult{Language: resp.Language}
	for _, e := range resp.Entities {
		entity := types.Entity{
			Name:     e.Name,
			Type:     e.Type,
			Salience: e.Salience,
		}
		for _, m := range e.Mentions {
			offset, _ := strconv.Atoi(m.Text.BeginOffset.String())
			entity.Mentions = append(entity.Mentions, types.Mention{
				Text:        m.Text.Content,
				Type:        m.Type,
				BeginOffset: offset,
			})
		}
		result.Entities = append(result.Entities, entity)
	}
	return result, nil
}

// analyze-entities JSON structures. beginOffset arrives as a number but
// older tool releases emitted it as a string, hence json.Number.
type annotateResponse struct {
	Entities []annotateEntity `json:"entities"`
	Language string           `json:"language"`
}

type annotateEntity struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Salience float64           `json:"salience"`
	Mentions []annotateMention `json:"mentions"`
}

type annotateMention struct {
	Text annotateSpan `json:"text"`
	Type string       `json:"type"`
}

type annotateSpan struct {
	Content     string      `json:"content"`
	BeginOffset json.Number `json:"beginOffset"`
}
