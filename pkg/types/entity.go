// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Mention is a single occurrence of an entity in the article text.
type Mention struct {
	// Text is the exact span of text that names the entity.
	Text string `json:"text" yaml:"text"`

	// Type is the mention kind reported by the analysis tool
	// ("PROPER" or "COMMON").
	Type string `json:"type" yaml:"type"`

	// BeginOffset is the byte offset of the mention in the analyzed text.
	BeginOffset int `json:"begin_offset" yaml:"begin_offset"`
}

// Entity is one named entity recognized in an article, with all of its
// mentions.
type Entity struct {
	// ID uniquely identifies the entity record within the corpus
	// (article slug plus ordinal, e.g. "my-article-e003").
	ID string `json:"id" yaml:"id"`

	// ArticleID is the slug of the article the entity was found in.
	ArticleID string `json:"article_id" yaml:"article_id"`

	// Name is the canonical entity name.
	Name string `json:"name" yaml:"name"`

	// Type is the entity category reported by the analysis tool
	// (PERSON, LOCATION, ORGANIZATION, EVENT, WORK_OF_ART, CONSUMER_GOOD, OTHER).
	Type string `json:"type" yaml:"type"`

	// Salience is the entity's importance to the document, in [0,1].
	Salience float64 `json:"salience" yaml:"salience"`

	// Mentions lists every occurrence of the entity in source order.
	Mentions []Mention `json:"mentions" yaml:"mentions"`
}

// AnalysisResult is the per-article output of the entity-analysis stage,
// persisted as corpus/entities/[article]-entities.yaml.
type AnalysisResult struct {
	// ArticleID is the slug of the analyzed article.
	ArticleID string `json:"article_id" yaml:"article_id"`

	// Language is the document language detected by the analysis tool.
	Language string `json:"language" yaml:"language"`

	// AnalyzedAt is the time the analysis ran.
	AnalyzedAt time.Time `json:"analyzed_at" yaml:"analyzed_at"`

	// StagedObject is the storage object the text was staged to, when
	// staging was enabled (e.g. "gs://newsdesk-staging-1a2b/my-article.txt").
	StagedObject string `json:"staged_object,omitempty" yaml:"staged_object,omitempty"`

	// Entities lists recognized entities in salience order.
	Entities []Entity `json:"entities" yaml:"entities"`
}

// MentionRow is one line of the flattened entity/mention listing: the
// cross product of entities and their mentions.
type MentionRow struct {
	EntityName  string  `json:"entity_name" yaml:"entity_name"`
	EntityType  string  `json:"entity_type" yaml:"entity_type"`
	Salience    float64 `json:"salience" yaml:"salience"`
	MentionText string  `json:"mention_text" yaml:"mention_text"`
	MentionType string  `json:"mention_type" yaml:"mention_type"`
	BeginOffset int     `json:"begin_offset" yaml:"begin_offset"`
}

// Flatten expands entities into one MentionRow per mention, preserving
// entity order and mention source order.
func Flatten(entities []Entity) []MentionRow {
	var rows []MentionRow
	for _, e := range entities {
		for _, m := range e.Mentions {
			rows = append(rows, MentionRow{
				EntityName:  e.Name,
				EntityType:  e.Type,
				Salience:    e.Salience,
				MentionText: m.Text,
				MentionType: m.Type,
				BeginOffset: m.BeginOffset,
			})
		}
	}
	return rows
}
