// Package model provides data models for the edge-rag service.
package model

import (
	"time"
)

// RateWindow is the per-key fixed-window counter persisted in the shared
// counter store. Count only increments inside [WindowStart, WindowStart+window);
// outside that range the window resets to {1, now}.
type RateWindow struct {
	Count       int   `json:"count"`
	WindowStart int64 `json:"timestamp"` // unix seconds
}

// Candidate is a single vector search match. Immutable once retrieved.
type Candidate struct {
	ID        string  `json:"id"`
	Namespace string  `json:"namespace"`
	Score     float32 `json:"score"`
	Text      string  `json:"text"`
}

// RankedCandidate is a Candidate scored by the reranker.
type RankedCandidate struct {
	Candidate
	LexicalOverlap int `json:"lexical_overlap"`
}

// CombinedScore is the reranker sort key: similarity plus lexical overlap.
func (r RankedCandidate) CombinedScore() float32 {
	return r.Score + float32(r.LexicalOverlap)
}

// Render returns the source string exposed to callers and embedded into
// the synthesized prompt context.
func (r RankedCandidate) Render() string {
	return "topic: " + r.Namespace + ", content: " + r.Text
}

// PipelineResult is the externally visible output of the answer pipeline.
type PipelineResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// LogEntry is the append-only record of one processed query. Write-once,
// never read back by this service.
type LogEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Query     string          `json:"query"`
	Result    *PipelineResult `json:"result,omitempty"`
}

// VectorItem is one upsert payload for the vector index. Values are
// caller-supplied for bulk ingestion and computed by the embedder for
// single-fact injection.
type VectorItem struct {
	ID        string    `json:"id"`
	Values    []float32 `json:"values"`
	Text      string    `json:"text"`
	Namespace string    `json:"namespace"`
}

// Note is a relational cross-reference row for a vector id, used by the
// simple QA route.
type Note struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Note.
func (Note) TableName() string {
	return "notes"
}
