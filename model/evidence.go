package model

import "github.com/google/uuid"

// NodeKind identifies which label an evidence item was drawn from.
type NodeKind string

const (
	NodeKindDocument NodeKind = "document"
	NodeKindChunk    NodeKind = "chunk"
	NodeKindEntity   NodeKind = "entity"
)

type RetrievalMethod string

const (
	// RetrievalMethodVector marks evidence found directly by similarity search.
	RetrievalMethodVector RetrievalMethod = "vector"
	// RetrievalMethodStructural marks evidence pulled in by graph expansion.
	RetrievalMethodStructural RetrievalMethod = "structural"
)

// Evidence is a single node returned by retrieval, carrying a relevance score.
// Content holds the chunk content, the entity name, or the document summary
// (title when no summary is stored).
type Evidence struct {
	Kind            NodeKind        `json:"kind"`
	RID             uuid.UUID       `json:"rid"`
	Content         string          `json:"content"`
	Score           float64         `json:"score"`
	RetrievalMethod RetrievalMethod `json:"retrieval_method"`
}
