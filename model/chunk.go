package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk represents a bounded span of text extracted from a document,
// individually embedded for similarity search. Position is the 0-based
// ordinal of the chunk within its owning document; positions are contiguous
// and unique per document.
type Chunk struct {
	ID          int64     `json:"id"`
	RID         uuid.UUID `json:"rid"`
	DocumentID  int64     `json:"document_id"`
	DocumentRID uuid.UUID `json:"document_rid"`
	Position    int       `json:"position"`
	Content     string    `json:"content"`
	Embedding   []float32 `json:"embedding,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Result field, only populated by the store-side ranked scan
	Similarity float64 `json:"similarity,omitempty"`
}
