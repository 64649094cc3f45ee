package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Document represents a source document node in the knowledge graph.
// Embedding is the vector of the document summary; a nil embedding means the
// document has not been embedded yet.
type Document struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Size      int64     `json:"size"`
	Content   string    `json:"content,omitempty" db:"-"` // Temporary field for ingestion, not stored in DB
	Embedding []float32 `json:"embedding,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDocumentFromFile reads a file and creates a Document with the file content.
// The title defaults to the filename and the size to the content length in bytes.
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	title := filepath.Base(filePath)

	return &Document{
		Title:    title,
		Size:     int64(len(content)),
		Content:  string(content),
		Metadata: metadata,
	}, nil
}
