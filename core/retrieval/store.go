package retrieval

import (
	"context"

	"github.com/citywill/smart-graph/model"
	"github.com/google/uuid"
)

// EmbeddedNode is the minimal view of a chunk the ranker needs: its
// identity plus the stored embedding.
type EmbeddedNode struct {
	RID       uuid.UUID
	Embedding []float32
}

// RankedHit is a chunk that survived ranking, paired with its similarity
// score against the query vector.
type RankedHit struct {
	RID   uuid.UUID
	Score float64
}

// Store is the graph access surface the retrieval engine runs against.
// Implementations map backend failures to ErrStoreUnavailable and missing
// nodes to ErrNotFound so the engine can apply its retry policy uniformly.
// They must honor cancellation: once ctx is done, every method returns
// ctx.Err() instead of a result.
type Store interface {
	// EmbeddedChunks returns every chunk that carries an embedding.
	EmbeddedChunks(ctx context.Context) ([]*EmbeddedNode, error)
	// ChunkByID resolves a ranked chunk back to its full content.
	ChunkByID(ctx context.Context, rid uuid.UUID) (*model.Chunk, error)
	// ParentDocument returns the document containing the given chunk.
	ParentDocument(ctx context.Context, chunkRID uuid.UUID) (*model.Document, error)
	// MentionedEntities returns the entities the given chunk mentions.
	MentionedEntities(ctx context.Context, chunkRID uuid.UUID) ([]*model.Entity, error)
}

// Embedder turns text into a fixed-dimension vector. Implementations live
// in core/pipeline; retrieval only needs the query side.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
