package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/citywill/smart-graph/core/retrieval"
	"github.com/citywill/smart-graph/model"
	"github.com/google/uuid"
)

// PostgresStore adapts the per-table handlers to the retrieval.Store
// interface. Row-not-found becomes retrieval.ErrNotFound; every other
// database error is reported as retrieval.ErrStoreUnavailable so the
// engine's retry policy applies.
type PostgresStore struct {
	chunks   *ChunksDBHandler
	entities *EntitiesDBHandler
}

// NewPostgresStore creates a store over existing handlers.
func NewPostgresStore(chunks *ChunksDBHandler, entities *EntitiesDBHandler) *PostgresStore {
	return &PostgresStore{
		chunks:   chunks,
		entities: entities,
	}
}

// EmbeddedChunks returns the RID and embedding of every embedded chunk.
func (s *PostgresStore) EmbeddedChunks(ctx context.Context) ([]*retrieval.EmbeddedNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks, err := s.chunks.SelectEmbeddedChunks()
	if err != nil {
		return nil, mapStoreError(err)
	}

	nodes := make([]*retrieval.EmbeddedNode, len(chunks))
	for i, chunk := range chunks {
		nodes[i] = &retrieval.EmbeddedNode{
			RID:       chunk.RID,
			Embedding: chunk.Embedding,
		}
	}
	return nodes, nil
}

// ChunkByID resolves a chunk by RID.
func (s *PostgresStore) ChunkByID(ctx context.Context, rid uuid.UUID) (*model.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunk, err := s.chunks.SelectChunk(rid)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return chunk, nil
}

// ParentDocument returns the document containing the given chunk.
func (s *PostgresStore) ParentDocument(ctx context.Context, chunkRID uuid.UUID) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	document, err := s.chunks.SelectParentDocument(chunkRID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return document, nil
}

// MentionedEntities returns the entities mentioned by the given chunk.
func (s *PostgresStore) MentionedEntities(ctx context.Context, chunkRID uuid.UUID) ([]*model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entities, err := s.entities.SelectEntitiesForChunk(chunkRID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return entities, nil
}

func mapStoreError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return retrieval.ErrNotFound
	}
	return fmt.Errorf("%w: %v", retrieval.ErrStoreUnavailable, err)
}
