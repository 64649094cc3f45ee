package database

import (
	"context"
	"testing"

	"github.com/citywill/smart-graph/core/retrieval"
	"github.com/citywill/smart-graph/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore(t *testing.T) {
	_, documentsDbHandler, chunksDbHandler, entitiesDbHandler := initHandlers(t)
	store := NewPostgresStore(chunksDbHandler, entitiesDbHandler)
	ctx := context.Background()

	doc := insertTestDocument(t, documentsDbHandler, "Store Test Document")
	chunk := &model.Chunk{DocumentID: doc.ID, Position: 0, Content: "store test chunk", Embedding: unitEmbedding(2)}
	require.NoError(t, chunksDbHandler.InsertChunk(chunk))

	entity := &model.Entity{Name: "Store Test Entity", Type: model.EntityTypeOther}
	require.NoError(t, entitiesDbHandler.InsertEntity(entity))
	require.NoError(t, entitiesDbHandler.InsertMention(chunk.RID, entity.RID))

	t.Run("EmbeddedChunks returns embedded chunk", func(t *testing.T) {
		nodes, err := store.EmbeddedChunks(ctx)
		require.NoError(t, err)

		var found bool
		for _, node := range nodes {
			if node.RID == chunk.RID {
				found = true
				assert.Len(t, node.Embedding, 384)
			}
		}
		assert.True(t, found, "Expected embedded chunk in result")
	})

	t.Run("ChunkByID resolves content", func(t *testing.T) {
		resolved, err := store.ChunkByID(ctx, chunk.RID)
		require.NoError(t, err)
		assert.Equal(t, "store test chunk", resolved.Content)
	})

	t.Run("ChunkByID maps missing row to ErrNotFound", func(t *testing.T) {
		_, err := store.ChunkByID(ctx, uuid.New())
		assert.ErrorIs(t, err, retrieval.ErrNotFound)
	})

	t.Run("ParentDocument follows the containment edge", func(t *testing.T) {
		parent, err := store.ParentDocument(ctx, chunk.RID)
		require.NoError(t, err)
		assert.Equal(t, doc.RID, parent.RID)
	})

	t.Run("ParentDocument maps missing chunk to ErrNotFound", func(t *testing.T) {
		_, err := store.ParentDocument(ctx, uuid.New())
		assert.ErrorIs(t, err, retrieval.ErrNotFound)
	})

	t.Run("MentionedEntities returns linked entities", func(t *testing.T) {
		entities, err := store.MentionedEntities(ctx, chunk.RID)
		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, entity.RID, entities[0].RID)
	})

	t.Run("Cancelled context aborts immediately", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.EmbeddedChunks(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
