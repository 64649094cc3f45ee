package database

import (
	"testing"
	"time"

	"github.com/citywill/smart-graph/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitEmbedding returns a 384-dimension vector pointing along one axis, so
// cosine similarities between test vectors are exact.
func unitEmbedding(axis int) []float32 {
	embedding := make([]float32, 384)
	embedding[axis] = 1.0
	return embedding
}

func insertTestDocument(t *testing.T, handler *DocumentsDBHandler, title string) *model.Document {
	doc := &model.Document{
		Title:   title,
		Summary: "summary of " + title,
	}
	err := handler.InsertDocument(doc)
	require.NoError(t, err, "Expected Insert document to not return an error")
	return doc
}

func TestChunksNewChunksDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewChunksDBHandler", func(t *testing.T) {
		// Documents handler first so the foreign key target exists.
		_, err := NewDocumentsDBHandler(database, 384, true)
		require.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")

		chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
		assert.NoError(t, err, "Expected NewChunksDBHandler to not return an error")
		require.NotNil(t, chunksDbHandler, "Expected NewChunksDBHandler to return a non-nil instance")
		require.NotNil(t, chunksDbHandler.db, "Expected NewChunksDBHandler to have a non-nil database instance")
	})

	t.Run("Invalid call NewChunksDBHandler with nil database", func(t *testing.T) {
		_, err := NewChunksDBHandler(nil, 384, false)
		assert.Error(t, err, "Expected error when creating ChunksDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestChunksInsert(t *testing.T) {
	_, documentsDbHandler, chunksDbHandler, _ := initHandlers(t)

	doc := insertTestDocument(t, documentsDbHandler, "Chunk Insert Test Document")

	t.Run("Insert chunk without embedding", func(t *testing.T) {
		chunk := &model.Chunk{
			DocumentID: doc.ID,
			Position:   0,
			Content:    "This is a test chunk",
		}

		err := chunksDbHandler.InsertChunk(chunk)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.NotEmpty(t, chunk.ID, "Expected inserted chunk to have an ID")
		assert.Equal(t, doc.RID, chunk.DocumentRID, "Expected chunk to carry the document RID")
		assert.WithinDuration(t, chunk.CreatedAt, time.Now(), 2*time.Second, "Expected CreatedAt to be set")
	})

	t.Run("Insert chunk with embedding", func(t *testing.T) {
		chunk := &model.Chunk{
			DocumentID: doc.ID,
			Position:   1,
			Content:    "This is another test chunk",
			Embedding:  unitEmbedding(0),
		}

		err := chunksDbHandler.InsertChunk(chunk)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.Len(t, chunk.Embedding, 384, "Expected embedding to round-trip")
	})

	t.Run("Duplicate position in same document is rejected", func(t *testing.T) {
		chunk := &model.Chunk{
			DocumentID: doc.ID,
			Position:   0,
			Content:    "Collides with the first chunk",
		}

		err := chunksDbHandler.InsertChunk(chunk)
		assert.Error(t, err, "Expected Insert with duplicate position to return an error")
	})
}

func TestChunksSelect(t *testing.T) {
	_, documentsDbHandler, chunksDbHandler, _ := initHandlers(t)

	doc := insertTestDocument(t, documentsDbHandler, "Chunk Select Test Document")

	first := &model.Chunk{DocumentID: doc.ID, Position: 0, Content: "first part", Embedding: unitEmbedding(0)}
	second := &model.Chunk{DocumentID: doc.ID, Position: 1, Content: "second part"}
	require.NoError(t, chunksDbHandler.InsertChunk(first))
	require.NoError(t, chunksDbHandler.InsertChunk(second))

	t.Run("Select chunk by RID", func(t *testing.T) {
		selected, err := chunksDbHandler.SelectChunk(first.RID)
		require.NoError(t, err, "Expected Select to not return an error")
		assert.Equal(t, first.Content, selected.Content)
		assert.Equal(t, doc.RID, selected.DocumentRID)
	})

	t.Run("Select chunk with unknown RID", func(t *testing.T) {
		_, err := chunksDbHandler.SelectChunk(uuid.New())
		assert.Error(t, err, "Expected Select with unknown RID to return an error")
	})

	t.Run("Select chunks by document ordered by position", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksByDocument(doc.RID)
		require.NoError(t, err, "Expected SelectChunksByDocument to not return an error")
		require.Len(t, chunks, 2)
		assert.Equal(t, 0, chunks[0].Position)
		assert.Equal(t, 1, chunks[1].Position)
	})

	t.Run("Select embedded chunks skips null embeddings", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectEmbeddedChunks()
		require.NoError(t, err, "Expected SelectEmbeddedChunks to not return an error")

		rids := make(map[uuid.UUID]bool)
		for _, chunk := range chunks {
			require.NotEmpty(t, chunk.Embedding, "Expected every returned chunk to carry an embedding")
			rids[chunk.RID] = true
		}
		assert.True(t, rids[first.RID], "Expected embedded chunk to be returned")
		assert.False(t, rids[second.RID], "Expected chunk without embedding to be filtered out")
	})

	t.Run("Select parent document", func(t *testing.T) {
		parent, err := chunksDbHandler.SelectParentDocument(first.RID)
		require.NoError(t, err, "Expected SelectParentDocument to not return an error")
		assert.Equal(t, doc.RID, parent.RID)
		assert.Equal(t, doc.Title, parent.Title)
	})
}

func TestChunksSelectBySimilarity(t *testing.T) {
	_, documentsDbHandler, chunksDbHandler, _ := initHandlers(t)

	doc := insertTestDocument(t, documentsDbHandler, "Chunk Similarity Test Document")

	near := &model.Chunk{DocumentID: doc.ID, Position: 0, Content: "near", Embedding: unitEmbedding(0)}
	far := &model.Chunk{DocumentID: doc.ID, Position: 1, Content: "far", Embedding: unitEmbedding(1)}
	require.NoError(t, chunksDbHandler.InsertChunk(near))
	require.NoError(t, chunksDbHandler.InsertChunk(far))

	t.Run("Nearest chunk ranks first", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksBySimilarity(unitEmbedding(0), 1000)
		require.NoError(t, err, "Expected SelectChunksBySimilarity to not return an error")
		require.NotEmpty(t, chunks)

		assert.Equal(t, near.RID, chunks[0].RID, "Expected identical embedding to rank first")
		assert.InDelta(t, 1.0, chunks[0].Similarity, 1e-6)
	})

	t.Run("Limit caps the result", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksBySimilarity(unitEmbedding(0), 1)
		require.NoError(t, err, "Expected SelectChunksBySimilarity to not return an error")
		assert.Len(t, chunks, 1)
	})
}

func TestChunksDelete(t *testing.T) {
	_, documentsDbHandler, chunksDbHandler, _ := initHandlers(t)

	doc := insertTestDocument(t, documentsDbHandler, "Chunk Delete Test Document")

	chunk := &model.Chunk{DocumentID: doc.ID, Position: 0, Content: "doomed"}
	require.NoError(t, chunksDbHandler.InsertChunk(chunk))

	t.Run("Delete existing chunk", func(t *testing.T) {
		err := chunksDbHandler.DeleteChunk(chunk.RID)
		assert.NoError(t, err, "Expected Delete to not return an error")

		_, err = chunksDbHandler.SelectChunk(chunk.RID)
		assert.Error(t, err, "Expected Select after delete to return an error")
	})

	t.Run("Deleting the document cascades to its chunks", func(t *testing.T) {
		chunk := &model.Chunk{DocumentID: doc.ID, Position: 1, Content: "cascaded"}
		require.NoError(t, chunksDbHandler.InsertChunk(chunk))

		err := documentsDbHandler.DeleteDocument(doc.RID)
		require.NoError(t, err, "Expected Delete document to not return an error")

		_, err = chunksDbHandler.SelectChunk(chunk.RID)
		assert.Error(t, err, "Expected chunk to be deleted with its document")
	})
}
