package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
	loadSql "github.com/citywill/smart-graph/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.Chunk) error
	DeleteChunk(rid uuid.UUID) error
	SelectChunk(rid uuid.UUID) (*model.Chunk, error)
	SelectChunksByDocument(documentRID uuid.UUID) ([]*model.Chunk, error)
	SelectEmbeddedChunks() ([]*model.Chunk, error)
	SelectChunksBySimilarity(embedding []float32, limit int) ([]*model.Chunk, error)
	SelectParentDocument(chunkRID uuid.UUID) (*model.Document, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It loads the chunk-related SQL functions and creates the table. The
// embedding dimension is fixed per graph; the vector column rejects writes
// of any other dimension.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table if it does not exist yet, together
// with its indexes (including the HNSW cosine index on embeddings).
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("initialize chunks table", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk) error {
	var embedding interface{}
	if len(chunk.Embedding) > 0 {
		embedding = pq.Array(chunk.Embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_chunk($1, $2, $3, $4)`,
		chunk.DocumentID,
		chunk.Position,
		chunk.Content,
		embedding,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.DocumentID,
		&chunk.DocumentRID,
		&chunk.Position,
		&chunk.Content,
		pq.Array(&chunk.Embedding),
		&chunk.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteChunk deletes a chunk by RID
func (h *ChunksDBHandler) DeleteChunk(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_chunk($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectChunk retrieves a chunk by RID
func (h *ChunksDBHandler) SelectChunk(rid uuid.UUID) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		rid,
	)

	chunk := &model.Chunk{}
	err := row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.DocumentID,
		&chunk.DocumentRID,
		&chunk.Position,
		&chunk.Content,
		pq.Array(&chunk.Embedding),
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByDocument retrieves all chunks for a document ordered by position
func (h *ChunksDBHandler) SelectChunksByDocument(documentRID uuid.UUID) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_document($1)`,
		documentRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.RID,
			&chunk.DocumentID,
			&chunk.DocumentRID,
			&chunk.Position,
			&chunk.Content,
			pq.Array(&chunk.Embedding),
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// SelectEmbeddedChunks retrieves the RID and embedding of every chunk that
// carries a non-null embedding. Ordering is unspecified.
func (h *ChunksDBHandler) SelectEmbeddedChunks() ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_embedded_chunks()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.RID,
			pq.Array(&chunk.Embedding),
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// SelectChunksBySimilarity runs the store-side ranked scan: chunks with
// non-null embedding ordered by cosine similarity to the query vector.
func (h *ChunksDBHandler) SelectChunksBySimilarity(embedding []float32, limit int) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2)`,
		pgvector.NewVector(embedding),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.RID,
			&chunk.DocumentID,
			&chunk.DocumentRID,
			&chunk.Position,
			&chunk.Content,
			pq.Array(&chunk.Embedding),
			&chunk.CreatedAt,
			&chunk.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// SelectParentDocument retrieves the document owning a chunk (one-hop
// CONTAINS traversal in reverse).
func (h *ChunksDBHandler) SelectParentDocument(chunkRID uuid.UUID) (*model.Document, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_parent_document($1)`,
		chunkRID,
	)

	doc := &model.Document{}
	err := row.Scan(
		&doc.ID,
		&doc.RID,
		&doc.Title,
		&doc.Summary,
		&doc.Size,
		pq.Array(&doc.Embedding),
		&doc.Metadata,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}
