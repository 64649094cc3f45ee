package smartgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/citywill/smart-graph/core/pipeline"
	"github.com/citywill/smart-graph/core/retrieval"
	"github.com/citywill/smart-graph/database"
	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
	loadSql "github.com/citywill/smart-graph/sql"
	"github.com/google/uuid"
)

// SmartGraph provides a unified interface to the document graph: ingestion
// through the pipeline, graph-augmented retrieval and document management.
type SmartGraph struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Chunks    *database.ChunksDBHandler
	Entities  *database.EntitiesDBHandler
	Store     *database.PostgresStore
	Pipeline  *pipeline.Pipeline // Optional ingestion pipeline
	Engine    *retrieval.Engine  // Built when a pipeline with embedder is set
	config    *model.QueryConfig
	// Logging
	log *slog.Logger
}

// New creates a SmartGraph instance with all handlers initialized. A nil
// config falls back to DefaultQueryConfig.
func New(dbConfig *helper.DatabaseConfiguration, config *model.QueryConfig) (*SmartGraph, error) {
	if config == nil {
		config = model.DefaultQueryConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("validate query config", err)
	}

	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("smart-graph", dbConfig, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (documents first, then
	// chunks, then entities with the mentions table).
	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, config.EmbeddingDimension, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, config.EmbeddingDimension, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	entities, err := database.NewEntitiesDBHandler(db, config.EmbeddingDimension, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	return &SmartGraph{
		DB:        db,
		Documents: documents,
		Chunks:    chunks,
		Entities:  entities,
		Store:     database.NewPostgresStore(chunks, entities),
		config:    config,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (s *SmartGraph) Close() error {
	if s.DB != nil && s.DB.Instance != nil {
		return s.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the ingestion pipeline and rebuilds the retrieval
// engine around its embedder.
func (s *SmartGraph) SetPipeline(p *pipeline.Pipeline) error {
	if p == nil || p.Embedder == nil {
		return helper.NewError("set pipeline", fmt.Errorf("pipeline with embedder required"))
	}
	if p.Embedder.Dimensions() != s.config.EmbeddingDimension {
		return helper.NewError("set pipeline", fmt.Errorf("embedder produces %d dimensions, graph is configured for %d", p.Embedder.Dimensions(), s.config.EmbeddingDimension))
	}

	engine, err := retrieval.NewEngine(s.Store, p.Embedder, s.config, s.log)
	if err != nil {
		return err
	}

	s.Pipeline = p
	s.Engine = engine
	return nil
}

// UseDefaultPipeline sets up the default separator chunking and embedding
// pipeline. This uses the blank-line chunker with 500 char max chunks and
// DefaultEmbedder with the all-MiniLM-L6-v2 model (384 dimensions).
func (s *SmartGraph) UseDefaultPipeline() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	return s.SetPipeline(pipeline.NewPipeline(pipeline.DefaultChunker(), embedder))
}

// IngestDocument processes a document by:
// 1. Embedding the summary and inserting the document metadata (without content)
// 2. Splitting the content into chunks with contiguous positions
// 3. Inserting all chunks with their embeddings
// 4. Inserting extracted entities and their mention links
// The document's Content field is used for processing but not stored in the
// database; use DocumentContent to reassemble it from the chunks.
// Returns the number of chunks inserted and any error encountered.
func (s *SmartGraph) IngestDocument(ctx context.Context, doc *model.Document) (int, error) {
	if s.Pipeline == nil {
		return 0, helper.NewError("ingest document", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	if doc.Content == "" {
		return 0, helper.NewError("ingest document", fmt.Errorf("document content is empty"))
	}

	// Store content temporarily and clear it before DB insert
	content := doc.Content
	doc.Content = ""
	doc.Size = int64(len(content))

	if len(doc.Embedding) == 0 && doc.Summary != "" {
		embedding, err := s.Pipeline.Embedder.Embed(ctx, doc.Summary)
		if err != nil {
			return 0, helper.NewError("embed summary", err)
		}
		doc.Embedding = embedding
	}

	// Insert document metadata
	if err := s.Documents.InsertDocument(doc); err != nil {
		return 0, helper.NewError("insert document", err)
	}

	s.log.Info("Inserted document", slog.String("document_id", doc.RID.String()), slog.String("title", doc.Title))

	// Process content into chunks
	processed, err := s.Pipeline.Process(ctx, content)
	if err != nil {
		return 0, helper.NewError("process chunks", err)
	}

	s.log.Info("Processed document into chunks", slog.Int("num_chunks", len(processed)), slog.String("document_id", doc.RID.String()))

	// Insert all chunks with their entity mentions
	for i, processedChunk := range processed {
		chunk := &model.Chunk{
			DocumentID: doc.ID,
			Position:   processedChunk.Position,
			Content:    processedChunk.Content,
			Embedding:  processedChunk.Embedding,
		}
		if err := s.Chunks.InsertChunk(chunk); err != nil {
			return i, helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}

		if err := s.insertMentions(ctx, chunk, processedChunk.Entities); err != nil {
			return i, err
		}
	}

	return len(processed), nil
}

// insertMentions stores the chunk's entities and links them. Entities are
// shared across documents, so an already known name and type pair resolves
// to the existing row.
func (s *SmartGraph) insertMentions(ctx context.Context, chunk *model.Chunk, entities []*model.Entity) error {
	for _, entity := range entities {
		if len(entity.Embedding) == 0 {
			embedding, err := s.Pipeline.Embedder.Embed(ctx, entity.Name)
			if err != nil {
				s.log.Warn("Could not embed entity name, storing without embedding", slog.String("entity", entity.Name), slog.String("error", err.Error()))
			} else {
				entity.Embedding = embedding
			}
		}

		if err := s.Entities.InsertEntity(entity); err != nil {
			return helper.NewError("insert entity", err)
		}
		if err := s.Entities.InsertMention(chunk.RID, entity.RID); err != nil {
			return helper.NewError("insert mention", err)
		}
	}
	return nil
}

// Retrieve answers a query against the graph: ranked chunks plus their
// parent documents and mentioned entities, deduplicated and ordered by
// relevance. A non-positive limit falls back to the configured TopK.
func (s *SmartGraph) Retrieve(ctx context.Context, query string, limit int) (*retrieval.Result, error) {
	if s.Engine == nil {
		return nil, helper.NewError("retrieve", fmt.Errorf("retrieval engine not initialized, use SetPipeline() first"))
	}
	if limit <= 0 {
		limit = s.config.TopK
	}

	return s.Engine.Retrieve(ctx, query, limit)
}

// GetDocument retrieves a document by RID
func (s *SmartGraph) GetDocument(rid uuid.UUID) (*model.Document, error) {
	return s.Documents.SelectDocument(rid)
}

// ListDocuments lists documents, optionally filtered by a title substring.
func (s *SmartGraph) ListDocuments(titleFilter string, limit int) ([]*model.Document, error) {
	return s.Documents.SelectAllDocuments(titleFilter, limit)
}

// DocumentChunks retrieves all chunks of a document ordered by position
func (s *SmartGraph) DocumentChunks(rid uuid.UUID) ([]*model.Chunk, error) {
	return s.Chunks.SelectChunksByDocument(rid)
}

// DocumentContent reassembles the full document text from its chunks in
// position order.
func (s *SmartGraph) DocumentContent(rid uuid.UUID) (string, error) {
	chunks, err := s.Chunks.SelectChunksByDocument(rid)
	if err != nil {
		return "", err
	}

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}
	return strings.Join(contents, "\n\n"), nil
}

// DeleteDocument deletes a document. Its chunks and their mention links are
// removed by cascade; entities survive since they may be shared.
func (s *SmartGraph) DeleteDocument(rid uuid.UUID) error {
	return s.Documents.DeleteDocument(rid)
}

// MergeDuplicateEntities collapses entities whose names differ only in case
// or surrounding whitespace. Returns the number of entities removed.
func (s *SmartGraph) MergeDuplicateEntities() (int, error) {
	merged, err := s.Entities.MergeDuplicateEntities()
	if err != nil {
		return 0, err
	}
	if merged > 0 {
		s.log.Info("Merged duplicate entities", slog.Int("merged", merged))
	}
	return merged, nil
}
