package pipeline

import (
	"context"

	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
)

// ChunkFunc is a function that splits text into chunk contents. The order
// of the returned slice defines the chunk positions within the document.
type ChunkFunc func(text string) ([]string, error)

// EntityExtractFunc extracts entities from a single chunk of text.
// Returns a list of entities with their types and metadata.
type EntityExtractFunc func(text string) ([]*model.Entity, error)

// Embedder generates a fixed-dimension embedding for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// ProcessedChunk is the per-chunk output of the pipeline: the chunk content
// at its position, its embedding and the entities it mentions.
type ProcessedChunk struct {
	Content   string
	Position  int
	Embedding []float32
	Entities  []*model.Entity
}

// Pipeline combines chunking, embedding and optional entity extraction.
type Pipeline struct {
	Chunker         ChunkFunc
	Embedder        Embedder
	EntityExtractor EntityExtractFunc // Optional
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder Embedder) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// SetEntityExtractor sets the entity extraction function
func (p *Pipeline) SetEntityExtractor(extractor EntityExtractFunc) {
	p.EntityExtractor = extractor
}

// Process splits the text, embeds every chunk and, if an extractor is set,
// attaches the entities each chunk mentions. Positions are contiguous from
// zero in input order. An extraction failure degrades to a chunk without
// entities; chunking and embedding failures abort processing.
func (p *Pipeline) Process(ctx context.Context, text string) ([]*ProcessedChunk, error) {
	contents, err := p.Chunker(text)
	if err != nil {
		return nil, helper.NewError("chunk text", err)
	}

	chunks := make([]*ProcessedChunk, 0, len(contents))
	for position, content := range contents {
		embedding, err := p.Embedder.Embed(ctx, content)
		if err != nil {
			return nil, helper.NewError("embed chunk", err)
		}

		chunk := &ProcessedChunk{
			Content:   content,
			Position:  position,
			Embedding: embedding,
		}

		if p.EntityExtractor != nil {
			entities, err := p.EntityExtractor(content)
			if err == nil {
				chunk.Entities = entities
			}
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}
