package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/citywill/smart-graph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEmbedder struct {
	vector []float32
	err    error
}

func (s *staticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func (s *staticEmbedder) Dimensions() int {
	return len(s.vector)
}

func TestPipelineProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("Chunks get contiguous positions and embeddings", func(t *testing.T) {
		pipeline := NewPipeline(SeparatorChunker("\n\n", 500), &staticEmbedder{vector: []float32{1, 2, 3}})

		chunks, err := pipeline.Process(ctx, "first\n\nsecond\n\nthird")

		require.NoError(t, err)
		require.Len(t, chunks, 3)
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.Position)
			assert.Equal(t, []float32{1, 2, 3}, chunk.Embedding)
			assert.Empty(t, chunk.Entities)
		}
	})

	t.Run("Entity extractor attaches entities per chunk", func(t *testing.T) {
		pipeline := NewPipeline(SeparatorChunker("\n\n", 500), &staticEmbedder{vector: []float32{1}})
		pipeline.SetEntityExtractor(func(text string) ([]*model.Entity, error) {
			return []*model.Entity{{Name: text, Type: model.EntityTypeOther}}, nil
		})

		chunks, err := pipeline.Process(ctx, "alpha\n\nbeta")

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		require.Len(t, chunks[0].Entities, 1)
		assert.Equal(t, "alpha", chunks[0].Entities[0].Name)
		require.Len(t, chunks[1].Entities, 1)
		assert.Equal(t, "beta", chunks[1].Entities[0].Name)
	})

	t.Run("Extraction failure degrades to chunk without entities", func(t *testing.T) {
		pipeline := NewPipeline(SeparatorChunker("\n\n", 500), &staticEmbedder{vector: []float32{1}})
		pipeline.SetEntityExtractor(func(text string) ([]*model.Entity, error) {
			return nil, errors.New("extractor offline")
		})

		chunks, err := pipeline.Process(ctx, "some text")

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Empty(t, chunks[0].Entities)
	})

	t.Run("Embedding failure aborts processing", func(t *testing.T) {
		pipeline := NewPipeline(SeparatorChunker("\n\n", 500), &staticEmbedder{err: errors.New("model offline")})

		_, err := pipeline.Process(ctx, "some text")

		assert.Error(t, err)
	})

	t.Run("Chunking failure aborts processing", func(t *testing.T) {
		pipeline := NewPipeline(SeparatorChunker("\n\n", -1), &staticEmbedder{vector: []float32{1}})

		_, err := pipeline.Process(ctx, "some text")

		assert.Error(t, err)
	})
}

func TestParseLLMEntities(t *testing.T) {
	t.Run("Parses plain JSON array", func(t *testing.T) {
		entities, err := parseLLMEntities(`[{"name": "IBM", "type": "company"}]`)

		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "IBM", entities[0].Name)
		assert.Equal(t, "company", entities[0].Type)
	})

	t.Run("Parses array wrapped in prose and fences", func(t *testing.T) {
		response := "Here are the entities:\n```json\n[{\"name\": \"Paris\", \"type\": \"location\"}]\n```\n"

		entities, err := parseLLMEntities(response)

		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "Paris", entities[0].Name)
	})

	t.Run("Missing array is an error", func(t *testing.T) {
		_, err := parseLLMEntities("no entities found")

		assert.Error(t, err)
	})
}

func TestNerEntityType(t *testing.T) {
	assert.Equal(t, model.EntityTypePerson, nerEntityType("B-PER"))
	assert.Equal(t, model.EntityTypePerson, nerEntityType("I-PER"))
	assert.Equal(t, model.EntityTypeOrganization, nerEntityType("B-ORG"))
	assert.Equal(t, model.EntityTypeLocation, nerEntityType("I-LOC"))
	assert.Equal(t, model.EntityTypeOther, nerEntityType("B-MISC"))
}
