package pipeline

import (
	"context"
	"fmt"

	"github.com/citywill/smart-graph/helper"
	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// HugotEmbedder embeds text with a local ONNX sentence transformer model.
type HugotEmbedder struct {
	session    *hugot.Session
	pipeline   *pipelines.FeatureExtractionPipeline
	dimensions int
}

// DefaultEmbedder creates an embedder using a real sentence transformer model.
// Uses the all-MiniLM-L6-v2 model which produces 384-dimensional embeddings.
func DefaultEmbedder() (*HugotEmbedder, error) {
	return NewHugotEmbedder("sentence-transformers/all-MiniLM-L6-v2", 384)
}

// NewHugotEmbedder downloads the model if needed and prepares a feature
// extraction pipeline for it.
func NewHugotEmbedder(modelName string, dimensions int) (*HugotEmbedder, error) {
	modelPath, err := helper.PrepareModel(modelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return &HugotEmbedder{
		session:    session,
		pipeline:   sentencePipeline,
		dimensions: dimensions,
	}, nil
}

// Embed generates the embedding for the text.
func (e *HugotEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := e.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding generated")
	}

	return result.Embeddings[0], nil
}

// Dimensions returns the embedding dimension of the model.
func (e *HugotEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the hugot session.
func (e *HugotEmbedder) Close() error {
	return e.session.Destroy()
}
