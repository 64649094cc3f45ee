package pipeline

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder embeds text through the OpenAI embeddings API or any
// compatible endpoint.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIEmbedder creates an embedder using the given API key and model,
// e.g. "text-embedding-3-small" with 1536 dimensions.
func NewOpenAIEmbedder(apiKey string, model string, dimensions int) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
	}
}

// NewOpenAIEmbedderWithBaseURL creates an embedder against an
// OpenAI-compatible endpoint such as a local vLLM or LiteLLM server.
func NewOpenAIEmbedderWithBaseURL(apiKey string, baseURL string, model string, dimensions int) *OpenAIEmbedder {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(config),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
	}
}

// Embed generates the embedding for the text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	response, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      e.model,
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call openai embeddings: %w", err)
	}

	if len(response.Data) == 0 {
		return nil, fmt.Errorf("no embedding generated")
	}

	return response.Data[0].Embedding, nil
}

// Dimensions returns the embedding dimension of the model.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}
