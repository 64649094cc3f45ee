package model

import (
	"fmt"
	"time"
)

// DefaultEmbeddingDimension matches the all-MiniLM-L6-v2 default model.
const DefaultEmbeddingDimension = 384

// QueryConfig represents configuration for the retrieval pipeline.
type QueryConfig struct {
	// TopK is the number of chunks requested from the similarity ranking.
	TopK int `json:"top_k"`
	// EmbeddingDimension is the dimension of the single embedding model used
	// for the whole graph. Query embeddings of any other dimension are rejected.
	EmbeddingDimension int `json:"embedding_dimension"`
	// DecayFactor in (0,1] scales the score of structurally expanded evidence
	// (parent document, mentioned entities) relative to the originating chunk.
	DecayFactor float64 `json:"decay_factor"`
	// StoreTimeout bounds each graph store call.
	StoreTimeout time.Duration `json:"store_timeout"`
	// MaxParallelFetches bounds concurrent store fetches during expansion.
	MaxParallelFetches int `json:"max_parallel_fetches"`
	// RetryBackoff is the wait before the single retry on a store outage.
	RetryBackoff time.Duration `json:"retry_backoff"`
}

// DefaultQueryConfig returns a sensible default configuration.
func DefaultQueryConfig() *QueryConfig {
	return &QueryConfig{
		TopK:               5,
		EmbeddingDimension: DefaultEmbeddingDimension,
		DecayFactor:        0.6,
		StoreTimeout:       10 * time.Second,
		MaxParallelFetches: 4,
		RetryBackoff:       200 * time.Millisecond,
	}
}

// Validate checks the configuration invariants.
func (c *QueryConfig) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("embedding_dimension must be positive, got %d", c.EmbeddingDimension)
	}
	if c.DecayFactor <= 0 || c.DecayFactor > 1 {
		return fmt.Errorf("decay_factor must be in (0,1], got %v", c.DecayFactor)
	}
	if c.MaxParallelFetches <= 0 {
		return fmt.Errorf("max_parallel_fetches must be positive, got %d", c.MaxParallelFetches)
	}
	return nil
}
