package main

import (
	"fmt"
	"os"

	smartgraph "github.com/citywill/smart-graph"
	"github.com/citywill/smart-graph/core/pipeline"
	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
	"github.com/spf13/cobra"
)

var (
	embedderKind string
	ollamaURL    string
	openaiModel  string
	dimensions   int
	separator    string
	maxChunkSize int

	rootCmd = &cobra.Command{
		Use:   "smartgraph",
		Short: "SmartGraph: graph-augmented document retrieval",
		Long: `SmartGraph ingests documents into a PostgreSQL property graph of
documents, chunks and entities, and answers queries with vector-ranked
chunks expanded through the graph to their documents and entities.

Database connection is configured through SMART_GRAPH_DB_* environment
variables (a .env file in the working directory is picked up).`,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&embedderKind, "embedder", "hugot", "embedding backend (hugot, ollama, openai)")
	rootCmd.PersistentFlags().StringVar(&ollamaURL, "ollama-url", "http://localhost:11434", "Ollama base URL")
	rootCmd.PersistentFlags().StringVar(&openaiModel, "openai-model", "text-embedding-3-small", "OpenAI embedding model")
	rootCmd.PersistentFlags().IntVar(&dimensions, "dimensions", model.DefaultEmbeddingDimension, "embedding dimension")
	rootCmd.PersistentFlags().StringVar(&separator, "separator", pipeline.DefaultSeparator, "chunk separator")
	rootCmd.PersistentFlags().IntVar(&maxChunkSize, "max-chunk-size", pipeline.DefaultMaxChunkSize, "maximum chunk size in characters")
}

// newEmbedder builds the embedding backend selected by the flags.
func newEmbedder() (pipeline.Embedder, error) {
	switch embedderKind {
	case "hugot":
		return pipeline.DefaultEmbedder()
	case "ollama":
		return pipeline.NewOllamaEmbedder(ollamaURL, os.Getenv("EMBEDDING_MODEL"), dimensions), nil
	case "openai":
		return pipeline.NewOpenAIEmbedder(os.Getenv("OPENAI_API_KEY"), openaiModel, dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedder %q", embedderKind)
	}
}

// newGraphOnly connects to the database without an embedding backend, for
// commands that never embed text.
func newGraphOnly() (*smartgraph.SmartGraph, error) {
	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, err
	}

	config := model.DefaultQueryConfig()
	config.EmbeddingDimension = dimensions

	return smartgraph.New(dbConfig, config)
}

// newSmartGraph connects to the database and wires the pipeline.
func newSmartGraph() (*smartgraph.SmartGraph, error) {
	s, err := newGraphOnly()
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder()
	if err != nil {
		s.Close()
		return nil, err
	}

	err = s.SetPipeline(pipeline.NewPipeline(pipeline.SeparatorChunker(separator, maxChunkSize), embedder))
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}
