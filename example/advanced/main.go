package main

import (
	"context"
	"fmt"
	"log"

	smartgraph "github.com/citywill/smart-graph"
	"github.com/citywill/smart-graph/core/pipeline"
	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
)

const historyContent = `Alan Turing worked at Bletchley Park during the war, where the
Bombe machines were built to break the Enigma cipher.

After the war, Turing joined the National Physical Laboratory in London
and designed the ACE, one of the first stored-program computers.

Grace Hopper worked on the Harvard Mark I and later led the team that
created the first compiler at Remington Rand in New York.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	s, err := smartgraph.New(dbConfig, nil)
	if err != nil {
		log.Fatalf("Failed to create smart graph: %v", err)
	}
	defer s.Close()

	// Build a pipeline with local embeddings and NER entity extraction, so
	// retrieval can surface the people and places a chunk mentions.
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	p := pipeline.NewPipeline(pipeline.DefaultChunker(), embedder)

	extractor, err := pipeline.DefaultEntityExtractor()
	if err != nil {
		log.Fatalf("Failed to create entity extractor: %v", err)
	}
	p.SetEntityExtractor(extractor)

	if err := s.SetPipeline(p); err != nil {
		log.Fatalf("Failed to set pipeline: %v", err)
	}

	doc := &model.Document{
		Title:   "Pioneers of Computing",
		Summary: "Turing, Hopper and the first computers.",
		Content: historyContent,
	}

	fmt.Println("Ingesting document with entity extraction...")
	numChunks, err := s.IngestDocument(context.Background(), doc)
	if err != nil {
		log.Fatalf("Failed to ingest document: %v", err)
	}
	fmt.Printf("Inserted %d chunks\n", numChunks)

	// Collapse entity spellings that differ only in case or whitespace.
	merged, err := s.MergeDuplicateEntities()
	if err != nil {
		log.Fatalf("Failed to merge entities: %v", err)
	}
	fmt.Printf("Merged %d duplicate entities\n", merged)

	queryText := "Who broke the Enigma cipher?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	result, err := s.Retrieve(context.Background(), queryText, 2)
	if err != nil {
		log.Fatalf("Failed to retrieve: %v", err)
	}

	for i, evidence := range result.Evidence {
		content := evidence.Content
		if len(content) > 80 {
			content = content[:80] + "..."
		}
		fmt.Printf("%d. [%s/%s] score=%.4f %s\n", i+1, evidence.Kind, evidence.RetrievalMethod, evidence.Score, content)
	}
}
