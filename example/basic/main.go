package main

import (
	"context"
	"fmt"
	"log"

	smartgraph "github.com/citywill/smart-graph"
	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
)

const sampleContent = `This is a sample document about graph databases.

Graph databases are designed to store and query data with complex relationships.
They use nodes to represent entities and edges to represent relationships between them.

PostgreSQL with the pgvector extension can be used to build powerful graph-based systems.
It enables vector similarity search directly inside the relational store.

Combining vector ranking with graph expansion allows retrieval that leverages both
semantic similarity and document structure.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
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

	// Set up the default pipeline (separator chunking + local embeddings)
	if err := s.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	doc := &model.Document{
		Title:   "Introduction to Graph Databases",
		Summary: "How graph databases combine structure and similarity search.",
		Content: sampleContent,
		Metadata: model.Metadata{
			"author": "Example Author",
			"topic":  "graph databases",
		},
	}

	fmt.Println("Ingesting document...")
	numChunks, err := s.IngestDocument(context.Background(), doc)
	if err != nil {
		log.Fatalf("Failed to ingest document: %v", err)
	}
	fmt.Printf("Document inserted with ID: %s\n", doc.RID)
	fmt.Printf("Inserted %d chunks\n", numChunks)

	queryText := "What are graph databases?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	result, err := s.Retrieve(context.Background(), queryText, 3)
	if err != nil {
		log.Fatalf("Failed to retrieve: %v", err)
	}

	for i, evidence := range result.Evidence {
		content := evidence.Content
		if len(content) > 80 {
			content = content[:80] + "..."
		}
		fmt.Printf("%d. [%s] score=%.4f %s\n", i+1, evidence.Kind, evidence.Score, content)
	}
}
