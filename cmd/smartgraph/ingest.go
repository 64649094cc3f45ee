package main

import (
	"context"
	"fmt"

	"github.com/citywill/smart-graph/model"
	"github.com/spf13/cobra"
)

var (
	ingestTitle   string
	ingestSummary string

	ingestCmd = &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a text or markdown file into the graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (defaults to the file name)")
	ingestCmd.Flags().StringVar(&ingestSummary, "summary", "", "document summary")
}

func runIngest(cmd *cobra.Command, args []string) error {
	s, err := newSmartGraph()
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := model.NewDocumentFromFile(args[0], nil)
	if err != nil {
		return err
	}
	if ingestTitle != "" {
		doc.Title = ingestTitle
	}
	doc.Summary = ingestSummary

	numChunks, err := s.IngestDocument(context.Background(), doc)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %q as %s (%d chunks)\n", doc.Title, doc.RID, numChunks)
	return nil
}
