package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	listFilter string
	listLimit  int

	docsCmd = &cobra.Command{
		Use:   "docs",
		Short: "Manage documents in the graph",
	}

	docsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List documents",
		RunE:  runDocsList,
	}

	docsShowCmd = &cobra.Command{
		Use:   "show <rid>",
		Short: "Show a document's content reassembled from its chunks",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocsShow,
	}

	docsDeleteCmd = &cobra.Command{
		Use:   "delete <rid>",
		Short: "Delete a document and its chunks",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocsDelete,
	}
)

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsDeleteCmd)

	docsListCmd.Flags().StringVar(&listFilter, "filter", "", "title substring filter")
	docsListCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum number of documents")
}

func runDocsList(cmd *cobra.Command, args []string) error {
	s, err := newGraphOnly()
	if err != nil {
		return err
	}
	defer s.Close()

	docs, err := s.ListDocuments(listFilter, listLimit)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		fmt.Printf("%s  %s  (%d bytes)\n", doc.RID, doc.Title, doc.Size)
	}
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	rid, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid document RID: %w", err)
	}

	s, err := newGraphOnly()
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.GetDocument(rid)
	if err != nil {
		return err
	}
	content, err := s.DocumentContent(rid)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n%s\n", doc.Title, content)
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	rid, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid document RID: %w", err)
	}

	s, err := newGraphOnly()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteDocument(rid); err != nil {
		return err
	}

	fmt.Printf("Deleted document %s\n", rid)
	return nil
}
