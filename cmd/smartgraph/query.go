package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	queryLimit int

	queryCmd = &cobra.Command{
		Use:   "query <text>",
		Short: "Retrieve evidence for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}
)

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "number of chunks to rank (0 uses the configured default)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	s, err := newSmartGraph()
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.Retrieve(context.Background(), strings.Join(args, " "), queryLimit)
	if err != nil {
		return err
	}

	if result.Skipped > 0 {
		fmt.Printf("(skipped %d chunks with mismatched embeddings)\n", result.Skipped)
	}
	for _, evidence := range result.Evidence {
		content := evidence.Content
		if len(content) > 120 {
			content = content[:120] + "..."
		}
		fmt.Printf("%.4f  %-8s  %s  %s\n", evidence.Score, evidence.Kind, evidence.RID, content)
	}
	return nil
}
