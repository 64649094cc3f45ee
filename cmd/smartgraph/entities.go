package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	entitiesCmd = &cobra.Command{
		Use:   "entities",
		Short: "Manage entities in the graph",
	}

	entitiesMergeCmd = &cobra.Command{
		Use:   "merge",
		Short: "Merge entities whose names differ only in case or whitespace",
		RunE:  runEntitiesMerge,
	}
)

func init() {
	rootCmd.AddCommand(entitiesCmd)
	entitiesCmd.AddCommand(entitiesMergeCmd)
}

func runEntitiesMerge(cmd *cobra.Command, args []string) error {
	s, err := newGraphOnly()
	if err != nil {
		return err
	}
	defer s.Close()

	merged, err := s.MergeDuplicateEntities()
	if err != nil {
		return err
	}

	fmt.Printf("Merged %d duplicate entities\n", merged)
	return nil
}
