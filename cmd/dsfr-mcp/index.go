package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Ingest the source tree once and print statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.index(cmd.Context())
		if err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Files discovered: %d\n", stats.FilesDiscovered)
		fmt.Fprintf(out, "Files indexed:    %d\n", stats.FilesIndexed)
		fmt.Fprintf(out, "Files discarded:  %d\n", stats.FilesDiscarded)
		fmt.Fprintf(out, "Files unchanged:  %d\n", stats.FilesUnchanged)
		fmt.Fprintf(out, "Files failed:     %d\n", stats.FilesFailed)
		fmt.Fprintf(out, "Documents built:  %d\n", stats.DocumentsBuilt)
		fmt.Fprintf(out, "Duration:         %s\n", stats.Duration)

		categories := make([]types.Category, 0, len(stats.Categories))
		for category := range stats.Categories {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
		for _, category := range categories {
			fmt.Fprintf(out, "  %-22s %d\n", category, stats.Categories[category])
		}
		for _, msg := range stats.ErrorMessages {
			fmt.Fprintf(out, "error: %s\n", msg)
		}
		if stats.PersistError != "" {
			fmt.Fprintf(out, "snapshot not saved: %s\n", stats.PersistError)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
