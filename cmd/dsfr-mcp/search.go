package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/searchindex"
)

var (
	searchCategory string
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the documentation from the command line",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.index(cmd.Context()); err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}

		result := a.retrieval.SearchComponents(cmd.Context(), strings.Join(args, " "), searchCategory, searchLimit)
		fmt.Fprintln(cmd.OutOrStdout(), result.Text)
		if result.IsError {
			return errors.New("search failed")
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Restrict to one documentation category")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", searchindex.DefaultLimit, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
