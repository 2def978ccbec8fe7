package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.connectwisedev.com/product-scanner/pkg/research"
)

var (
	searchCategory string
	searchKeyword  string
	searchFilters  string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the result as JSON",
	Example: `  scanner search --category "Home & Kitchen" --keyword "bamboo organizer"
  scanner search --keyword "yoga mat" --filters '{"maxPrice":40,"sortBy":"roi"}'`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "product category")
	searchCmd.Flags().StringVar(&searchKeyword, "keyword", "", "search keyword")
	searchCmd.Flags().StringVar(&searchFilters, "filters", "", "filters as a JSON object")
}

func runSearch(cmd *cobra.Command, args []string) error {
	var filters research.Filters
	if searchFilters != "" {
		if err := json.Unmarshal([]byte(searchFilters), &filters); err != nil {
			return fmt.Errorf("parse --filters: %w", err)
		}
	}

	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Service.Search(cmd.Context(), research.SearchRequest{
		Category: searchCategory,
		Keyword:  searchKeyword,
		Filters:  filters,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
