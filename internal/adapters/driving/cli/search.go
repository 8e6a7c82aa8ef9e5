package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

var (
	searchResultLimit int
	searchJSON        bool
	searchHistory     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search plugins, showcases and docs",
	Long: `Ranks plugins, showcase entries and documentation pages against the query.

Titles weigh most, then categories and descriptions; featured entries get a
small boost. Submitted terms are remembered; list them with --history.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if searchHistory {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchResultLimit, "limit", "n", 0, "maximum number of results (default from search.cap)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchHistory, "history", false, "list recent search terms")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := cmd.Context()

	if searchHistory {
		terms, err := searchService.History(ctx)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, terms)
		}
		if len(terms) == 0 {
			cmd.Println("No recent searches.")
			return nil
		}
		for _, term := range terms {
			cmd.Println(term)
		}
		return nil
	}

	query := strings.Join(args, " ")
	if err := searchService.Remember(ctx, query); err != nil {
		logger.Warn("Recording search term failed: %v", err)
	}

	limit := searchResultLimit
	if limit <= 0 {
		limit = searchLimit
	}

	results, err := searchService.Search(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}
	outputSearchResults(cmd, results)
	return nil
}

func outputSearchResults(cmd *cobra.Command, results []domain.SearchCandidate) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%s)\n", i+1, r.Title, r.Type)
		cmd.Printf("      %s%s\n", siteURL, r.URL)
		if r.Description != "" {
			cmd.Printf("      %s\n", r.Description)
		}
		cmd.Println()
	}
}
