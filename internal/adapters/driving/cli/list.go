package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// maxListPages bounds --all.
const maxListPages = 200

// listOptions are the flags shared by the list commands.
type listOptions struct {
	query    string
	category string
	sort     string
	shareURL string
	pages    int
	all      bool
	json     bool
}

var (
	pluginsListOpts  listOptions
	showcaseListOpts listOptions
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Browse the plugin marketplace",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plugins",
	Long: `List plugins from the marketplace, one page at a time.

The selection can be given with flags or restored from a site URL:
  pbcn plugins list --category auth --sort -stars
  pbcn plugins list --url "https://pocketbase.cn/plugins?q=oauth"

The first page is stored locally and reused by the next run for the same
selection while it is fresh.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runList(cmd, domain.PluginsCollection, &pluginsListOpts)
	},
}

var showcaseCmd = &cobra.Command{
	Use:   "showcase",
	Short: "Browse the showcase gallery",
}

var showcaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List showcase entries",
	Long: `List projects from the showcase gallery, one page at a time.

  pbcn showcase list --sort -votes
  pbcn showcase list --url "https://pocketbase.cn/showcase?category=saas"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runList(cmd, domain.ShowcaseCollection, &showcaseListOpts)
	},
}

func init() {
	addListFlags(pluginsListCmd, &pluginsListOpts, domain.PluginsCollection)
	addListFlags(showcaseListCmd, &showcaseListOpts, domain.ShowcaseCollection)

	pluginsCmd.AddCommand(pluginsListCmd)
	showcaseCmd.AddCommand(showcaseListCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(showcaseCmd)
}

func addListFlags(cmd *cobra.Command, opts *listOptions, collection domain.Collection) {
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "keyword filter")
	cmd.Flags().StringVar(&opts.category, "category", "", "category filter")
	cmd.Flags().StringVar(&opts.sort, "sort", "", fmt.Sprintf("sort order (default %s)", collection.DefaultSort))
	cmd.Flags().StringVar(&opts.shareURL, "url", "", "restore the selection from a site URL")
	cmd.Flags().IntVar(&opts.pages, "pages", 1, "number of pages to load")
	cmd.Flags().BoolVar(&opts.all, "all", false, "load every page")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")
}

func runList(cmd *cobra.Command, collection domain.Collection, opts *listOptions) error {
	if browseService == nil {
		return errors.New("browse service not configured")
	}
	if opts.pages < 1 {
		return fmt.Errorf("--pages must be at least 1, got %d", opts.pages)
	}

	ctx := cmd.Context()
	browseOpts := domain.BrowseOptions{
		Query:    opts.query,
		Category: opts.category,
		Sort:     opts.sort,
		ShareURL: opts.shareURL,
	}

	var (
		b   driving.Browser
		err error
	)
	if collection.Name == domain.ShowcaseCollection.Name {
		b, err = browseService.Showcase(ctx, browseOpts, nil)
	} else {
		b, err = browseService.Plugins(ctx, browseOpts, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", collection.Name, err)
	}

	state, loadErr := loadPages(ctx, b, opts)
	if err := b.Close(ctx); err != nil {
		logger.Warn("Storing %s page failed: %v", collection.Name, err)
	}
	if loadErr != nil {
		return loadErr
	}

	if opts.json {
		return printJSON(cmd, state)
	}
	printBrowseState(cmd, state)
	return nil
}

// loadPages loads the first page and then more until the requested count.
func loadPages(ctx context.Context, b driving.Browser, opts *listOptions) (domain.BrowseState, error) {
	if err := b.Start(ctx); err != nil {
		return domain.BrowseState{}, fmt.Errorf("failed to load: %w", err)
	}

	limit := opts.pages
	if opts.all {
		limit = maxListPages
	}

	state := b.State()
	for page := 1; page < limit && state.HasMore && state.Error == ""; page++ {
		before := len(state.Items)
		b.LoadMore(ctx)
		state = b.State()
		if len(state.Items) == before && state.Error == "" {
			break
		}
	}

	if state.Error != "" {
		if len(state.Items) == 0 {
			return state, errors.New(state.Error)
		}
		logger.Warn("Stopped after %d items: %s", len(state.Items), state.Error)
	}
	return state, nil
}

func printBrowseState(cmd *cobra.Command, state domain.BrowseState) {
	if len(state.Items) == 0 {
		cmd.Println("No results found.")
		return
	}

	rows := make([][]string, 0, len(state.Items))
	for _, item := range state.Items {
		title := item.Title
		if item.Featured {
			title += " ★"
		}
		rows = append(rows, []string{title, item.Category, item.Stat, siteURL + item.URL})
	}
	printTable(cmd, []string{"Title", "Category", "Stats", "URL"}, rows)

	more := ""
	if state.HasMore {
		more = " (more available, use --pages or --all)"
	}
	cmd.Printf("\n%d items, sorted by %s%s\n", len(state.Items), state.SortLabel, more)
	if state.ShareURL != "" {
		cmd.Printf("Share: %s\n", state.ShareURL)
	}
}
