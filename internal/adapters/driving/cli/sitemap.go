package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sitemapOutput string

var sitemapCmd = &cobra.Command{
	Use:   "sitemap <static|docs|plugins|showcase|index>",
	Short: "Generate a sitemap",
	Long: `Renders one of the site's sitemap documents.

  static    fixed site pages
  docs      documentation pages from docs.dir
  plugins   every plugin, fetched page by page
  showcase  every showcase entry, fetched page by page
  index     the sitemap index over all of the above`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"static", "docs", "plugins", "showcase", "index"},
	RunE:      runSitemap,
}

func init() {
	sitemapCmd.Flags().StringVarP(&sitemapOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(sitemapCmd)
}

func runSitemap(cmd *cobra.Command, args []string) error {
	if sitemapService == nil {
		return errors.New("sitemap service not configured")
	}

	ctx := cmd.Context()

	var (
		data []byte
		err  error
	)
	switch args[0] {
	case "static":
		data, err = sitemapService.Static()
	case "docs":
		data, err = sitemapService.Docs(ctx)
	case "plugins":
		data, err = sitemapService.Plugins(ctx)
	case "showcase":
		data, err = sitemapService.Showcase(ctx)
	case "index":
		data, err = sitemapService.Index()
	default:
		return fmt.Errorf("unknown sitemap %q", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to render %s sitemap: %w", args[0], err)
	}

	if sitemapOutput == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(sitemapOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}
	cmd.Printf("Wrote %s (%d bytes)\n", sitemapOutput, len(data))
	return nil
}
