package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui"
)

// errNoTTY is returned when the TUI is started without a terminal.
var errNoTTY = errors.New("browse needs an interactive terminal; use 'pbcn plugins list' instead")

// browseCmd represents the browse command.
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal browser for PocketBase.cn.

Browse plugins and showcases with infinite scroll, filter and sort them, and
search across the catalogue.

Controls:
  ↑/k, ↓/j - Navigate, more pages load near the end
  /        - Filter
  s        - Cycle sort order
  r        - Retry a failed load
  Enter    - Select / show link
  Esc      - Back
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// stdioIsTerminal is replaced in tests.
var stdioIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runBrowse(cmd *cobra.Command, _ []string) (err error) {
	if !stdioIsTerminal() {
		return errNoTTY
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	ports := &tui.Ports{
		Search:      searchService,
		Browse:      browseService,
		SiteURL:     siteURL,
		SearchLimit: searchLimit,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
