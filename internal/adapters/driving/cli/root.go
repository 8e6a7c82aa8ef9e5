// Package cli provides the pbcn command-line interface.
// It is a driving adapter: commands call into core services through the
// driving ports, which are injected by the entry point with SetServices.
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services holds the driving ports the commands use.
type Services struct {
	Search   driving.SearchService
	Browse   driving.BrowseService
	Auth     driving.AuthService
	Sitemap  driving.SitemapService
	Settings driving.SettingsService

	// FileURL builds the URL of a stored record file.
	FileURL func(collection, recordID, filename, thumb string) string

	// SiteURL is the public site origin.
	SiteURL string

	// SearchLimit is the default number of search results.
	SearchLimit int

	// Metrics serves the Prometheus exposition for --metrics-addr.
	Metrics http.Handler
}

var (
	searchService   driving.SearchService
	browseService   driving.BrowseService
	authService     driving.AuthService
	sitemapService  driving.SitemapService
	settingsService driving.SettingsService
	fileURL         func(collection, recordID, filename, thumb string) string
	siteURL         string
	searchLimit     int
	metricsHandler  http.Handler
)

// Root flags.
var (
	verbose     bool
	metricsAddr string
)

var metricsServer *http.Server

var rootCmd = &cobra.Command{
	Use:   "pbcn",
	Short: "PocketBase.cn catalogue client",
	Long: `pbcn browses the PocketBase.cn plugin marketplace and showcase gallery,
searches plugins, showcases and docs, and generates the site's sitemaps.

Examples:
  pbcn plugins list --category auth
  pbcn search realtime
  pbcn browse`,
	SilenceUsage:       true,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
	rootCmd.PersistentFlags().StringVar(
		&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the command runs")
}

// SetServices injects the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	searchService = s.Search
	browseService = s.Browse
	authService = s.Auth
	sitemapService = s.Sitemap
	settingsService = s.Settings
	fileURL = s.FileURL
	siteURL = s.SiteURL
	searchLimit = s.SearchLimit
	metricsHandler = s.Metrics
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer stopMetricsServer()
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func persistentPreRun(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if metricsAddr != "" {
		return startMetricsServer(metricsAddr)
	}
	return nil
}

func persistentPostRun(_ *cobra.Command, _ []string) error {
	stopMetricsServer()
	return nil
}

// startMetricsServer serves /metrics in the background until the command ends.
func startMetricsServer(addr string) error {
	if metricsHandler == nil {
		return errors.New("metrics not configured")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	metricsServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	srv := metricsServer
	go func() {
		logger.Info("metrics endpoint started on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics endpoint error: %v", err)
		}
	}()
	return nil
}

func stopMetricsServer() {
	if metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Warn("metrics endpoint shutdown: %v", err)
	}
	metricsServer = nil
}
