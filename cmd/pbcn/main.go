// Command pbcn is the PocketBase.cn catalogue client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/browerscan/pocketbase.cn/internal/adapters/driven/config/file"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driven/docs"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driven/pocketbase"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driven/storage/memory"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driven/storage/sqlite"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/cli"
	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configDir, err := file.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		return err
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open local store: %v\n", err)
		return err
	}
	defer store.Close()

	metrics := pocketbase.NewMetrics(version, runtime.Version())

	authService := services.NewAuthService(nil, store.SessionStore())
	httpClient := pocketbase.NewHTTPClient(authService)

	client := pocketbase.NewClient(pocketbase.Options{
		BaseURL:    settings.PocketBaseURL,
		Timeout:    settings.Fetch.Timeout,
		Retries:    settings.Fetch.Retries,
		RetryDelay: settings.Fetch.RetryDelay,
		HTTPClient: httpClient,
		CSRF:       pocketbase.NewCSRFCache(settings.PocketBaseURL, httpClient, metrics),
		Limiter:    pocketbase.NewRateLimiter(settings.Fetch.RateLimit),
		Metrics:    metrics,
	})
	authService.SetAPI(pocketbase.NewUsers(client))

	plugins := pocketbase.NewPageSource[domain.Plugin](client)
	showcases := pocketbase.NewPageSource[domain.Showcase](client)

	var docSource driven.DocSource
	if settings.DocsDir != "" {
		docSource = docs.NewReader(settings.DocsDir)
	}

	searchService := services.NewSearchService(services.SearchConfig{
		BaseURL:   settings.PocketBaseURL,
		Plugins:   plugins,
		Showcases: showcases,
		Docs:      docSource,
		History:   store.HistoryStore(),
	})

	sitemapService := services.NewSitemapService(services.SitemapConfig{
		SiteURL:   settings.SiteURL,
		BaseURL:   settings.PocketBaseURL,
		Plugins:   plugins,
		Showcases: showcases,
		Docs:      docSource,
	})

	browseService := services.NewBrowseService(services.BrowseConfig{
		BaseURL:   settings.PocketBaseURL,
		SiteURL:   settings.SiteURL,
		Limit:     settings.ListLimit,
		Plugins:   plugins,
		Showcases: showcases,
		NewLocation: func(rawURL string) (driven.Location, error) {
			return memory.NewLocation(rawURL)
		},
		Snapshots:   store.SnapshotStore(),
		SnapshotTTL: settings.SnapshotTTL,
		OnLoad: func(_ string, e services.LoadEvent) {
			metrics.ObserveListLoad(e.Kind(), e.Result())
		},
	})

	cli.SetServices(&cli.Services{
		Search:   searchService,
		Browse:   browseService,
		Auth:     authService,
		Sitemap:  sitemapService,
		Settings: settingsService,
		FileURL: func(collection, recordID, filename, thumb string) string {
			return pocketbase.FileURL(settings.PocketBaseURL, collection, recordID, filename, thumb)
		},
		SiteURL:     settings.SiteURL,
		SearchLimit: settings.SearchCap,
		Metrics:     metrics.Handler(),
	})
	cli.SetVersion(version)

	return cli.Execute(ctx)
}
