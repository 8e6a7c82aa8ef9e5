package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// Ensure BrowseService implements the interface.
var _ driving.BrowseService = (*BrowseService)(nil)

// Load kinds and results reported by LoadEvent.
const (
	LoadKindReplace = "replace"
	LoadKindMore    = "more"

	LoadResultOK        = "ok"
	LoadResultError     = "error"
	LoadResultDiscarded = "discarded"
)

// Kind returns LoadKindReplace or LoadKindMore.
func (e LoadEvent) Kind() string {
	if e.Replace {
		return LoadKindReplace
	}
	return LoadKindMore
}

// Result returns LoadResultOK, LoadResultError or LoadResultDiscarded.
func (e LoadEvent) Result() string {
	switch {
	case e.Discarded:
		return LoadResultDiscarded
	case e.Err != "":
		return LoadResultError
	default:
		return LoadResultOK
	}
}

// BrowseConfig configures a BrowseService.
type BrowseConfig struct {
	// BaseURL is the backend origin.
	BaseURL string

	// SiteURL is the public site origin used for share URLs.
	SiteURL string

	// Limit is the page size. Defaults to DefaultListLimit.
	Limit int

	// Plugins and Showcases fetch list pages.
	Plugins   driven.PageFetcher[domain.Plugin]
	Showcases driven.PageFetcher[domain.Showcase]

	// NewLocation creates the navigable location of a view. Required.
	NewLocation func(rawURL string) (driven.Location, error)

	// Snapshots stores loaded pages between runs. Optional.
	Snapshots driven.SnapshotStore

	// SnapshotTTL bounds the age of a usable snapshot.
	SnapshotTTL time.Duration

	// OnLoad observes every completed load. Optional.
	OnLoad func(collection string, event LoadEvent)
}

// BrowseService opens list views over the plugin and showcase collections.
type BrowseService struct {
	cfg BrowseConfig
}

// NewBrowseService creates a browse service.
func NewBrowseService(cfg BrowseConfig) *BrowseService {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultListLimit
	}
	return &BrowseService{cfg: cfg}
}

// Plugins opens the plugin marketplace.
func (s *BrowseService) Plugins(
	ctx context.Context,
	opts domain.BrowseOptions,
	observer driven.VisibilityObserver,
) (driving.Browser, error) {
	b, err := openBrowser(ctx, s.cfg, domain.PluginsCollection, s.cfg.Plugins, PluginItem, opts, observer)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Showcase opens the showcase gallery.
func (s *BrowseService) Showcase(
	ctx context.Context,
	opts domain.BrowseOptions,
	observer driven.VisibilityObserver,
) (driving.Browser, error) {
	b, err := openBrowser(ctx, s.cfg, domain.ShowcaseCollection, s.cfg.Showcases, ShowcaseItem, opts, observer)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Browser ties a FilterSync to a ListController for one collection and
// keeps its loaded state in a SeedStore.
type Browser[T any] struct {
	collection domain.Collection
	filters    *FilterSync
	list       *ListController[T]
	seeds      *SeedStore[T]
	summarize  func(T) domain.ListItem

	mu  sync.Mutex
	ctx context.Context
}

// Ensure Browser implements the interface.
var _ driving.Browser = (*Browser[domain.Plugin])(nil)

func openBrowser[T any](
	ctx context.Context,
	cfg BrowseConfig,
	collection domain.Collection,
	fetcher driven.PageFetcher[T],
	summarize func(T) domain.ListItem,
	opts domain.BrowseOptions,
	observer driven.VisibilityObserver,
) (*Browser[T], error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%s fetcher not configured", collection.Name)
	}
	if cfg.NewLocation == nil {
		return nil, errors.New("location factory not configured")
	}
	if opts.Sort != "" && !collection.HasSort(opts.Sort) {
		return nil, fmt.Errorf("%w: unknown sort %q for %s", domain.ErrInvalidInput, opts.Sort, collection.Name)
	}

	raw := opts.ShareURL
	if raw == "" {
		raw = cfg.SiteURL + collection.PagePath
	}
	location, err := cfg.NewLocation(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: share url: %v", domain.ErrInvalidInput, err)
	}

	b := &Browser[T]{
		collection: collection,
		summarize:  summarize,
		ctx:        ctx,
	}

	var initial *domain.ListQuery
	if opts.HasSelection() {
		initial = &domain.ListQuery{Query: opts.Query, Category: opts.Category, Sort: opts.Sort}
	}
	b.filters = NewFilterSync(FilterConfig{
		BaseURL:          cfg.BaseURL,
		Endpoint:         collection.Endpoint,
		Limit:            cfg.Limit,
		DefaultSort:      collection.DefaultSort,
		SortOptions:      collection.SortOptions,
		InitialParams:    initial,
		OnEndpointChange: b.onEndpointChange,
	}, location)

	var seed *domain.Seed[T]
	if cfg.Snapshots != nil {
		b.seeds = NewSeedStore[T](cfg.Snapshots, cfg.SnapshotTTL)
		if n, err := b.seeds.Prune(ctx); err != nil {
			logger.Warn("Pruning list snapshots failed: %v", err)
		} else if n > 0 {
			logger.Debug("Pruned %d expired list snapshots", n)
		}
		seed = b.loadSeed(ctx)
	}

	var onLoad func(LoadEvent)
	if cfg.OnLoad != nil {
		name := collection.Name
		onLoad = func(e LoadEvent) { cfg.OnLoad(name, e) }
	}

	b.list = NewListController(ListConfig[T]{
		Fetcher:  fetcher,
		Observer: observer,
		Seed:     seed,
		OnLoad:   onLoad,
	})
	return b, nil
}

func (b *Browser[T]) loadSeed(ctx context.Context) *domain.Seed[T] {
	endpoint := b.filters.EndpointURL()
	seed, err := b.seeds.Load(ctx, endpoint)
	switch {
	case err == nil:
		logger.Debug("Using stored first page for %s", endpoint)
		return seed
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSnapshotExpired):
		return nil
	default:
		logger.Warn("Reading list snapshot failed: %v", err)
		return nil
	}
}

// Start implements driving.Browser.
func (b *Browser[T]) Start(ctx context.Context) error {
	b.setContext(ctx)
	return b.list.Start(ctx, b.filters.EndpointURL())
}

// LoadMore implements driving.Browser.
func (b *Browser[T]) LoadMore(ctx context.Context) {
	if !b.list.State().Cursor.HasMore {
		return
	}
	b.list.LoadPage(ctx, false)
}

// Retry implements driving.Browser.
func (b *Browser[T]) Retry(ctx context.Context) {
	b.list.Retry(ctx)
}

// SetQuery implements driving.Browser.
func (b *Browser[T]) SetQuery(ctx context.Context, query string) {
	b.setContext(ctx)
	b.filters.SetQuery(query)
}

// SetCategory implements driving.Browser.
func (b *Browser[T]) SetCategory(ctx context.Context, category string) {
	b.setContext(ctx)
	b.filters.SetCategory(category)
}

// SetSort implements driving.Browser.
func (b *Browser[T]) SetSort(ctx context.Context, sort string) error {
	b.setContext(ctx)
	return b.filters.SetSort(sort)
}

// CycleSort implements driving.Browser.
func (b *Browser[T]) CycleSort(ctx context.Context) string {
	b.setContext(ctx)
	return b.filters.CycleSort()
}

// State implements driving.Browser.
func (b *Browser[T]) State() domain.BrowseState {
	list := b.list.State()
	sel := b.filters.Selection()

	items := make([]domain.ListItem, 0, len(list.Items))
	for _, row := range list.Items {
		items = append(items, b.summarize(row))
	}

	return domain.BrowseState{
		Collection:  b.collection.Name,
		Selection:   sel,
		SortLabel:   sortLabel(b.collection.SortOptions, sel.Sort),
		Items:       items,
		HasMore:     list.Cursor.HasMore,
		Loading:     list.Loading,
		LoadingMore: list.LoadingMore,
		Error:       list.Error,
		Endpoint:    list.Endpoint,
		ShareURL:    b.filters.ShareURL(),
	}
}

// Close implements driving.Browser.
func (b *Browser[T]) Close(ctx context.Context) error {
	defer b.list.Dispose()
	if b.seeds == nil {
		return nil
	}
	if err := b.seeds.SaveState(ctx, b.list.State()); err != nil {
		return fmt.Errorf("save list snapshot: %w", err)
	}
	return nil
}

func (b *Browser[T]) setContext(ctx context.Context) {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
}

func (b *Browser[T]) onEndpointChange(endpoint string) {
	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()

	if b.list == nil {
		return
	}
	if err := b.list.Reset(ctx, endpoint); err != nil {
		logger.Debug("Reset ignored: %v", err)
	}
}

func sortLabel(opts []domain.SortOption, value string) string {
	for _, opt := range opts {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// PluginItem summarises a plugin for display.
func PluginItem(p domain.Plugin) domain.ListItem {
	return domain.ListItem{
		ID:          p.ID,
		Title:       p.Name,
		Description: p.Description,
		Category:    p.Category,
		Featured:    p.Featured,
		Stat:        "★ " + strconv.Itoa(p.Stars) + "  ↓ " + strconv.Itoa(p.DownloadsTotal),
		URL:         "/plugins/" + p.Slug,
	}
}

// ShowcaseItem summarises a showcase entry for display.
func ShowcaseItem(s domain.Showcase) domain.ListItem {
	return domain.ListItem{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Category:    s.Category,
		Featured:    s.Featured,
		Stat:        "▲ " + strconv.Itoa(s.Votes),
		URL:         "/showcase/" + s.Slug,
	}
}
