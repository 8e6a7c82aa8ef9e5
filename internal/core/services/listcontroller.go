package services

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// LoadEvent describes one completed list load.
type LoadEvent struct {
	// Replace is true for replace loads and false for load-more.
	Replace bool

	// Offset is the offset the page was requested from.
	Offset int

	// Items is the number of rows the page carried.
	Items int

	// Err is the error message of a failed load.
	Err string

	// Discarded is true when the response arrived after the controller was
	// reset or disposed and was dropped.
	Discarded bool
}

// ListConfig configures a ListController.
type ListConfig[T any] struct {
	// Fetcher performs page requests. Required.
	Fetcher driven.PageFetcher[T]

	// Observer drives infinite scroll. Optional.
	Observer driven.VisibilityObserver

	// Seed is prefetched data adopted when its endpoint matches. Optional.
	Seed *domain.Seed[T]

	// OnLoad is called after each load completes. Optional.
	OnLoad func(LoadEvent)
}

// ListController owns the items of one paginated view and the cursor used to
// extend them. It is safe for concurrent use.
type ListController[T any] struct {
	fetcher  driven.PageFetcher[T]
	observer driven.VisibilityObserver
	seed     *domain.Seed[T]
	onLoad   func(LoadEvent)

	mu          sync.Mutex
	ctx         context.Context
	endpoint    string
	items       []T
	cursor      domain.PageCursor
	loading     bool
	loadingMore bool
	errMsg      string
	generation  uint64
	disposed    bool
	seedApplied bool
	stopObserve func()
}

// NewListController creates a controller. Call Start to begin loading.
func NewListController[T any](cfg ListConfig[T]) *ListController[T] {
	return &ListController[T]{
		fetcher:  cfg.Fetcher,
		observer: cfg.Observer,
		seed:     cfg.Seed,
		onLoad:   cfg.OnLoad,
		ctx:      context.Background(),
	}
}

// Start binds the controller to endpoint. A matching seed is adopted without
// a request; otherwise a replace load runs. Start also registers with the
// visibility observer for automatic load-more.
func (c *ListController[T]) Start(ctx context.Context, endpoint string) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return domain.ErrControllerDisposed
	}
	c.ctx = ctx
	c.endpoint = endpoint
	observe := c.observer != nil && c.stopObserve == nil
	c.mu.Unlock()

	if observe {
		stop := c.observer.Observe(c.onVisible)
		c.mu.Lock()
		c.stopObserve = stop
		c.mu.Unlock()
	}

	if c.adoptSeed(endpoint) {
		return nil
	}
	c.LoadPage(ctx, true)
	return nil
}

// Reset discards all state and reloads from endpoint. It always fetches;
// only Start adopts the seed.
func (c *ListController[T]) Reset(ctx context.Context, endpoint string) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return domain.ErrControllerDisposed
	}
	logger.Debug("List reset: %s -> %s", c.endpoint, endpoint)
	c.ctx = ctx
	c.endpoint = endpoint
	c.mu.Unlock()

	c.LoadPage(ctx, true)
	return nil
}

// Dispose stops automatic loading. Responses arriving afterwards are dropped.
func (c *ListController[T]) Dispose() {
	c.mu.Lock()
	c.disposed = true
	stop := c.stopObserve
	c.stopObserve = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// adoptSeed applies the seed once, if it was produced for endpoint.
func (c *ListController[T]) adoptSeed(endpoint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seedApplied || !c.seed.Matches(endpoint) {
		return false
	}
	c.seedApplied = true
	c.generation++
	c.items = append([]T(nil), c.seed.Items...)
	c.cursor = c.seed.Meta.Advance(0, len(c.seed.Items))
	c.loading = false
	c.loadingMore = false
	c.errMsg = ""
	logger.Debug("List seeded: %d items, next offset %d", len(c.items), c.cursor.Offset)
	return true
}

// LoadPage fetches the next page. With replace, the collection and offset are
// cleared first and any in-flight load is superseded. Without replace, the
// page at the stored offset is appended; this is a no-op while another load is
// in flight. LoadPage blocks until the response has been applied or dropped.
func (c *ListController[T]) LoadPage(ctx context.Context, replace bool) {
	c.mu.Lock()
	if c.disposed || c.endpoint == "" {
		c.mu.Unlock()
		return
	}
	if !replace && (c.loading || c.loadingMore) {
		c.mu.Unlock()
		logger.Debug("Load-more skipped: load already in flight")
		return
	}

	if replace {
		c.generation++
		c.items = nil
		c.cursor = domain.PageCursor{}
		c.loading = true
		c.loadingMore = false
	} else {
		c.loadingMore = true
	}
	c.errMsg = ""
	gen := c.generation
	offset := c.cursor.Offset
	endpoint := c.endpoint
	c.mu.Unlock()

	logger.Section("List Load")
	logger.Debug("Endpoint: %s, offset: %d, replace: %t", endpoint, offset, replace)

	pageURL, err := WithOffset(endpoint, offset)
	var outcome domain.FetchOutcome[domain.Page[T]]
	if err != nil {
		outcome = domain.Failure[domain.Page[T]](&domain.FetchError{
			Kind:    domain.ErrorKindClient,
			Message: err.Error(),
		})
	} else {
		outcome = c.fetcher.FetchPage(ctx, pageURL)
	}

	event := LoadEvent{Replace: replace, Offset: offset}

	c.mu.Lock()
	if c.disposed || gen != c.generation {
		c.mu.Unlock()
		logger.Debug("Dropping stale response for offset %d", offset)
		event.Discarded = true
		c.emit(event)
		return
	}

	if outcome.OK() {
		rows := outcome.Data.Data
		if replace {
			c.items = append([]T(nil), rows...)
		} else {
			c.items = append(c.items, rows...)
		}
		c.cursor = outcome.Data.Meta.Advance(offset, len(rows))
		event.Items = len(rows)
		logger.Info("Loaded %d items, total %d, hasMore=%t", len(rows), len(c.items), c.cursor.HasMore)
	} else {
		c.errMsg = outcome.ErrorMessage()
		event.Err = c.errMsg
		logger.Warn("List load failed: %s", c.errMsg)
	}
	c.loading = false
	c.loadingMore = false
	c.mu.Unlock()

	c.emit(event)
}

// Retry repeats the last kind of load after a failure: load-more when items
// are present, a replace load otherwise.
func (c *ListController[T]) Retry(ctx context.Context) {
	c.mu.Lock()
	replace := len(c.items) == 0
	c.mu.Unlock()
	c.LoadPage(ctx, replace)
}

func (c *ListController[T]) emit(event LoadEvent) {
	if c.onLoad != nil {
		c.onLoad(event)
	}
}

// onVisible is the infinite-scroll trigger.
func (c *ListController[T]) onVisible() {
	c.mu.Lock()
	ready := !c.disposed && c.cursor.HasMore && !c.loading && !c.loadingMore
	ctx := c.ctx
	c.mu.Unlock()

	if ready {
		c.LoadPage(ctx, false)
	}
}

// State returns a copy of the controller state.
func (c *ListController[T]) State() domain.ListState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return domain.ListState[T]{
		Endpoint:    c.endpoint,
		Items:       append([]T(nil), c.items...),
		Cursor:      c.cursor,
		Loading:     c.loading,
		LoadingMore: c.loadingMore,
		Error:       c.errMsg,
	}
}

// WithOffset returns endpoint with its offset parameter set.
func WithOffset(endpoint string, offset int) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", domain.ErrInvalidEndpoint
	}
	q := u.Query()
	q.Set(domain.ParamOffset, strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
