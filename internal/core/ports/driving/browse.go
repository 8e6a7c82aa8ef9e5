package driving

import (
	"context"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// Browser is one open, paginated list view. Methods that load block until
// the response has been applied.
type Browser interface {
	// Start loads the first page, or adopts a stored one.
	Start(ctx context.Context) error

	// LoadMore appends the next page. It is a no-op while a load is in
	// flight or when there are no more pages.
	LoadMore(ctx context.Context)

	// Retry repeats the failed load.
	Retry(ctx context.Context)

	// SetQuery, SetCategory and SetSort change the selection and reload
	// when the endpoint changes.
	SetQuery(ctx context.Context, query string)
	SetCategory(ctx context.Context, category string)
	SetSort(ctx context.Context, sort string) error

	// CycleSort selects the next sort option and returns it.
	CycleSort(ctx context.Context) string

	// State returns what the view renders.
	State() domain.BrowseState

	// Close stores the loaded state for the next visit and stops loading.
	Close(ctx context.Context) error
}

// BrowseService opens list views over the catalogue collections.
type BrowseService interface {
	// Plugins opens the plugin marketplace. observer may be nil.
	Plugins(ctx context.Context, opts domain.BrowseOptions, observer driven.VisibilityObserver) (Browser, error)

	// Showcase opens the showcase gallery. observer may be nil.
	Showcase(ctx context.Context, opts domain.BrowseOptions, observer driven.VisibilityObserver) (Browser, error)
}
