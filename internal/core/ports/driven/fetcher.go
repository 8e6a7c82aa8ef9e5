package driven

import (
	"context"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

// PageFetcher fetches a single page of a list endpoint.
// Implementations never return Go errors: every failure is carried in the
// outcome's Err field.
type PageFetcher[T any] interface {
	// FetchPage requests endpointURL as-is. The caller sets offset and limit.
	FetchPage(ctx context.Context, endpointURL string) domain.FetchOutcome[domain.Page[T]]
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, endpointURL string) domain.FetchOutcome[domain.Page[T]]

// FetchPage calls f.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, endpointURL string) domain.FetchOutcome[domain.Page[T]] {
	return f(ctx, endpointURL)
}
