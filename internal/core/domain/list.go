package domain

// Query parameter names understood by the PocketBase list endpoints and the
// site's page URLs.
const (
	ParamQuery    = "q"
	ParamCategory = "category"
	ParamSort     = "sort"
	ParamLimit    = "limit"
	ParamOffset   = "offset"
)

// ListQuery is the current filter/sort selection for one paginated view.
type ListQuery struct {
	// Query is the free-text search term.
	Query string

	// Category filters to one category; empty means all.
	Category string

	// Sort is the backend sort key, e.g. "-created" or "name".
	Sort string
}

// PageMeta is the continuation metadata a list endpoint returns.
// Fields are pointers because the backend may omit any of them.
type PageMeta struct {
	HasMore    *bool `json:"hasMore,omitempty"`
	NextOffset *int  `json:"nextOffset,omitempty"`
	Total      *int  `json:"total,omitempty"`
}

// Page is the body of a list endpoint response.
type Page[T any] struct {
	Data []T       `json:"data"`
	Meta *PageMeta `json:"meta,omitempty"`
}

// PageCursor is the offset/has-more pair describing pagination continuation.
type PageCursor struct {
	Offset  int
	HasMore bool
}

// Advance computes the cursor that follows a page of n rows fetched from
// offset. The server-reported nextOffset wins; offset+n is the fallback.
func (m *PageMeta) Advance(offset, n int) PageCursor {
	next := offset + n
	hasMore := false
	if m != nil {
		if m.NextOffset != nil && *m.NextOffset >= 0 {
			next = *m.NextOffset
		}
		if m.HasMore != nil {
			hasMore = *m.HasMore
		}
	}
	return PageCursor{Offset: next, HasMore: hasMore}
}

// Seed is server-prefetched list data keyed by the exact endpoint URL it was
// produced for.
type Seed[T any] struct {
	EndpointURL string
	Items       []T
	Meta        *PageMeta
}

// Matches reports whether the seed was produced for endpoint.
func (s *Seed[T]) Matches(endpoint string) bool {
	return s != nil && s.EndpointURL != "" && s.EndpointURL == endpoint
}

// ListState is a point-in-time copy of a list controller's state.
type ListState[T any] struct {
	Endpoint    string
	Items       []T
	Cursor      PageCursor
	Loading     bool
	LoadingMore bool
	Error       string
}

// Busy reports whether any load is in flight.
func (s ListState[T]) Busy() bool {
	return s.Loading || s.LoadingMore
}

// SortOption is a selectable sort key with its display label.
type SortOption struct {
	Value string
	Label string
}
