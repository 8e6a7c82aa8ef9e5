package services

import (
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// DefaultListLimit is the page size requested by list views.
const DefaultListLimit = 24

// DefaultSort is the sort key used when a collection does not name one.
const DefaultSort = "-created"

// FilterConfig configures a FilterSync.
type FilterConfig struct {
	// BaseURL is the backend origin, e.g. "https://api.pocketbase.cn".
	BaseURL string

	// Endpoint is the list endpoint path, e.g. "/api/plugins/list".
	Endpoint string

	// Limit is the page size. Defaults to DefaultListLimit.
	Limit int

	// DefaultSort is omitted from the location when selected.
	// Defaults to DefaultSort.
	DefaultSort string

	// SortOptions restricts SetSort when non-empty.
	SortOptions []domain.SortOption

	// InitialParams, when set, takes precedence over the location's query.
	InitialParams *domain.ListQuery

	// OnEndpointChange is called with the new endpoint URL whenever a change
	// to the selection produces a different endpoint.
	OnEndpointChange func(endpoint string)
}

// FilterSync keeps the query/category/sort selection of a list view, the
// navigable location and the list endpoint URL consistent.
type FilterSync struct {
	cfg      FilterConfig
	location driven.Location

	mu       sync.Mutex
	query    domain.ListQuery
	endpoint string
}

// NewFilterSync initializes the selection from cfg.InitialParams or, when
// absent, from the location's query parameters, then normalizes the location.
func NewFilterSync(cfg FilterConfig, location driven.Location) *FilterSync {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultListLimit
	}
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = DefaultSort
	}

	f := &FilterSync{cfg: cfg, location: location}

	switch {
	case cfg.InitialParams != nil:
		f.query = *cfg.InitialParams
	case location != nil:
		params := location.Query()
		f.query = domain.ListQuery{
			Query:    params.Get(domain.ParamQuery),
			Category: params.Get(domain.ParamCategory),
			Sort:     params.Get(domain.ParamSort),
		}
	}
	if strings.TrimSpace(f.query.Sort) == "" {
		f.query.Sort = cfg.DefaultSort
	}

	f.endpoint = f.buildEndpoint()
	f.syncLocation()
	return f
}

// Selection returns the current query, category and sort.
func (f *FilterSync) Selection() domain.ListQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// EndpointURL returns the list endpoint for the current selection,
// starting at offset 0.
func (f *FilterSync) EndpointURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.endpoint
}

// ShareURL returns the navigable location for the current selection.
func (f *FilterSync) ShareURL() string {
	if f.location == nil {
		return ""
	}
	return f.location.String()
}

// SetQuery changes the free-text query.
func (f *FilterSync) SetQuery(q string) {
	f.update(func(sel *domain.ListQuery) { sel.Query = q })
}

// SetCategory changes the category filter. Empty selects all categories.
func (f *FilterSync) SetCategory(category string) {
	f.update(func(sel *domain.ListQuery) { sel.Category = category })
}

// SetSort changes the sort key. Empty restores the default sort.
// When sort options are configured, unknown keys are rejected.
func (f *FilterSync) SetSort(sort string) error {
	if sort == "" {
		sort = f.cfg.DefaultSort
	}
	if len(f.cfg.SortOptions) > 0 && !hasSortOption(f.cfg.SortOptions, sort) {
		return domain.ErrInvalidInput
	}
	f.update(func(sel *domain.ListQuery) { sel.Sort = sort })
	return nil
}

// CycleSort advances to the next configured sort option and returns it.
func (f *FilterSync) CycleSort() string {
	f.mu.Lock()
	current := f.query.Sort
	f.mu.Unlock()

	opts := f.cfg.SortOptions
	if len(opts) == 0 {
		return current
	}
	next := opts[0].Value
	for i, opt := range opts {
		if opt.Value == current {
			next = opts[(i+1)%len(opts)].Value
			break
		}
	}
	f.update(func(sel *domain.ListQuery) { sel.Sort = next })
	return next
}

func (f *FilterSync) update(apply func(sel *domain.ListQuery)) {
	f.mu.Lock()
	apply(&f.query)
	previous := f.endpoint
	f.endpoint = f.buildEndpoint()
	changed := f.endpoint != previous
	endpoint := f.endpoint
	f.syncLocation()
	f.mu.Unlock()

	if changed {
		logger.Debug("Endpoint changed: %s", endpoint)
		if f.cfg.OnEndpointChange != nil {
			f.cfg.OnEndpointChange(endpoint)
		}
	}
}

// syncLocation rewrites the location query. Callers hold f.mu or own f.
func (f *FilterSync) syncLocation() {
	if f.location == nil {
		return
	}
	f.location.Replace(LocationParams(f.query, f.cfg.DefaultSort))
}

func (f *FilterSync) buildEndpoint() string {
	return BuildEndpointURL(f.cfg.BaseURL, f.cfg.Endpoint, f.query, f.cfg.Limit)
}

// LocationParams returns the query parameters a page location carries for
// sel. Empty values and the default sort are omitted.
func LocationParams(sel domain.ListQuery, defaultSort string) url.Values {
	params := url.Values{}
	if q := strings.TrimSpace(sel.Query); q != "" {
		params.Set(domain.ParamQuery, q)
	}
	if c := strings.TrimSpace(sel.Category); c != "" {
		params.Set(domain.ParamCategory, c)
	}
	if s := strings.TrimSpace(sel.Sort); s != "" && s != defaultSort {
		params.Set(domain.ParamSort, s)
	}
	return params
}

// BuildEndpointURL returns base+path with the list parameters for sel,
// limit and offset 0.
func BuildEndpointURL(base, path string, sel domain.ListQuery, limit int) string {
	params := url.Values{}
	if q := strings.TrimSpace(sel.Query); q != "" {
		params.Set(domain.ParamQuery, q)
	}
	if c := strings.TrimSpace(sel.Category); c != "" {
		params.Set(domain.ParamCategory, c)
	}
	if s := strings.TrimSpace(sel.Sort); s != "" {
		params.Set(domain.ParamSort, s)
	}
	params.Set(domain.ParamLimit, strconv.Itoa(limit))
	params.Set(domain.ParamOffset, "0")
	return strings.TrimRight(base, "/") + path + "?" + params.Encode()
}

func hasSortOption(opts []domain.SortOption, value string) bool {
	for _, opt := range opts {
		if opt.Value == value {
			return true
		}
	}
	return false
}
