package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchConfig wires a SearchService.
type SearchConfig struct {
	// BaseURL is the backend origin the list endpoints live under.
	BaseURL string

	Plugins   driven.PageFetcher[domain.Plugin]
	Showcases driven.PageFetcher[domain.Showcase]

	// Docs is optional.
	Docs driven.DocSource

	// History is optional; without it Remember and History are no-ops.
	History driven.HistoryStore
}

// SearchService provides command-palette search over the whole catalogue.
// The catalogue is collected once per service and ranked locally.
type SearchService struct {
	cfg SearchConfig

	mu         sync.Mutex
	candidates []domain.SearchCandidate
	loaded     bool
}

// NewSearchService creates a new search service.
func NewSearchService(cfg SearchConfig) *SearchService {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &SearchService{cfg: cfg}
}

// Search ranks the catalogue against query.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.SearchCandidate, error) {
	logger.Section("Search")
	logger.Debug("Query: %q, limit: %d", query, limit)

	if strings.TrimSpace(query) == "" {
		return []domain.SearchCandidate{}, nil
	}
	if limit <= 0 {
		limit = DefaultResultCap
	}

	candidates, err := s.Catalogue(ctx)
	if err != nil {
		return nil, err
	}

	results := Rank(query, candidates, limit)
	logger.Info("Found %d results out of %d candidates", len(results), len(candidates))
	return results, nil
}

// Catalogue returns the search candidates: plugins, then showcase entries,
// then docs. A source that fails is skipped with a warning; an error is
// returned only when no source produced anything.
func (s *SearchService) Catalogue(ctx context.Context) ([]domain.SearchCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.candidates, nil
	}

	var errs []error
	var out []domain.SearchCandidate

	if s.cfg.Plugins != nil {
		plugins, err := CollectAll(ctx, s.cfg.Plugins, s.cfg.BaseURL+domain.PluginsCollection.Endpoint)
		if err != nil {
			logger.Warn("Plugins unavailable for search: %v", err)
			errs = append(errs, fmt.Errorf("plugins: %w", err))
		}
		out = append(out, PluginCandidates(plugins)...)
	}

	if s.cfg.Showcases != nil {
		items, err := CollectAll(ctx, s.cfg.Showcases, s.cfg.BaseURL+domain.ShowcaseCollection.Endpoint)
		if err != nil {
			logger.Warn("Showcase unavailable for search: %v", err)
			errs = append(errs, fmt.Errorf("showcase: %w", err))
		}
		out = append(out, ShowcaseCandidates(items)...)
	}

	if s.cfg.Docs != nil {
		docs, err := s.cfg.Docs.ListDocs(ctx)
		if err != nil {
			logger.Warn("Docs unavailable for search: %v", err)
			errs = append(errs, fmt.Errorf("docs: %w", err))
		}
		out = append(out, DocCandidates(docs)...)
	}

	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Partial catalogues are not cached.
	if len(errs) == 0 {
		s.candidates = out
		s.loaded = true
	}
	logger.Debug("Catalogue: %d candidates", len(out))
	return out, nil
}

// Remember records a submitted term. Blank terms are ignored.
func (s *SearchService) Remember(ctx context.Context, term string) error {
	if s.cfg.History == nil || strings.TrimSpace(term) == "" {
		return nil
	}
	if err := s.cfg.History.Add(ctx, term); err != nil {
		return fmt.Errorf("remember search term: %w", err)
	}
	if err := s.cfg.History.Trim(ctx, domain.MaxHistoryItems); err != nil {
		return fmt.Errorf("trim search history: %w", err)
	}
	return nil
}

// History returns the remembered terms, most recent first.
func (s *SearchService) History(ctx context.Context) ([]string, error) {
	if s.cfg.History == nil {
		return nil, nil
	}
	entries, err := s.cfg.History.List(ctx, domain.MaxHistoryItems)
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}
	terms := make([]string, 0, len(entries))
	for _, e := range entries {
		terms = append(terms, e.Term)
	}
	return terms, nil
}
