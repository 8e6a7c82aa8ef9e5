package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.SearchHistoryEntry // most recent first
	now     func() time.Time
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{now: time.Now}
}

// Add records term as the most recent entry.
func (s *HistoryStore) Add(_ context.Context, term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]domain.SearchHistoryEntry, 0, len(s.entries)+1)
	kept = append(kept, domain.SearchHistoryEntry{
		ID:        uuid.NewString(),
		Term:      term,
		CreatedAt: s.now(),
	})
	for _, e := range s.entries {
		if e.Term != term {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// List returns up to limit entries, most recent first.
func (s *HistoryStore) List(_ context.Context, limit int) ([]domain.SearchHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.SearchHistoryEntry, n)
	copy(out, s.entries[:n])
	return out, nil
}

// Trim keeps only the newest keep entries.
func (s *HistoryStore) Trim(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	if len(s.entries) > keep {
		s.entries = s.entries[:keep]
	}
	return nil
}

// Clear removes all entries.
func (s *HistoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
