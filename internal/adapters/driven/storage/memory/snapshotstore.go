package memory

import (
	"context"
	"sync"
	"time"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]driven.Snapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]driven.Snapshot),
	}
}

// Get retrieves the snapshot for endpointURL.
func (s *SnapshotStore) Get(_ context.Context, endpointURL string) (*driven.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[endpointURL]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &snap, nil
}

// Save stores or replaces a snapshot.
func (s *SnapshotStore) Save(_ context.Context, snapshot driven.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.EndpointURL] = snapshot
	return nil
}

// Prune deletes snapshots saved before cutoff.
func (s *SnapshotStore) Prune(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, snap := range s.snapshots {
		if snap.SavedAt.Before(cutoff) {
			delete(s.snapshots, key)
			removed++
		}
	}
	return removed, nil
}
