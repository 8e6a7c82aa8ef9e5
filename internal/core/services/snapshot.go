package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// SeedStore keeps the loaded state of list views so the next view of the
// same endpoint starts without a request.
type SeedStore[T any] struct {
	store driven.SnapshotStore
	ttl   time.Duration
	now   func() time.Time
}

// NewSeedStore creates a seed store. Snapshots older than ttl are not used.
func NewSeedStore[T any](store driven.SnapshotStore, ttl time.Duration) *SeedStore[T] {
	return &SeedStore[T]{store: store, ttl: ttl, now: time.Now}
}

// Load returns the seed for endpoint. It returns domain.ErrNotFound when none
// is stored and domain.ErrSnapshotExpired when the stored one is too old.
func (s *SeedStore[T]) Load(ctx context.Context, endpoint string) (*domain.Seed[T], error) {
	snap, err := s.store.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 && s.now().Sub(snap.SavedAt) > s.ttl {
		logger.Debug("Snapshot for %s expired (saved %s)", endpoint, snap.SavedAt.Format(time.RFC3339))
		return nil, domain.ErrSnapshotExpired
	}

	var items []T
	if err := json.Unmarshal(snap.Items, &items); err != nil {
		return nil, fmt.Errorf("decode snapshot items: %w", err)
	}
	return &domain.Seed[T]{EndpointURL: snap.EndpointURL, Items: items, Meta: snap.Meta}, nil
}

// SaveState stores the items and cursor of a list view under its endpoint.
// Busy or failed states are skipped.
func (s *SeedStore[T]) SaveState(ctx context.Context, state domain.ListState[T]) error {
	if state.Endpoint == "" || state.Busy() || state.Error != "" || len(state.Items) == 0 {
		return nil
	}
	items, err := json.Marshal(state.Items)
	if err != nil {
		return fmt.Errorf("encode snapshot items: %w", err)
	}
	hasMore := state.Cursor.HasMore
	next := state.Cursor.Offset
	return s.store.Save(ctx, driven.Snapshot{
		EndpointURL: state.Endpoint,
		Items:       items,
		Meta:        &domain.PageMeta{HasMore: &hasMore, NextOffset: &next},
		SavedAt:     s.now(),
	})
}

// Prune removes expired snapshots.
func (s *SeedStore[T]) Prune(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	return s.store.Prune(ctx, s.now().Add(-s.ttl))
}
