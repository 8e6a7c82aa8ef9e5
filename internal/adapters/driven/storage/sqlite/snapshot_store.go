package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// Get retrieves the snapshot for endpointURL.
func (s *snapshotStore) Get(ctx context.Context, endpointURL string) (*driven.Snapshot, error) {
	var snap driven.Snapshot
	var meta sql.NullString
	var savedAt sql.NullInt64

	err := s.store.db.QueryRowContext(ctx, `
		SELECT endpoint_url, items, meta, saved_at FROM list_snapshots WHERE endpoint_url = ?
	`, endpointURL).Scan(&snap.EndpointURL, &snap.Items, &meta, &savedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	if meta.Valid && meta.String != "" {
		var m domain.PageMeta
		if err := json.Unmarshal([]byte(meta.String), &m); err != nil {
			return nil, fmt.Errorf("unmarshalling snapshot meta: %w", err)
		}
		snap.Meta = &m
	}
	snap.SavedAt = fromMillis(savedAt)
	return &snap, nil
}

// Save stores or replaces a snapshot.
func (s *snapshotStore) Save(ctx context.Context, snapshot driven.Snapshot) error {
	if snapshot.EndpointURL == "" {
		return domain.ErrInvalidInput
	}

	var meta sql.NullString
	if snapshot.Meta != nil {
		data, err := json.Marshal(snapshot.Meta)
		if err != nil {
			return fmt.Errorf("marshalling snapshot meta: %w", err)
		}
		meta = sql.NullString{String: string(data), Valid: true}
	}

	items := snapshot.Items
	if items == nil {
		items = []byte("[]")
	}
	savedAt := snapshot.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO list_snapshots (endpoint_url, items, meta, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(endpoint_url) DO UPDATE SET
			items = excluded.items,
			meta = excluded.meta,
			saved_at = excluded.saved_at
	`, snapshot.EndpointURL, items, meta, savedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Prune deletes snapshots saved before cutoff.
func (s *snapshotStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM list_snapshots WHERE saved_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned snapshots: %w", err)
	}
	return int(n), nil
}
