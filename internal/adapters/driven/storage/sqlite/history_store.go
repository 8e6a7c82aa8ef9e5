package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
	now   func() time.Time
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Add records term as the most recent entry, removing older duplicates.
func (s *historyStore) Add(ctx context.Context, term string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM search_history WHERE term = ?", term); err != nil {
		return fmt.Errorf("removing duplicate history entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO search_history (id, term, created_at) VALUES (?, ?, ?)
	`, uuid.NewString(), term, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("saving history entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, most recent first. A limit of zero or
// less returns every entry.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, term, created_at FROM search_history
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []domain.SearchHistoryEntry{}
	for rows.Next() {
		var e domain.SearchHistoryEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Term, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}

// Trim keeps only the newest keep entries.
func (s *historyStore) Trim(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM search_history
		WHERE seq NOT IN (
			SELECT seq FROM search_history ORDER BY seq DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}
	return nil
}

// Clear removes all entries.
func (s *historyStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM search_history"); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}
