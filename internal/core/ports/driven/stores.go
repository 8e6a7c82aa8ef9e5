package driven

import (
	"context"
	"time"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

// HistoryStore persists remembered search terms.
type HistoryStore interface {
	// Add records term as the most recent entry, removing older duplicates.
	Add(ctx context.Context, term string) error

	// List returns up to limit entries, most recent first.
	List(ctx context.Context, limit int) ([]domain.SearchHistoryEntry, error)

	// Trim keeps only the newest keep entries.
	Trim(ctx context.Context, keep int) error

	// Clear removes all entries.
	Clear(ctx context.Context) error
}

// Snapshot is a stored first page of a list endpoint.
type Snapshot struct {
	EndpointURL string
	Items       []byte
	Meta        *domain.PageMeta
	SavedAt     time.Time
}

// SnapshotStore persists first pages keyed by exact endpoint URL.
type SnapshotStore interface {
	// Get returns the snapshot for endpointURL or domain.ErrNotFound.
	Get(ctx context.Context, endpointURL string) (*Snapshot, error)

	// Save stores or replaces the snapshot for its endpoint.
	Save(ctx context.Context, snapshot Snapshot) error

	// Prune deletes snapshots saved before cutoff and returns how many.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// SessionStore persists the signed-in session.
type SessionStore interface {
	// Load returns the stored session or domain.ErrNotFound.
	Load(ctx context.Context) (*domain.AuthSession, error)

	// Save stores the session, replacing any previous one.
	Save(ctx context.Context, session domain.AuthSession) error

	// Clear removes the stored session.
	Clear(ctx context.Context) error
}

// DocSource lists documentation pages for local search.
type DocSource interface {
	ListDocs(ctx context.Context) ([]domain.DocEntry, error)
}

// AuthAPI is the backend's users-collection auth surface.
type AuthAPI interface {
	// AuthWithPassword signs in and returns the new session.
	AuthWithPassword(ctx context.Context, identity, password string) (*domain.AuthSession, error)

	// AuthRefresh exchanges a valid token for a fresh session.
	AuthRefresh(ctx context.Context, token string) (*domain.AuthSession, error)
}
