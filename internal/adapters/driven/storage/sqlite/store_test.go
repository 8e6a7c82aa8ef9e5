package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Contains(t, store.Path(), filepath.Join(".pbcn", "data", DatabaseFile))
}

func TestNewStore_MigrationsAreRecordedOnce(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var count, version int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*), MAX(version) FROM schema_migrations").Scan(&count, &version))
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, version)

	for _, table := range []string{"search_history", "list_snapshots", "auth_session"} {
		var name string
		err := store.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

// ==================== History Store ====================

func TestHistoryStore_MostRecentFirstWithoutDuplicates(t *testing.T) {
	history := setupTestStore(t).HistoryStore()
	ctx := context.Background()

	for _, term := range []string{"auth", "hooks", "auth", "realtime"} {
		require.NoError(t, history.Add(ctx, term))
	}

	entries, err := history.List(ctx, 0)
	require.NoError(t, err)

	terms := make([]string, len(entries))
	for i, e := range entries {
		terms[i] = e.Term
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}
	assert.Equal(t, []string{"realtime", "auth", "hooks"}, terms)
}

func TestHistoryStore_ListLimitAndTrim(t *testing.T) {
	history := setupTestStore(t).HistoryStore()
	ctx := context.Background()

	for _, term := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		require.NoError(t, history.Add(ctx, term))
	}

	entries, err := history.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "g", entries[0].Term)

	require.NoError(t, history.Trim(ctx, domain.MaxHistoryItems))
	entries, err = history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, domain.MaxHistoryItems)
	assert.Equal(t, "c", entries[len(entries)-1].Term)
}

func TestHistoryStore_Clear(t *testing.T) {
	history := setupTestStore(t).HistoryStore()
	ctx := context.Background()

	require.NoError(t, history.Add(ctx, "auth"))
	require.NoError(t, history.Clear(ctx))

	entries, err := history.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// ==================== Snapshot Store ====================

func TestSnapshotStore_SaveAndGet(t *testing.T) {
	snapshots := setupTestStore(t).SnapshotStore()
	ctx := context.Background()
	savedAt := time.UnixMilli(time.Now().UnixMilli())

	snap := driven.Snapshot{
		EndpointURL: "https://api.example.com/api/plugins/list?limit=24&offset=0",
		Items:       []byte(`[{"id":"p1"}]`),
		Meta:        &domain.PageMeta{HasMore: boolPtr(true), NextOffset: intPtr(24)},
		SavedAt:     savedAt,
	}
	require.NoError(t, snapshots.Save(ctx, snap))

	got, err := snapshots.Get(ctx, snap.EndpointURL)
	require.NoError(t, err)
	assert.Equal(t, snap.EndpointURL, got.EndpointURL)
	assert.JSONEq(t, `[{"id":"p1"}]`, string(got.Items))
	require.NotNil(t, got.Meta)
	assert.True(t, *got.Meta.HasMore)
	assert.Equal(t, 24, *got.Meta.NextOffset)
	assert.Nil(t, got.Meta.Total)
	assert.True(t, savedAt.Equal(got.SavedAt))
}

func TestSnapshotStore_Replace(t *testing.T) {
	snapshots := setupTestStore(t).SnapshotStore()
	ctx := context.Background()
	endpoint := "https://api.example.com/api/showcase/list?offset=0"

	require.NoError(t, snapshots.Save(ctx, driven.Snapshot{EndpointURL: endpoint, Items: []byte(`[1]`)}))
	require.NoError(t, snapshots.Save(ctx, driven.Snapshot{EndpointURL: endpoint, Items: []byte(`[2]`)}))

	got, err := snapshots.Get(ctx, endpoint)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got.Items))
	assert.Nil(t, got.Meta)
}

func TestSnapshotStore_NotFound(t *testing.T) {
	snapshots := setupTestStore(t).SnapshotStore()

	_, err := snapshots.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = snapshots.Save(context.Background(), driven.Snapshot{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSnapshotStore_Prune(t *testing.T) {
	snapshots := setupTestStore(t).SnapshotStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, snapshots.Save(ctx, driven.Snapshot{EndpointURL: "old", SavedAt: now.Add(-time.Hour)}))
	require.NoError(t, snapshots.Save(ctx, driven.Snapshot{EndpointURL: "new", SavedAt: now}))

	n, err := snapshots.Prune(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = snapshots.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = snapshots.Get(ctx, "new")
	assert.NoError(t, err)
}

// ==================== Session Store ====================

func TestSessionStore_Lifecycle(t *testing.T) {
	sessions := setupTestStore(t).SessionStore()
	ctx := context.Background()

	_, err := sessions.Load(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)

	expires := time.UnixMilli(time.Now().Add(time.Hour).UnixMilli())
	session := domain.AuthSession{
		Token:     "tok-1",
		User:      domain.User{ID: "u1", Email: "dev@example.com", Verified: true},
		ExpiresAt: expires,
	}
	require.NoError(t, sessions.Save(ctx, session))

	got, err := sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, session.User, got.User)
	assert.True(t, expires.Equal(got.ExpiresAt))
	assert.True(t, got.UpdatedAt.IsZero())

	session.Token = "tok-2"
	session.ExpiresAt = time.Time{}
	require.NoError(t, sessions.Save(ctx, session))
	got, err = sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.Token)
	assert.True(t, got.ExpiresAt.IsZero())

	require.NoError(t, sessions.Clear(ctx))
	_, err = sessions.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_RejectsEmptyToken(t *testing.T) {
	err := setupTestStore(t).SessionStore().Save(context.Background(), domain.AuthSession{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
