package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browerscan/pocketbase.cn/internal/adapters/driven/storage/memory"
	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

func TestSeedStore_RoundTripSeedsController(t *testing.T) {
	store := NewSeedStore[int](memory.NewSnapshotStore(), time.Minute)
	ctx := context.Background()

	fetcher := newScriptedFetcher().
		on(0, okPage([]int{1, 2}, &domain.PageMeta{HasMore: boolPtr(true)}))
	ctrl := NewListController(ListConfig[int]{Fetcher: fetcher})
	require.NoError(t, ctrl.Start(ctx, testEndpoint))
	require.NoError(t, store.SaveState(ctx, ctrl.State()))

	seed, err := store.Load(ctx, testEndpoint)
	require.NoError(t, err)

	next := NewListController(ListConfig[int]{Fetcher: fetcher, Seed: seed})
	require.NoError(t, next.Start(ctx, testEndpoint))

	state := next.State()
	assert.Equal(t, []int{1, 2}, state.Items)
	assert.Equal(t, 2, state.Cursor.Offset)
	assert.True(t, state.Cursor.HasMore)
	assert.Len(t, fetcher.offsets(), 1)
}

func TestSeedStore_Expired(t *testing.T) {
	store := NewSeedStore[int](memory.NewSnapshotStore(), time.Minute)
	ctx := context.Background()

	store.now = func() time.Time { return fixedNow }
	require.NoError(t, store.SaveState(ctx, domain.ListState[int]{Endpoint: testEndpoint, Items: []int{1}}))

	store.now = func() time.Time { return fixedNow.Add(2 * time.Minute) }
	_, err := store.Load(ctx, testEndpoint)
	assert.ErrorIs(t, err, domain.ErrSnapshotExpired)

	removed, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Load(ctx, testEndpoint)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeedStore_SkipsUnsettledState(t *testing.T) {
	store := NewSeedStore[int](memory.NewSnapshotStore(), time.Minute)
	ctx := context.Background()

	states := []domain.ListState[int]{
		{Endpoint: testEndpoint, Items: []int{1}, Loading: true},
		{Endpoint: testEndpoint, Items: []int{1}, Error: "boom"},
		{Endpoint: testEndpoint},
		{Items: []int{1}},
	}
	for _, st := range states {
		require.NoError(t, store.SaveState(ctx, st))
	}

	_, err := store.Load(ctx, testEndpoint)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
