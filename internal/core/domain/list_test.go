package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestPageMeta_Advance_UsesServerNextOffset(t *testing.T) {
	meta := &PageMeta{HasMore: boolPtr(true), NextOffset: intPtr(2)}

	cursor := meta.Advance(0, 2)

	assert.Equal(t, PageCursor{Offset: 2, HasMore: true}, cursor)
}

func TestPageMeta_Advance_FallsBackToLocalCount(t *testing.T) {
	meta := &PageMeta{HasMore: boolPtr(true)}

	cursor := meta.Advance(10, 5)

	assert.Equal(t, 15, cursor.Offset)
	assert.True(t, cursor.HasMore)
}

func TestPageMeta_Advance_NilMeta(t *testing.T) {
	var meta *PageMeta

	cursor := meta.Advance(10, 5)

	assert.Equal(t, PageCursor{Offset: 15, HasMore: false}, cursor)
}

func TestPageMeta_Advance_IgnoresNegativeNextOffset(t *testing.T) {
	meta := &PageMeta{NextOffset: intPtr(-1)}

	assert.Equal(t, 3, meta.Advance(0, 3).Offset)
}

func TestSeed_Matches(t *testing.T) {
	seed := &Seed[int]{EndpointURL: "https://api.example/api/plugins/list?limit=24&offset=0"}

	assert.True(t, seed.Matches("https://api.example/api/plugins/list?limit=24&offset=0"))
	assert.False(t, seed.Matches("https://api.example/api/plugins/list?category=auth&limit=24&offset=0"))

	var nilSeed *Seed[int]
	assert.False(t, nilSeed.Matches(""))
	assert.False(t, (&Seed[int]{}).Matches(""))
}

func TestListState_Busy(t *testing.T) {
	assert.False(t, ListState[int]{}.Busy())
	assert.True(t, ListState[int]{Loading: true}.Busy())
	assert.True(t, ListState[int]{LoadingMore: true}.Busy())
}

func TestCollection_HasSort(t *testing.T) {
	assert.True(t, PluginsCollection.HasSort("-stars"))
	assert.True(t, PluginsCollection.HasSort(PluginsCollection.DefaultSort))
	assert.False(t, PluginsCollection.HasSort("-votes"))
	assert.True(t, ShowcaseCollection.HasSort("-votes"))
}
