package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search")

	require.Error(t, err)
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "auth", "kit")

	require.NoError(t, err)
	assert.Equal(t, "auth kit", ts.search.lastQuery)
	assert.Equal(t, 8, ts.search.lastLimit)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] Auth Kit (plugin)")
	assert.Contains(t, out, "https://pocketbase.cn/plugins/auth-kit")
	assert.Contains(t, out, "Login helpers")
	assert.Contains(t, out, "[2] Authentication (doc)")
}

func TestSearchCmd_RemembersTerm(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search", "realtime")

	require.NoError(t, err)
	assert.Equal(t, []string{"realtime"}, ts.search.terms)
}

func TestSearchCmd_LimitFlag(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search", "auth", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, 3, ts.search.lastLimit)
}

func TestSearchCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.results = nil

	out, err := execute("search", "zzz")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "auth", "--json")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "plugin-1", results[0]["id"])
}

func TestSearchCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.err = errors.New("catalogue unavailable")

	_, err := execute("search", "auth")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_History(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.terms = []string{"auth", "realtime"}

	out, err := execute("search", "--history")

	require.NoError(t, err)
	assert.Equal(t, "auth\nrealtime\n", out)
}

func TestSearchCmd_HistoryEmpty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "--history")

	require.NoError(t, err)
	assert.Contains(t, out, "No recent searches.")
}

func TestSearchCmd_HistoryRejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search", "--history", "auth")

	require.Error(t, err)
}

func TestSearchCmd_HistoryError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.historyErr = errors.New("disk full")

	_, err := execute("search", "--history")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read history")
}

func TestSearchCmd_NoService(t *testing.T) {
	SetServices(nil)
	defer resetFlags()

	_, err := execute("search", "auth")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}
