package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_ListByDefault(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"pocketbase.url\thttps://api.pocketbase.cn",
		"site.url\thttps://pocketbase.cn",
		"fetch.retries\t2",
		"docs.dir\t(not set)",
	}, lines)
}

func TestConfigListCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "fetch.retries\t2")
}

func TestConfigGetCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "get", "site.url")

	require.NoError(t, err)
	assert.Equal(t, "https://pocketbase.cn\n", out)
}

func TestConfigGetCmd_UnknownKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("config", "get", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown setting "nope"`)
}

func TestConfigSetCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "set", "fetch.retries", "4")

	require.NoError(t, err)
	assert.Equal(t, "Set fetch.retries\n", out)
	assert.Equal(t, "4", ts.settings.values["fetch.retries"])
}

func TestConfigSetCmd_UnknownKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("config", "set", "nope", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set nope")
}

func TestConfigSetCmd_RequiresValue(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("config", "set", "fetch.retries")

	require.Error(t, err)
}

func TestConfigPathCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "path")

	require.NoError(t, err)
	assert.Equal(t, "/home/test/.pbcn/config.toml\n", out)
}

func TestConfigCmd_NoService(t *testing.T) {
	SetServices(nil)
	defer resetFlags()

	_, err := execute("config", "path")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
