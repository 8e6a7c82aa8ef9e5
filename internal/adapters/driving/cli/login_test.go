package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

func TestLoginCmd_PasswordStdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeWithInput("s3cret pass\n", "login", "-u", "me@example.com", "--password-stdin")

	require.NoError(t, err)
	assert.Equal(t, "me@example.com", ts.auth.identity)
	assert.Equal(t, "s3cret pass", ts.auth.password)
	assert.Contains(t, out, "Signed in as Mei")
}

func TestLoginCmd_Prompts(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeWithInput("mei\nhunter2\n", "login")

	require.NoError(t, err)
	assert.Equal(t, "mei", ts.auth.identity)
	assert.Equal(t, "hunter2", ts.auth.password)
	assert.Contains(t, out, "Email or username: ")
	assert.Contains(t, out, "Password: ")
}

func TestLoginCmd_PasswordStdinNeedsIdentity(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput("pw\n", "login", "--password-stdin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--identity is required")
}

func TestLoginCmd_EmptyPassword(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput("", "login", "-u", "mei", "--password-stdin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity and password are required")
}

func TestLoginCmd_Failure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.auth.loginErr = domain.ErrAuthInvalid

	_, err := executeWithInput("wrong\n", "login", "-u", "mei", "--password-stdin")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestWhoamiCmd_SignedIn(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.auth.session.ExpiresAt = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	out, err := execute("whoami")

	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Mei")
	assert.Contains(t, out, "ID: u1")
	assert.Contains(t, out, "Email: me@example.com")
	assert.Contains(t, out, "Expires: ")
}

func TestWhoamiCmd_NotSignedIn(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.auth.refreshErr = domain.ErrAuthRequired

	out, err := execute("whoami")

	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestWhoamiCmd_RefreshError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.auth.refreshErr = errors.New("network down")

	_, err := execute("whoami")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh session")
}

func TestLogoutCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("logout")

	require.NoError(t, err)
	assert.True(t, ts.auth.loggedOut)
	assert.Contains(t, out, "Signed out.")
}

func TestAuthCmds_NoService(t *testing.T) {
	for _, args := range [][]string{{"login", "-u", "x", "--password-stdin"}, {"whoami"}, {"logout"}} {
		t.Run(args[0], func(t *testing.T) {
			SetServices(nil)
			defer resetFlags()

			_, err := execute(args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "auth service not configured")
		})
	}
}
