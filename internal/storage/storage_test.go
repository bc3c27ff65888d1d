package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "ledger.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`["a"]`), 0600))
	require.NoError(t, WriteFileAtomic(path, []byte(`["a","b"]`), 0600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileAtomicKeepsOldContentOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte(`["old"]`), 0600))

	// A directory sitting at the target path makes the final rename fail.
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0755))

	err := WriteFileAtomic(blocked, []byte(`["new"]`), 0600)
	require.Error(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `["old"]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "failed write must remove its temp file")
}

func TestRunStateRoundTrip(t *testing.T) {
	dir := t.TempDir()

	state, err := GetLastRunState(dir)
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, SaveRunState(dir, RunState{
		RunID:     "run-1",
		Wallet:    "0xabc",
		Outcome:   "completed",
		NewEvents: 2,
		Reported:  1,
		StartedAt: 1700000000,
	}))

	state, err = GetLastRunState(dir)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "run-1", state.RunID)
	assert.Equal(t, "completed", state.Outcome)
	assert.Equal(t, 2, state.NewEvents)
	assert.NotZero(t, state.FinishedAt)
}

func TestGetAppDataDirHonoursOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	t.Setenv("WALLET_TRACKER_HOME", dir)

	got, err := GetAppDataDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
