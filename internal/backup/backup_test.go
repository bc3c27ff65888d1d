package backup

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	contents := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		contents[f.Name] = string(b)
	}
	return contents
}

func TestCreateBackup(t *testing.T) {
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "seen_transactions.json"), []byte(`["0x1"]`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "last_run.json"), []byte(`{"run_id":"r"}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "seen_transactions.json.tmp-123"), []byte(`[`), 0600))
	require.NoError(t, os.MkdirAll(filepath.Join(stateDir, "logs"), 0755))

	outside := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(outside, []byte(`["0x2"]`), 0600))

	backupFile, err := CreateBackup(stateDir, "", outside, filepath.Join(stateDir, "last_run.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(stateDir, "backups"), filepath.Dir(backupFile))

	contents := readZip(t, backupFile)
	names := make([]string, 0, len(contents))
	for name := range contents {
		names = append(names, name)
	}
	sort.Strings(names)

	assert.Equal(t, []string{"last_run.json", "ledger.json", "seen_transactions.json"}, names)
	assert.Equal(t, `["0x1"]`, contents["seen_transactions.json"])
	assert.Equal(t, `["0x2"]`, contents["ledger.json"])
}

func TestCreateBackupWithoutState(t *testing.T) {
	stateDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "out")

	_, err := CreateBackup(stateDir, backupDir)
	assert.Error(t, err)

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestShouldIncludeInBackup(t *testing.T) {
	tests := []struct {
		name  string
		isDir bool
		want  bool
	}{
		{"seen_transactions.json", false, true},
		{"last_run.json", false, true},
		{"seen_transactions.json.tmp-42", false, false},
		{"backups", true, false},
		{"notes.txt", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldIncludeInBackup(tt.name, tt.isDir))
		})
	}
}
