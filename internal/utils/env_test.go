package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvironmentDoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "tracker.env")
	require.NoError(t, os.WriteFile(envFile, []byte("WT_TEST_WALLET=0xabc\nWT_TEST_PRESET=from-file\n"), 0600))

	t.Setenv("WT_TEST_PRESET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("WT_TEST_WALLET") })

	loaded := LoadEnvironment(envFile)

	assert.Contains(t, loaded, envFile)
	assert.Equal(t, "0xabc", os.Getenv("WT_TEST_WALLET"))
	assert.Equal(t, "from-env", os.Getenv("WT_TEST_PRESET"))
}

func TestLoadEnvironmentSkipsMissingFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.env")

	loaded := LoadEnvironment(missing)

	assert.NotContains(t, loaded, missing)
}
