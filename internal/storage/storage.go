package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	appDirName   = ".wallet-tracker"
	runStateFile = "last_run.json"
)

// RunState is the record of the most recent pipeline invocation for a wallet
type RunState struct {
	RunID      string `json:"run_id"`
	Wallet     string `json:"wallet"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	NewEvents  int    `json:"new_events"`
	Reported   int    `json:"reported_events"`
	LedgerSize int    `json:"ledger_size"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at"`
}

// GetAppDataDir returns the application data directory, creating it if needed
func GetAppDataDir() (string, error) {
	if dir := os.Getenv("WALLET_TRACKER_HOME"); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create app data directory: %w", err)
		}
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDataDir := filepath.Join(homeDir, appDirName)
	if err := os.MkdirAll(appDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create app data directory: %w", err)
	}

	return appDataDir, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// over path, so readers observe either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// GetRunStateFilePath returns the path of the last-run record inside dir
func GetRunStateFilePath(dir string) string {
	return filepath.Join(dir, runStateFile)
}

// SaveRunState stores the record of a finished run
func SaveRunState(dir string, state RunState) error {
	if state.FinishedAt == 0 {
		state.FinishedAt = time.Now().Unix()
	}

	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}

	if err := WriteFileAtomic(GetRunStateFilePath(dir), jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write run state file: %w", err)
	}

	return nil
}

// GetLastRunState reads the last-run record. It returns nil without error when
// no run has been recorded yet.
func GetLastRunState(dir string) (*RunState, error) {
	fileData, err := os.ReadFile(GetRunStateFilePath(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run state file: %w", err)
	}

	var state RunState
	if err := json.Unmarshal(fileData, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run state: %w", err)
	}

	return &state, nil
}
