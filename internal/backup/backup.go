// Package backup archives the tracker's local state (ledger and last-run
// record) so a lost or corrupted ledger can be restored by hand.
package backup

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelsos/wallet-tracker/internal/logger"
)

const backupDirName = "backups"

// GetDefaultBackupDir returns the backup directory inside stateDir, creating it if needed
func GetDefaultBackupDir(stateDir string) (string, error) {
	backupDir := filepath.Join(stateDir, backupDirName)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	return backupDir, nil
}

// CreateBackup zips the state files of stateDir plus any extra files (such as
// a ledger kept outside the state directory) into backupDir.
func CreateBackup(stateDir, backupDir string, extra ...string) (backupFile string, err error) {
	if backupDir == "" {
		backupDir, err = GetDefaultBackupDir(stateDir)
		if err != nil {
			return "", err
		}
	} else if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	files, err := collectStateFiles(stateDir)
	if err != nil {
		return "", err
	}
	for _, path := range extra {
		if path == "" || contains(files, path) {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			logger.Debug("Skipping missing file: %s", path)
			continue
		}
		files = append(files, path)
	}

	if len(files) == 0 {
		return "", fmt.Errorf("no state files found in %s", stateDir)
	}

	timestamp := time.Now().Format("20060102_150405")
	backupFile = filepath.Join(backupDir, fmt.Sprintf("wallet_tracker_backup_%s.zip", timestamp))

	zipFile, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}

	zipWriter := zip.NewWriter(zipFile)
	for _, path := range files {
		if err = addToZip(zipWriter, path, archiveName(stateDir, path)); err != nil {
			break
		}
	}

	err = errors.Join(err, zipWriter.Close(), zipFile.Close())
	if err != nil {
		_ = os.Remove(backupFile)
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	logger.Info("Backup created successfully: %s (%d files)", backupFile, len(files))
	return backupFile, nil
}

// collectStateFiles lists the JSON files directly inside stateDir.
func collectStateFiles(stateDir string) ([]string, error) {
	entries, err := os.ReadDir(stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read state directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !ShouldIncludeInBackup(entry.Name(), entry.IsDir()) {
			logger.Debug("Skipping: %s", entry.Name())
			continue
		}
		files = append(files, filepath.Join(stateDir, entry.Name()))
	}

	return files, nil
}

// ShouldIncludeInBackup checks if a state directory entry belongs in the backup.
// Temp files left by an interrupted atomic write are skipped.
func ShouldIncludeInBackup(name string, isDir bool) bool {
	if isDir {
		return false
	}
	if strings.Contains(name, ".tmp-") {
		return false
	}
	return strings.HasSuffix(name, ".json")
}

func archiveName(stateDir, path string) string {
	if rel, err := filepath.Rel(stateDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(path)
}

func addToZip(zipWriter *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = name
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create file in zip: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(writer, file); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	logger.Debug("Added file to backup: %s", name)
	return nil
}

func contains(paths []string, path string) bool {
	for _, p := range paths {
		if filepath.Clean(p) == filepath.Clean(path) {
			return true
		}
	}
	return false
}
