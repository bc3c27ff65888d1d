package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/storage"
)

// FileStore keeps the ledger as a JSON array of ids in a single file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) String() string {
	return "file:" + s.Path
}

func (s *FileStore) Load(_ context.Context) *Ledger {
	fileData, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("No ledger at %s, starting empty", s.Path)
		return New()
	}
	if err != nil {
		logger.Warn("Failed to read ledger %s, treating every event as new: %v", s.Path, err)
		return New()
	}

	var ids []string
	if err := json.Unmarshal(fileData, &ids); err != nil {
		logger.Warn("Ledger %s is corrupt, treating every event as new: %v", s.Path, err)
		return New()
	}

	logger.Debug("Loaded %d seen event ids from %s", len(ids), s.Path)
	return New(ids...)
}

func (s *FileStore) Save(_ context.Context, l *Ledger) error {
	jsonData, err := json.Marshal(l.IDs())
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	if err := storage.WriteFileAtomic(s.Path, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}

	logger.Debug("Saved %d seen event ids to %s", l.Len(), s.Path)
	return nil
}
