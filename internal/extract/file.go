package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/models"
)

// FileExtractor reads a snapshot written by an external scraper.
type FileExtractor struct {
	Path string
}

func NewFileExtractor(pathTemplate string) *FileExtractor {
	return &FileExtractor{Path: pathTemplate}
}

func (e *FileExtractor) Extract(ctx context.Context, wallet string) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := resolvePath(e.Path, wallet)
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	snapshot, err := decodeSnapshot(fileData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	logger.Info("Loaded %d holdings and %d activity rows from %s",
		len(snapshot.Holdings), len(snapshot.Activity), path)

	return snapshot, nil
}
