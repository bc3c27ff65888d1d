package extract

import (
	"encoding/json"
	"fmt"

	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/models"
)

// rawSnapshot defers decoding of individual records so that one unparseable
// row does not discard the rest of the page.
type rawSnapshot struct {
	Holdings []json.RawMessage `json:"holdings"`
	Activity []json.RawMessage `json:"activity"`
}

// decodeSnapshot parses a snapshot document. Records that fail to decode are
// skipped; only a document that is not a snapshot at all is an error.
func decodeSnapshot(data []byte) (*models.Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error decoding snapshot: %w", err)
	}

	holdings, droppedHoldings := decodeRecords[models.Holding](raw.Holdings)
	activity, droppedActivity := decodeRecords[models.ActivityEvent](raw.Activity)

	if droppedHoldings > 0 || droppedActivity > 0 {
		logger.Debug("Dropped %d holdings and %d activity rows that could not be parsed",
			droppedHoldings, droppedActivity)
	}

	return &models.Snapshot{Holdings: holdings, Activity: activity}, nil
}

func decodeRecords[T any](records []json.RawMessage) ([]T, int) {
	decoded := make([]T, 0, len(records))
	dropped := 0

	for i, record := range records {
		var v T
		if err := json.Unmarshal(record, &v); err != nil {
			logger.Debug("Skipping record %d: %v", i, err)
			dropped++
			continue
		}
		decoded = append(decoded, v)
	}

	return decoded, dropped
}
