package activity

import (
	"time"

	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/models"
)

// Normalize prepares raw events from the extraction source. Events without an
// id or a positive value are dropped. Events without an observation time are
// stamped with now, the ingestion time, since the source does not provide a
// reliable event time.
func Normalize(raw []models.ActivityEvent, wallet string, now time.Time) []models.ActivityEvent {
	events := make([]models.ActivityEvent, 0, len(raw))

	for _, event := range raw {
		if event.ID == "" || !event.ValueUSD.IsPositive() {
			continue
		}
		if event.ObservedAt.IsZero() {
			event.ObservedAt = now
		}
		if event.Origin == "" {
			event.Origin = wallet
		}
		if event.Destination == "" {
			event.Destination = models.UnknownDestination
		}
		events = append(events, event)
	}

	if dropped := len(raw) - len(events); dropped > 0 {
		logger.Debug("Dropped %d malformed activity records", dropped)
	}

	return events
}
