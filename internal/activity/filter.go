// Package activity selects the wallet activity that is worth reporting.
package activity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelsos/wallet-tracker/internal/ledger"
	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/models"
	"github.com/kelsos/wallet-tracker/internal/utils"
)

// Filter classifies events as new and significant.
type Filter struct {
	// Threshold is exclusive: an event must be worth strictly more.
	Threshold decimal.Decimal
	// Window is how far back from Now an observation still counts as recent.
	Window time.Duration
	Now    func() time.Time
}

// Selection is the outcome of running the filter over one batch.
type Selection struct {
	New         []models.ActivityEvent
	Significant []models.ActivityEvent
}

func NewFilter(threshold decimal.Decimal, window time.Duration) *Filter {
	return &Filter{
		Threshold: threshold,
		Window:    window,
		Now:       time.Now,
	}
}

// IsSignificant reports whether the event is valuable and recent enough,
// ignoring whether it was seen before.
func (f *Filter) IsSignificant(event models.ActivityEvent, now time.Time) bool {
	return event.ValueUSD.GreaterThan(f.Threshold) &&
		utils.WithinWindow(event.ObservedAt, now, f.Window)
}

// Select returns the events that are both new to the ledger and significant,
// in input order. Every new event is recorded into seen, significant or not,
// so an event can never be reported on a later run.
func (f *Filter) Select(events []models.ActivityEvent, seen *ledger.Ledger) Selection {
	now := f.now()
	selection := Selection{
		New:         make([]models.ActivityEvent, 0, len(events)),
		Significant: make([]models.ActivityEvent, 0),
	}

	for _, event := range events {
		if !seen.IsNew(event.ID) {
			continue
		}
		seen.Record(event.ID)
		selection.New = append(selection.New, event)

		if f.IsSignificant(event, now) {
			selection.Significant = append(selection.Significant, event)
		}
	}

	logger.Info("Found %d events (%d new, %d significant over $%s)",
		len(events), len(selection.New), len(selection.Significant), f.Threshold.StringFixed(2))

	return selection
}

func (f *Filter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}
