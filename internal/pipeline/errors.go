package pipeline

import "errors"

var (
	// ErrExtractionFailed aborts a run before any state is touched.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrLedgerWrite fails a run whose ledger could not be persisted.
	ErrLedgerWrite = errors.New("ledger write failed")
	// ErrDeliveryFailed is recorded on the result; the run still completes.
	ErrDeliveryFailed = errors.New("delivery failed")
)
