// Package pipeline runs one extract, filter, report, deliver and persist cycle
// for a wallet.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kelsos/wallet-tracker/internal/activity"
	"github.com/kelsos/wallet-tracker/internal/config"
	"github.com/kelsos/wallet-tracker/internal/extract"
	"github.com/kelsos/wallet-tracker/internal/ledger"
	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/metrics"
	"github.com/kelsos/wallet-tracker/internal/models"
	"github.com/kelsos/wallet-tracker/internal/notify"
	"github.com/kelsos/wallet-tracker/internal/portfolio"
	"github.com/kelsos/wallet-tracker/internal/report"
	"github.com/kelsos/wallet-tracker/internal/storage"
)

// Result describes a finished run.
type Result struct {
	RunID       string
	Wallet      string
	Outcome     Outcome
	Err         error
	StartedAt   time.Time
	FinishedAt  time.Time
	Report      *models.Report
	Extracted   int
	NewEvents   int
	Significant int
	LedgerSize  int
	Delivered   bool
	DeliveryErr error
}

// Tracker wires the collaborators of the pipeline. A Tracker holds no per-run
// state and may run repeatedly, but runs against the same ledger must not
// overlap.
type Tracker struct {
	cfg       *config.Config
	extractor extract.Extractor
	store     ledger.Store
	deliverer notify.Deliverer

	observers []Observer
	metrics   *metrics.Recorder
	stateDir  string
	now       func() time.Time
}

type Option func(*Tracker)

func WithObserver(o Observer) Option {
	return func(t *Tracker) {
		t.observers = append(t.observers, o)
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(t *Tracker) {
		t.metrics = r
	}
}

// WithClock replaces the clock used for ingestion time and the recency window.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithRunState records the outcome of every run in dir.
func WithRunState(dir string) Option {
	return func(t *Tracker) {
		t.stateDir = dir
	}
}

// New creates a Tracker. A nil deliverer disables delivery.
func New(cfg *config.Config, extractor extract.Extractor, store ledger.Store, deliverer notify.Deliverer, opts ...Option) *Tracker {
	t := &Tracker{
		cfg:       cfg,
		extractor: extractor,
		store:     store,
		deliverer: deliverer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// run carries the state of a single RunOnce invocation.
type run struct {
	tracker    *Tracker
	result     *Result
	seen       *ledger.Ledger
	stage      Stage
	stageStart time.Time
}

// RunOnce executes one full pipeline pass. The returned Result is never nil.
// A non-nil error wraps ErrExtractionFailed (nothing was persisted or sent) or
// ErrLedgerWrite (the report may have been sent but the ledger is stale).
// Delivery failures do not fail the run; see Result.DeliveryErr.
func (t *Tracker) RunOnce(ctx context.Context) (*Result, error) {
	wallet := t.cfg.WalletIdentifier
	r := &run{
		tracker: t,
		result: &Result{
			RunID:     uuid.NewString(),
			Wallet:    wallet,
			StartedAt: t.now(),
		},
	}
	logger.Info("Starting run %s for wallet %s (ledger %s)", r.result.RunID, wallet, t.store)

	r.seen = t.store.Load(ctx)
	logger.Debug("Ledger holds %d seen events", r.seen.Len())

	r.enter(StageExtracting, "Fetching wallet snapshot")
	extractCtx, cancel := context.WithTimeout(ctx, t.cfg.Source.Timeout)
	snapshot, err := t.extractor.Extract(extractCtx, wallet)
	cancel()
	if err == nil && snapshot == nil {
		err = errors.New("extractor returned no snapshot")
	}
	if err != nil {
		logger.Error("Failed to fetch wallet data, aborting: %v", err)
		return r.finish(OutcomeAborted, fmt.Errorf("%w: %w", ErrExtractionFailed, err))
	}
	r.result.Extracted = len(snapshot.Activity)

	now := t.now()

	r.enter(StageConsolidating, fmt.Sprintf("Consolidating %d holdings", len(snapshot.Holdings)))
	holdings := portfolio.Consolidate(snapshot.Holdings)
	events := activity.Normalize(snapshot.Activity, wallet, now)

	r.enter(StageFiltering, fmt.Sprintf("Filtering %d events", len(events)))
	filter := activity.NewFilter(t.cfg.Threshold(), t.cfg.RecencyWindow)
	filter.Now = func() time.Time { return now }
	selection := filter.Select(events, r.seen)
	r.result.NewEvents = len(selection.New)
	r.result.Significant = len(selection.Significant)

	r.enter(StageReporting, "Building report")
	rep := report.Build(holdings, selection.Significant)
	r.result.Report = &rep

	r.enter(StageDelivering, fmt.Sprintf("Delivering %d significant events", len(rep.SignificantEvents)))
	t.deliver(ctx, r.result, rep, wallet)

	r.enter(StagePersisting, fmt.Sprintf("Saving %d ledger entries", r.seen.Len()))
	if err := t.store.Save(ctx, r.seen); err != nil {
		logger.Error("Failed to save ledger to %s: %v", t.store, err)
		return r.finish(OutcomeFailed, fmt.Errorf("%w: %w", ErrLedgerWrite, err))
	}

	return r.finish(OutcomeCompleted, nil)
}

func (t *Tracker) deliver(ctx context.Context, result *Result, rep models.Report, wallet string) {
	switch {
	case t.deliverer == nil:
		logger.Warn("No deliverer configured, report not sent")
		return
	case t.cfg.Notify.OnlySignificant && len(rep.SignificantEvents) == 0:
		logger.Info("No significant events, skipping delivery")
		return
	}

	deliverCtx, cancel := context.WithTimeout(ctx, t.cfg.Notify.Timeout)
	defer cancel()

	if err := t.deliverer.Deliver(deliverCtx, rep, wallet); err != nil {
		logger.Error("Error sending report: %v", err)
		result.DeliveryErr = fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
		if t.metrics != nil {
			t.metrics.RecordDeliveryFailure()
		}
		return
	}

	result.Delivered = true
}

func (r *run) enter(stage Stage, message string) {
	r.closeStage()
	r.stage = stage
	r.stageStart = time.Now()
	logger.Debug("Run %s: %s", r.result.RunID, message)
	r.tracker.notify(Update{RunID: r.result.RunID, Stage: stage, Message: message})
}

func (r *run) closeStage() {
	if r.stage == "" || r.tracker.metrics == nil {
		return
	}
	r.tracker.metrics.RecordStage(string(r.stage), time.Since(r.stageStart))
}

func (r *run) finish(outcome Outcome, err error) (*Result, error) {
	r.closeStage()

	t := r.tracker
	result := r.result
	result.Outcome = outcome
	result.Err = err
	result.FinishedAt = t.now()
	result.LedgerSize = r.seen.Len()

	if t.metrics != nil {
		t.metrics.RecordRun(string(outcome), result.FinishedAt)
		t.metrics.RecordEvents(result.Extracted, result.NewEvents, result.Significant)
		t.metrics.RecordLedgerSize(result.LedgerSize)
		if result.Report != nil {
			t.metrics.RecordPortfolio(result.Report.TotalPortfolioValue.InexactFloat64(), result.Report.HoldingCount)
		}
	}

	if t.stateDir != "" {
		if saveErr := storage.SaveRunState(t.stateDir, result.runState()); saveErr != nil {
			logger.Warn("Failed to record run state: %v", saveErr)
		}
	}

	switch outcome {
	case OutcomeCompleted:
		logger.Info("Run %s completed: %d new events, %d significant, ledger size %d",
			result.RunID, result.NewEvents, result.Significant, result.LedgerSize)
	default:
		logger.Error("Run %s %s: %v", result.RunID, outcome, err)
	}

	t.notify(Update{RunID: result.RunID, Stage: StageDone, Message: string(outcome), Result: result})
	return result, err
}

func (t *Tracker) notify(update Update) {
	for _, o := range t.observers {
		o.Observe(update)
	}
}

func (r *Result) runState() storage.RunState {
	state := storage.RunState{
		RunID:      r.RunID,
		Wallet:     r.Wallet,
		Outcome:    string(r.Outcome),
		NewEvents:  r.NewEvents,
		Reported:   r.Significant,
		LedgerSize: r.LedgerSize,
		StartedAt:  r.StartedAt.Unix(),
		FinishedAt: r.FinishedAt.Unix(),
	}
	switch {
	case r.Err != nil:
		state.Error = r.Err.Error()
	case r.DeliveryErr != nil:
		state.Error = r.DeliveryErr.Error()
	}
	return state
}
