// Package metrics exposes run statistics in the Prometheus text format. A
// one-shot process has nothing to scrape, so the registry is written to a
// file for the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wallet_tracker"

// Recorder collects the metrics of one tracker process.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	eventsTotal      *prometheus.CounterVec
	deliveryFailures prometheus.Counter
	stageDuration    *prometheus.HistogramVec
	portfolioValue   prometheus.Gauge
	holdingCount     prometheus.Gauge
	ledgerSize       prometheus.Gauge
	lastRunTimestamp *prometheus.GaugeVec
}

// New creates a recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Activity events by classification",
			},
			[]string{"class"},
		),
		deliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Reports that could not be delivered",
		}),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		portfolioValue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "portfolio_value_usd",
			Help:      "Total USD value of the consolidated holdings",
		}),
		holdingCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "holdings",
			Help:      "Number of consolidated holdings",
		}),
		ledgerSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_size",
			Help:      "Number of event ids in the dedup ledger",
		}),
		lastRunTimestamp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last run by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Registry returns the gatherer holding every metric of the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) RecordRun(outcome string, finished time.Time) {
	r.runsTotal.WithLabelValues(outcome).Inc()
	r.lastRunTimestamp.WithLabelValues(outcome).Set(float64(finished.Unix()))
}

// RecordEvents records the raw, new and significant event counts of a run.
func (r *Recorder) RecordEvents(extracted, fresh, significant int) {
	r.eventsTotal.WithLabelValues("extracted").Add(float64(extracted))
	r.eventsTotal.WithLabelValues("new").Add(float64(fresh))
	r.eventsTotal.WithLabelValues("significant").Add(float64(significant))
}

func (r *Recorder) RecordDeliveryFailure() {
	r.deliveryFailures.Inc()
}

func (r *Recorder) RecordStage(stage string, elapsed time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (r *Recorder) RecordPortfolio(valueUSD float64, holdings int) {
	r.portfolioValue.Set(valueUSD)
	r.holdingCount.Set(float64(holdings))
}

func (r *Recorder) RecordLedgerSize(size int) {
	r.ledgerSize.Set(float64(size))
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
