package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kelsos/wallet-tracker/internal/config"
	"github.com/kelsos/wallet-tracker/internal/extract"
	"github.com/kelsos/wallet-tracker/internal/ledger"
	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/notify"
	"github.com/kelsos/wallet-tracker/internal/storage"
)

// options holds values given on the command line. Only flags the user set
// override the configuration.
type options struct {
	configFile      string
	wallet          string
	threshold       float64
	window          string
	ledgerPath      string
	sourceURL       string
	sourceFile      string
	console         bool
	tui             bool
	metricsTextfile string
}

// loadConfig resolves the configuration in order: defaults, YAML file,
// environment, command line flags.
func loadConfig(opts *options, changed func(name string) bool) (*config.Config, string, error) {
	cfg := config.NewConfig()

	if opts.configFile != "" {
		if err := cfg.LoadFile(opts.configFile); err != nil {
			return nil, "", err
		}
	}

	cfg.LoadFromEnvironment()

	if changed("wallet") {
		cfg.WalletIdentifier = opts.wallet
	}
	if changed("threshold") {
		cfg.SignificanceThreshold = opts.threshold
	}
	if changed("window") {
		window, err := parseWindow(opts.window)
		if err != nil {
			return nil, "", err
		}
		cfg.RecencyWindow = window
	}
	if changed("ledger") {
		cfg.LedgerStorePath = opts.ledgerPath
	}
	if changed("source-url") {
		cfg.Source.URL = opts.sourceURL
	}
	if changed("source-file") {
		cfg.Source.File = opts.sourceFile
	}
	if changed("console") {
		cfg.Notify.Console = opts.console
	}
	if changed("metrics-textfile") {
		cfg.Metrics.Textfile = opts.metricsTextfile
	}

	stateDir, err := storage.GetAppDataDir()
	if err != nil {
		return nil, "", err
	}
	cfg.ResolveDefaults(stateDir)

	return cfg, stateDir, nil
}

// openStore returns the ledger store and a function releasing its resources.
func openStore(cfg *config.Config) (ledger.Store, func()) {
	switch cfg.Ledger.Backend {
	case config.LedgerBackendRedis:
		client := ledger.NewRedisClient(ledger.RedisOptions{
			Addr:     cfg.Ledger.Redis.Addr,
			Password: cfg.Ledger.Redis.Password,
			DB:       cfg.Ledger.Redis.DB,
		})
		store := ledger.NewRedisStore(client, cfg.Ledger.Redis.Key)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close Redis connection: %v", err)
			}
		}
	default:
		return ledger.NewFileStore(cfg.LedgerStorePath), func() {}
	}
}

// newExtractor prefers the HTTP source when both are configured.
func newExtractor(cfg *config.Config) extract.Extractor {
	if cfg.Source.URL != "" {
		return extract.NewHTTPExtractor(cfg.Source.URL, cfg.Source.Timeout)
	}
	return extract.NewFileExtractor(cfg.Source.File)
}

// newDeliverer builds the configured delivery channels. The console is used
// when nothing else is configured so that a report is never silently dropped.
func newDeliverer(cfg *config.Config, console io.Writer) notify.Deliverer {
	var deliverers notify.Multi

	if cfg.Notify.SMTP.Server != "" {
		deliverers = append(deliverers, notify.NewSMTPDeliverer(notify.SMTPOptions{
			Server:    cfg.Notify.SMTP.Server,
			Port:      cfg.Notify.SMTP.Port,
			User:      cfg.Notify.SMTP.User,
			Password:  cfg.Notify.SMTP.Password,
			From:      cfg.Notify.SMTP.From,
			To:        cfg.Notify.SMTP.To,
			Threshold: cfg.Threshold(),
		}))
	}

	if cfg.Notify.Console || len(deliverers) == 0 {
		if len(deliverers) == 0 {
			logger.Warn("No SMTP server configured, printing the report to the console")
		}
		deliverers = append(deliverers, notify.NewConsoleDeliverer(console, cfg.Threshold()))
	}

	if len(deliverers) == 1 {
		return deliverers[0]
	}
	return deliverers
}

// parseWindow accepts Go durations plus a day suffix, e.g. "2d".
func parseWindow(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid window %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	window, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", s, err)
	}
	return window, nil
}
