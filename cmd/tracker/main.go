package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kelsos/wallet-tracker/internal/backup"
	"github.com/kelsos/wallet-tracker/internal/config"
	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/metrics"
	"github.com/kelsos/wallet-tracker/internal/pipeline"
	"github.com/kelsos/wallet-tracker/internal/storage"
	"github.com/kelsos/wallet-tracker/internal/tui"
	"github.com/kelsos/wallet-tracker/internal/utils"
)

func runTracker(ctx context.Context, cfg *config.Config, stateDir string, useTUI bool) error {
	store, closeStore := openStore(cfg)
	defer closeStore()

	var consoleOut bytes.Buffer
	deliverer := newDeliverer(cfg, &consoleOut)

	recorder := metrics.New()
	opts := []pipeline.Option{
		pipeline.WithMetrics(recorder),
		pipeline.WithRunState(stateDir),
	}

	var monitor *tui.RunMonitor
	if useTUI {
		monitor = tui.NewRunMonitor(cfg.WalletIdentifier)
		opts = append(opts, pipeline.WithObserver(monitor))
	}

	tracker := pipeline.New(cfg, newExtractor(cfg), store, deliverer, opts...)

	var result *pipeline.Result
	run := func() error {
		var err error
		result, err = tracker.RunOnce(ctx)
		return err
	}

	var err error
	if monitor != nil {
		err = monitor.Run(run)
	} else {
		err = run()
	}

	// console reports are buffered so they never interleave with the monitor
	if consoleOut.Len() > 0 {
		fmt.Print(consoleOut.String())
	}

	if cfg.Metrics.Textfile != "" {
		if writeErr := recorder.WriteTextfile(cfg.Metrics.Textfile); writeErr != nil {
			logger.Warn("%v", writeErr)
		}
	}

	if err != nil {
		return err
	}
	if result != nil && result.DeliveryErr != nil {
		return result.DeliveryErr
	}
	return nil
}

func main() {
	utils.LoadEnvironment()
	logger.Init()

	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "wallet-tracker",
		Short: "Report significant wallet activity",
		Long: `wallet-tracker inspects a wallet's portfolio snapshot, reports new activity
above a value threshold together with the top holdings, and remembers which
events were already seen so that nothing is reported twice.

Each invocation performs exactly one run; schedule it with cron or CI.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, stateDir, err := loadConfig(opts, cmd.Flags().Changed)
			if err != nil {
				logger.Fatal("Failed to load configuration: %v", err)
			}
			if err := cfg.Validate(); err != nil {
				logger.Fatal("%v", err)
			}

			if opts.tui {
				if err := logger.InitFileOnly(); err != nil {
					logger.Fatal("Failed to initialize file logger: %v", err)
				}
				defer logger.Close()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runTracker(ctx, cfg, stateDir, opts.tui); err != nil {
				stop()
				if opts.tui {
					// Fatal exits without running defers; report on the terminal
					logger.Close()
					logger.Init()
				}
				logger.Fatal("Run failed: %v", err)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML configuration file")
	flags.StringVarP(&opts.wallet, "wallet", "w", "", "Wallet identifier to track (env: WALLET_ADDRESS)")
	flags.StringVarP(&opts.ledgerPath, "ledger", "l", "", "Path of the seen-events ledger file (default: ~/.wallet-tracker/seen_transactions.json)")

	rootCmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 10000, "Report events worth strictly more than this many USD")
	rootCmd.Flags().StringVarP(&opts.window, "window", "", "24h", "Recency window, e.g. 24h or 2d")
	rootCmd.Flags().StringVarP(&opts.sourceURL, "source-url", "", "", "Snapshot URL; {wallet} is replaced with the wallet")
	rootCmd.Flags().StringVarP(&opts.sourceFile, "source-file", "", "", "Snapshot file; {wallet} is replaced with the wallet")
	rootCmd.Flags().BoolVarP(&opts.console, "console", "", false, "Also print the report to the terminal")
	rootCmd.Flags().BoolVarP(&opts.tui, "tui", "", false, "Show a live monitor of the run")
	rootCmd.Flags().StringVarP(&opts.metricsTextfile, "metrics-textfile", "", "", "Write Prometheus metrics to this file")

	var listIDs bool
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show the seen-events ledger",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, _, err := loadConfig(opts, cmd.Flags().Changed)
			if err != nil {
				logger.Fatal("Failed to load configuration: %v", err)
			}
			if err := cfg.ValidateLedger(); err != nil {
				logger.Fatal("%v", err)
			}

			store, closeStore := openStore(cfg)
			defer closeStore()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			seen := store.Load(ctx)
			fmt.Printf("Ledger %s holds %d events\n", store, seen.Len())
			if listIDs {
				for _, id := range seen.IDs() {
					fmt.Println(id)
				}
			}
		},
	}
	ledgerCmd.Flags().BoolVarP(&listIDs, "list", "", false, "Print every event id")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the outcome of the last run",
		Run: func(cmd *cobra.Command, args []string) {
			stateDir, err := storage.GetAppDataDir()
			if err != nil {
				logger.Fatal("%v", err)
			}

			state, err := storage.GetLastRunState(stateDir)
			if err != nil {
				logger.Fatal("Failed to read last run: %v", err)
			}
			if state == nil {
				fmt.Println("No run recorded yet")
				return
			}

			fmt.Printf("Run:        %s\n", state.RunID)
			fmt.Printf("Wallet:     %s\n", state.Wallet)
			fmt.Printf("Outcome:    %s\n", state.Outcome)
			fmt.Printf("Started:    %s\n", time.Unix(state.StartedAt, 0).Format(time.RFC3339))
			fmt.Printf("Finished:   %s\n", time.Unix(state.FinishedAt, 0).Format(time.RFC3339))
			fmt.Printf("New events: %d (%d reported)\n", state.NewEvents, state.Reported)
			fmt.Printf("Ledger:     %d events\n", state.LedgerSize)
			if state.Error != "" {
				fmt.Printf("Error:      %s\n", state.Error)
			}
		},
	}

	var backupDir string
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the tracker state",
		Long:  `Create a zip archive of the ledger and the last-run record.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, stateDir, err := loadConfig(opts, cmd.Flags().Changed)
			if err != nil {
				logger.Fatal("Failed to load configuration: %v", err)
			}

			backupFile, err := backup.CreateBackup(stateDir, backupDir, cfg.LedgerStorePath)
			if err != nil {
				logger.Fatal("Failed to create backup: %v", err)
			}
			fmt.Println(backupFile)
		},
	}
	backupCmd.Flags().StringVarP(&backupDir, "backup-dir", "", "", "Directory where the backup will be stored (default: ~/.wallet-tracker/backups)")

	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(backupCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}
