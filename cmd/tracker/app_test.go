package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/wallet-tracker/internal/config"
	"github.com/kelsos/wallet-tracker/internal/extract"
	"github.com/kelsos/wallet-tracker/internal/ledger"
	"github.com/kelsos/wallet-tracker/internal/notify"
)

func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestLoadConfigFlagPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("WALLET_TRACKER_HOME", home)
	t.Setenv("WALLET_ADDRESS", "0xenv")
	t.Setenv("SIGNIFICANCE_THRESHOLD", "500")

	opts := &options{wallet: "0xflag", threshold: 20000, window: "2d"}

	cfg, stateDir, err := loadConfig(opts, changedSet("wallet", "window"))
	require.NoError(t, err)

	assert.Equal(t, home, stateDir)
	assert.Equal(t, "0xflag", cfg.WalletIdentifier)
	// threshold flag was not set, so the environment wins
	assert.Equal(t, 500.0, cfg.SignificanceThreshold)
	assert.Equal(t, 48*time.Hour, cfg.RecencyWindow)
	assert.Equal(t, filepath.Join(home, "seen_transactions.json"), cfg.LedgerStorePath)
}

func TestLoadConfigRejectsBadWindow(t *testing.T) {
	t.Setenv("WALLET_TRACKER_HOME", t.TempDir())

	_, _, err := loadConfig(&options{window: "soon"}, changedSet("window"))
	assert.Error(t, err)
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "24h", want: 24 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: "3d", want: 72 * time.Hour},
		{in: "0d", wantErr: true},
		{in: "xd", wantErr: true},
		{in: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWindow(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenStore(t *testing.T) {
	cfg := config.NewConfig()
	cfg.LedgerStorePath = filepath.Join(t.TempDir(), "ledger.json")

	store, closeStore := openStore(cfg)
	defer closeStore()
	assert.IsType(t, &ledger.FileStore{}, store)

	mr := miniredis.RunT(t)
	cfg.Ledger.Backend = config.LedgerBackendRedis
	cfg.Ledger.Redis.Addr = mr.Addr()
	cfg.Ledger.Redis.Key = "wallet-tracker:ledger:0xabc"

	redisStore, closeRedis := openStore(cfg)
	defer closeRedis()
	assert.IsType(t, &ledger.RedisStore{}, redisStore)
}

func TestNewExtractorPrefersURL(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Source.File = "snapshot.json"
	assert.IsType(t, &extract.FileExtractor{}, newExtractor(cfg))

	cfg.Source.URL = "https://example.com/{wallet}"
	assert.IsType(t, &extract.HTTPExtractor{}, newExtractor(cfg))
}

func TestNewDeliverer(t *testing.T) {
	var out bytes.Buffer
	cfg := config.NewConfig()

	assert.IsType(t, &notify.ConsoleDeliverer{}, newDeliverer(cfg, &out))

	cfg.Notify.SMTP.Server = "smtp.example.com"
	cfg.Notify.SMTP.To = "me@example.com"
	assert.IsType(t, &notify.SMTPDeliverer{}, newDeliverer(cfg, &out))

	cfg.Notify.Console = true
	multi, ok := newDeliverer(cfg, &out).(notify.Multi)
	require.True(t, ok)
	assert.Len(t, multi, 2)
}
