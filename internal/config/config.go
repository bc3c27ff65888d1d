package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	LedgerBackendFile  = "file"
	LedgerBackendRedis = "redis"
)

// Config holds all application configuration
type Config struct {
	// Wallet whose portfolio page is observed
	WalletIdentifier string `yaml:"wallet" validate:"required"`

	// Events must be worth strictly more than this to be reported
	SignificanceThreshold float64 `yaml:"significance_threshold" default:"10000" validate:"gte=0"`

	// How far back an observed event still counts as recent
	RecencyWindow time.Duration `yaml:"recency_window" default:"24h" validate:"gt=0"`

	// Path of the JSON ledger file; defaults to the app data dir
	LedgerStorePath string `yaml:"ledger_path"`

	Ledger  LedgerConfig  `yaml:"ledger"`
	Source  SourceConfig  `yaml:"source"`
	Notify  NotifyConfig  `yaml:"notify"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LedgerConfig selects where the dedup ledger lives
type LedgerConfig struct {
	Backend string      `yaml:"backend" default:"file" validate:"oneof=file redis"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis configuration for the redis ledger backend
type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379" validate:"hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Key      string `yaml:"key"`
}

// SourceConfig describes where extracted snapshots are read from
type SourceConfig struct {
	URL     string        `yaml:"url" validate:"omitempty,url"`
	File    string        `yaml:"file"`
	Timeout time.Duration `yaml:"timeout" default:"60s" validate:"gt=0"`
}

// NotifyConfig holds delivery settings
type NotifyConfig struct {
	SMTP            SMTPConfig    `yaml:"smtp"`
	Timeout         time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	OnlySignificant bool          `yaml:"only_significant"`
	Console         bool          `yaml:"console"`
}

// SMTPConfig holds e-mail delivery settings
type SMTPConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port" default:"587" validate:"gte=1,lte=65535"`
	User     string `yaml:"user" validate:"required_with=Server"`
	Password string `yaml:"password"`
	From     string `yaml:"from" validate:"omitempty,email"`
	To       string `yaml:"to" validate:"omitempty,email"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		// only reachable with a malformed default tag
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	return c
}

// LoadFile overlays values from a YAML file on top of the current configuration
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	return nil
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if wallet := os.Getenv("WALLET_ADDRESS"); wallet != "" {
		c.WalletIdentifier = wallet
	}

	if threshold := os.Getenv("SIGNIFICANCE_THRESHOLD"); threshold != "" {
		if t, err := strconv.ParseFloat(threshold, 64); err == nil {
			c.SignificanceThreshold = t
		}
	}

	if window := os.Getenv("RECENCY_WINDOW"); window != "" {
		if w, err := time.ParseDuration(window); err == nil {
			c.RecencyWindow = w
		}
	}

	if ledgerPath := os.Getenv("LEDGER_PATH"); ledgerPath != "" {
		c.LedgerStorePath = ledgerPath
	}

	if backend := os.Getenv("LEDGER_BACKEND"); backend != "" {
		c.Ledger.Backend = strings.ToLower(backend)
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Ledger.Redis.Addr = addr
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Ledger.Redis.Password = password
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		if d, err := strconv.Atoi(db); err == nil {
			c.Ledger.Redis.DB = d
		}
	}

	if sourceURL := os.Getenv("SOURCE_URL"); sourceURL != "" {
		c.Source.URL = sourceURL
	}

	if sourceFile := os.Getenv("SOURCE_FILE"); sourceFile != "" {
		c.Source.File = sourceFile
	}

	if timeout := os.Getenv("SOURCE_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			c.Source.Timeout = t
		}
	}

	if server := os.Getenv("SMTP_SERVER"); server != "" {
		c.Notify.SMTP.Server = server
	}

	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Notify.SMTP.Port = p
		}
	}

	if user := os.Getenv("EMAIL_USER"); user != "" {
		c.Notify.SMTP.User = user
	}

	if password := os.Getenv("EMAIL_PASS"); password != "" {
		c.Notify.SMTP.Password = password
	}

	if to := os.Getenv("NOTIFY_EMAIL"); to != "" {
		c.Notify.SMTP.To = to
	}

	if timeout := os.Getenv("NOTIFY_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			c.Notify.Timeout = t
		}
	}

	if only := os.Getenv("NOTIFY_ONLY_SIGNIFICANT"); only != "" {
		if b, err := strconv.ParseBool(only); err == nil {
			c.Notify.OnlySignificant = b
		}
	}

	if textfile := os.Getenv("METRICS_TEXTFILE"); textfile != "" {
		c.Metrics.Textfile = textfile
	}
}

// ResolveDefaults fills values that depend on other settings or on the
// application data directory
func (c *Config) ResolveDefaults(appDataDir string) {
	if c.LedgerStorePath == "" {
		c.LedgerStorePath = filepath.Join(appDataDir, "seen_transactions.json")
	}

	if c.Ledger.Redis.Key == "" && c.WalletIdentifier != "" {
		c.Ledger.Redis.Key = "wallet-tracker:ledger:" + strings.ToLower(c.WalletIdentifier)
	}

	if c.Notify.SMTP.From == "" {
		c.Notify.SMTP.From = c.Notify.SMTP.User
	}
}

// Threshold returns the significance threshold as an exact decimal
func (c *Config) Threshold() decimal.Decimal {
	return decimal.NewFromFloat(c.SignificanceThreshold)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Source.URL == "" && c.Source.File == "" {
		return fmt.Errorf("a snapshot source is required: set source.url or source.file")
	}

	if c.Notify.SMTP.Server != "" && c.Notify.SMTP.To == "" {
		return fmt.Errorf("notify.smtp.to is required when an SMTP server is configured")
	}

	return c.ValidateLedger()
}

// ValidateLedger checks only the settings needed to open the ledger store
func (c *Config) ValidateLedger() error {
	switch c.Ledger.Backend {
	case LedgerBackendFile:
		if c.LedgerStorePath == "" {
			return fmt.Errorf("ledger path cannot be empty")
		}
	case LedgerBackendRedis:
		if c.Ledger.Redis.Key == "" {
			return fmt.Errorf("redis ledger key is empty: set a wallet or ledger.redis.key")
		}
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}

	return nil
}
