package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownDestination is used when the counterparty address could not be extracted.
const UnknownDestination = "unknown"

type ActivityEvent struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	QuantityLabel string          `json:"quantity_label"`
	Token         string          `json:"token"`
	ValueUSD      decimal.Decimal `json:"value_usd"`
	ObservedAt    time.Time       `json:"observed_at"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
}

// Snapshot is what the extraction source returns for one wallet.
type Snapshot struct {
	Holdings []Holding       `json:"holdings"`
	Activity []ActivityEvent `json:"activity"`
}
