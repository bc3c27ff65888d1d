package models

import "github.com/shopspring/decimal"

// Holding is a position in one token. Raw holdings come straight from the
// extraction source; consolidated holdings carry one entry per token.
type Holding struct {
	Token    string          `json:"token"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
	ValueUSD decimal.Decimal `json:"value_usd"`
	Chains   []string        `json:"chains,omitempty"`
}

// RankedHolding is a consolidated holding annotated with its share of the portfolio.
type RankedHolding struct {
	Holding
	Rank           int             `json:"rank"`
	PercentOfTotal decimal.Decimal `json:"percent_of_total"`
}
