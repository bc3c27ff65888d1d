package models

import "github.com/shopspring/decimal"

// Report is the summary handed to the delivery side after each run.
type Report struct {
	TotalPortfolioValue decimal.Decimal `json:"total_portfolio_value"`
	RankedHoldings      []RankedHolding `json:"ranked_holdings"`
	SignificantEvents   []ActivityEvent `json:"significant_events"`
	HoldingCount        int             `json:"holding_count"`
}
