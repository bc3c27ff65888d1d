// Package report assembles the ranked portfolio summary sent after each run.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kelsos/wallet-tracker/internal/models"
	"github.com/kelsos/wallet-tracker/internal/portfolio"
)

// TopN is the number of holdings kept in the ranked table.
const TopN = 10

var hundred = decimal.NewFromInt(100)

// Build ranks consolidated holdings by USD value and attaches the significant
// events unchanged. It performs no I/O and is deterministic: ties keep their
// input order.
func Build(holdings []models.Holding, significant []models.ActivityEvent) models.Report {
	total := portfolio.TotalValue(holdings)

	sorted := make([]models.Holding, len(holdings))
	copy(sorted, holdings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ValueUSD.GreaterThan(sorted[j].ValueUSD)
	})

	if len(sorted) > TopN {
		sorted = sorted[:TopN]
	}

	ranked := make([]models.RankedHolding, 0, len(sorted))
	for i, h := range sorted {
		ranked = append(ranked, models.RankedHolding{
			Holding:        h,
			Rank:           i + 1,
			PercentOfTotal: percentOf(h.ValueUSD, total),
		})
	}

	events := make([]models.ActivityEvent, len(significant))
	copy(events, significant)

	return models.Report{
		TotalPortfolioValue: total,
		RankedHoldings:      ranked,
		SignificantEvents:   events,
		HoldingCount:        len(holdings),
	}
}

func percentOf(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Mul(hundred).Div(total)
}
