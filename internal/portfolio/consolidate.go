// Package portfolio merges raw per-chain holding records into one position per token.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/models"
)

// Consolidate groups raw holdings by token (exact match), summing amount and
// USD value and merging chains. Output keeps first-seen token order. Records
// without a token, with negative figures, or without a positive value are dropped.
func Consolidate(raw []models.Holding) []models.Holding {
	consolidated := make([]models.Holding, 0, len(raw))
	index := make(map[string]int)
	chainSets := make([]map[string]struct{}, 0, len(raw))
	dropped := 0

	for _, h := range raw {
		h, ok := normalize(h)
		if !ok {
			dropped++
			continue
		}

		i, exists := index[h.Token]
		if !exists {
			index[h.Token] = len(consolidated)
			consolidated = append(consolidated, models.Holding{
				Token:    h.Token,
				Price:    h.Price,
				Amount:   h.Amount,
				ValueUSD: h.ValueUSD,
			})
			chainSets = append(chainSets, chainSet(h.Chains))
			continue
		}

		consolidated[i].Amount = consolidated[i].Amount.Add(h.Amount)
		consolidated[i].ValueUSD = consolidated[i].ValueUSD.Add(h.ValueUSD)
		for _, chain := range h.Chains {
			if chain != "" {
				chainSets[i][chain] = struct{}{}
			}
		}
	}

	for i := range consolidated {
		consolidated[i].Chains = sortedChains(chainSets[i])
	}

	if dropped > 0 {
		logger.Debug("Dropped %d malformed holding records", dropped)
	}
	logger.Debug("Consolidated %d raw holdings into %d positions", len(raw), len(consolidated))

	return consolidated
}

// normalize derives an unobserved value from price and amount and reports
// whether the record is usable.
func normalize(h models.Holding) (models.Holding, bool) {
	if h.Token == "" {
		return h, false
	}
	if h.Price.IsNegative() || h.Amount.IsNegative() || h.ValueUSD.IsNegative() {
		return h, false
	}
	if h.ValueUSD.IsZero() && h.Price.IsPositive() && h.Amount.IsPositive() {
		h.ValueUSD = h.Price.Mul(h.Amount)
	}
	return h, h.ValueUSD.IsPositive()
}

func chainSet(chains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(chains))
	for _, chain := range chains {
		if chain != "" {
			set[chain] = struct{}{}
		}
	}
	return set
}

func sortedChains(set map[string]struct{}) []string {
	chains := make([]string, 0, len(set))
	for chain := range set {
		chains = append(chains, chain)
	}
	sort.Strings(chains)
	return chains
}

// TotalValue sums the USD value of the given holdings.
func TotalValue(holdings []models.Holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.ValueUSD)
	}
	return total
}
