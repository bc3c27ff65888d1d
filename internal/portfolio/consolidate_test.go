package portfolio

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/wallet-tracker/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConsolidateMergesAcrossChains(t *testing.T) {
	raw := []models.Holding{
		{Token: "A", Amount: d("1"), ValueUSD: d("100"), Chains: []string{"X"}},
		{Token: "A", Amount: d("2"), ValueUSD: d("200"), Chains: []string{"Y"}},
		{Token: "B", Amount: d("5"), ValueUSD: d("50")},
	}

	got := Consolidate(raw)

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Token)
	assert.True(t, got[0].Amount.Equal(d("3")))
	assert.True(t, got[0].ValueUSD.Equal(d("300")))
	assert.Equal(t, []string{"X", "Y"}, got[0].Chains)

	assert.Equal(t, "B", got[1].Token)
	assert.True(t, got[1].Amount.Equal(d("5")))
	assert.True(t, got[1].ValueUSD.Equal(d("50")))
	assert.Empty(t, got[1].Chains)
}

func TestConsolidateEmptyInput(t *testing.T) {
	got := Consolidate(nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestConsolidateDropsMalformedRecords(t *testing.T) {
	raw := []models.Holding{
		{Token: "", Amount: d("1"), ValueUSD: d("10")},
		{Token: "ZERO", Amount: d("1"), ValueUSD: d("0")},
		{Token: "NEG", Amount: d("-1"), ValueUSD: d("10")},
		{Token: "OK", Amount: d("1"), ValueUSD: d("10")},
	}

	got := Consolidate(raw)

	require.Len(t, got, 1)
	assert.Equal(t, "OK", got[0].Token)
}

func TestConsolidateDerivesValueFromPriceAndAmount(t *testing.T) {
	raw := []models.Holding{
		{Token: "ETH", Price: d("2500.5"), Amount: d("2")},
	}

	got := Consolidate(raw)

	require.Len(t, got, 1)
	assert.True(t, got[0].ValueUSD.Equal(d("5001")))
}

func TestConsolidateDropsNegativeObservedValue(t *testing.T) {
	raw := []models.Holding{
		{Token: "X", Price: d("2"), Amount: d("3"), ValueUSD: d("-100")},
		{Token: "Y", Price: d("2"), Amount: d("3")},
	}

	got := Consolidate(raw)

	require.Len(t, got, 1)
	assert.Equal(t, "Y", got[0].Token)
	assert.True(t, got[0].ValueUSD.Equal(d("6")))
}

func TestConsolidateIsCaseSensitive(t *testing.T) {
	raw := []models.Holding{
		{Token: "usdc", Amount: d("1"), ValueUSD: d("1")},
		{Token: "USDC", Amount: d("1"), ValueUSD: d("1")},
	}

	assert.Len(t, Consolidate(raw), 2)
}

func TestConsolidateDeduplicatesChains(t *testing.T) {
	raw := []models.Holding{
		{Token: "A", Amount: d("1"), ValueUSD: d("1"), Chains: []string{"eth", "base"}},
		{Token: "A", Amount: d("1"), ValueUSD: d("1"), Chains: []string{"eth"}},
	}

	got := Consolidate(raw)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"base", "eth"}, got[0].Chains)
}

func TestConsolidateProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	build := func(tokens []int, cents []int64) []models.Holding {
		n := len(tokens)
		if len(cents) < n {
			n = len(cents)
		}
		raw := make([]models.Holding, 0, n)
		for i := 0; i < n; i++ {
			raw = append(raw, models.Holding{
				Token:    fmt.Sprintf("T%d", tokens[i]),
				Amount:   decimal.NewFromInt(1),
				ValueUSD: decimal.New(cents[i], -2),
			})
		}
		return raw
	}

	properties.Property("total value is conserved", prop.ForAll(
		func(tokens []int, cents []int64) bool {
			raw := build(tokens, cents)
			return TotalValue(Consolidate(raw)).Equal(TotalValue(raw))
		},
		gen.SliceOfN(20, gen.IntRange(0, 4)),
		gen.SliceOfN(20, gen.Int64Range(1, 100000000)),
	))

	properties.Property("at most one position per token", prop.ForAll(
		func(tokens []int, cents []int64) bool {
			seen := make(map[string]bool)
			for _, h := range Consolidate(build(tokens, cents)) {
				if seen[h.Token] {
					return false
				}
				seen[h.Token] = true
			}
			return true
		},
		gen.SliceOfN(20, gen.IntRange(0, 4)),
		gen.SliceOfN(20, gen.Int64Range(1, 100000000)),
	))

	properties.TestingRun(t)
}
