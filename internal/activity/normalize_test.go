package activity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/wallet-tracker/internal/models"
)

func TestNormalize(t *testing.T) {
	earlier := testNow.Add(-time.Hour)
	raw := []models.ActivityEvent{
		{ID: "", ValueUSD: decimal.NewFromInt(100)},
		{ID: "0xzero", ValueUSD: decimal.Zero},
		{ID: "0xneg", ValueUSD: decimal.NewFromInt(-5)},
		{ID: "0xstamped", ValueUSD: decimal.NewFromInt(100)},
		{ID: "0xkept", ValueUSD: decimal.NewFromInt(100), ObservedAt: earlier, Origin: "0xother", Destination: "0xdest"},
	}

	got := Normalize(raw, "0xwallet", testNow)

	require.Len(t, got, 2)
	assert.Equal(t, "0xstamped", got[0].ID)
	assert.Equal(t, testNow, got[0].ObservedAt)
	assert.Equal(t, "0xwallet", got[0].Origin)
	assert.Equal(t, models.UnknownDestination, got[0].Destination)

	assert.Equal(t, earlier, got[1].ObservedAt)
	assert.Equal(t, "0xother", got[1].Origin)
	assert.Equal(t, "0xdest", got[1].Destination)
}
