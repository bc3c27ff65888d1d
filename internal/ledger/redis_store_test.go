package ledger

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisStore(NewRedisClient(RedisOptions{Addr: mr.Addr()}), "wallet-tracker:ledger:0xabc")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Save(ctx, New("0x02", "0x01")))

	members, err := mr.Members("wallet-tracker:ledger:0xabc")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0x01", "0x02"}, members)

	loaded := store.Load(ctx)
	assert.Equal(t, []string{"0x01", "0x02"}, loaded.IDs())
}

func TestRedisStoreSaveIsAdditive(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.Save(ctx, New("0x01")))
	l := store.Load(ctx)
	l.Record("0x02")
	require.NoError(t, store.Save(ctx, l))

	assert.Equal(t, []string{"0x01", "0x02"}, store.Load(ctx).IDs())
}

func TestRedisStoreEmptyLedgerSaveIsNoop(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Save(ctx, New()))
	assert.False(t, mr.Exists("wallet-tracker:ledger:0xabc"))
}

func TestRedisStoreLoadFailsSoft(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.SetError("ERR simulated outage")

	l := store.Load(context.Background())

	require.NotNil(t, l)
	assert.Equal(t, 0, l.Len())
}

func TestRedisStoreSaveReportsFailure(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.SetError("ERR simulated write failure")

	err := store.Save(context.Background(), New("0x01"))

	assert.Error(t, err)
}
