package ledger

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestLedgerRecordAndIsNew(t *testing.T) {
	l := New("0x01")

	assert.False(t, l.IsNew("0x01"))
	assert.True(t, l.IsNew("0x02"))

	l.Record("0x02")
	assert.False(t, l.IsNew("0x02"))
	assert.Equal(t, 2, l.Len())
}

func TestLedgerIgnoresEmptyIDs(t *testing.T) {
	l := New("")
	l.Record("")

	assert.Equal(t, 0, l.Len())
}

func TestLedgerIDsAreSorted(t *testing.T) {
	l := New("c", "a", "b", "a")

	assert.Equal(t, []string{"a", "b", "c"}, l.IDs())
}

func TestNilLedgerIsEmpty(t *testing.T) {
	var l *Ledger

	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.IDs())
}

func TestLedgerOnlyGrows(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("recording never removes an id", prop.ForAll(
		func(first, second []int) bool {
			l := New()
			for _, n := range first {
				l.Record(fmt.Sprintf("id-%d", n))
			}
			before := l.IDs()
			for _, n := range second {
				l.Record(fmt.Sprintf("id-%d", n))
			}
			for _, id := range before {
				if l.IsNew(id) {
					return false
				}
			}
			return l.Len() >= len(before)
		},
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.TestingRun(t)
}
