// Package ledger keeps the set of activity event ids that have already been
// seen, so that no event is ever reported twice.
package ledger

import (
	"context"
	"sort"
)

// Store persists a Ledger between runs.
//
// Load never fails: a missing, unreadable or corrupt ledger loads as an empty
// set, which degrades to treating every event as new. Save must be
// all-or-nothing.
type Store interface {
	Load(ctx context.Context) *Ledger
	Save(ctx context.Context, l *Ledger) error
	String() string
}

// Ledger is the in-memory set of seen event ids. It only grows.
type Ledger struct {
	ids map[string]struct{}
}

func New(ids ...string) *Ledger {
	l := &Ledger{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		l.Record(id)
	}
	return l
}

// IsNew reports whether id has not been recorded yet.
func (l *Ledger) IsNew(id string) bool {
	_, seen := l.ids[id]
	return !seen
}

// Record adds id to the in-memory set. Nothing is persisted until the owning
// Store saves the ledger.
func (l *Ledger) Record(id string) {
	if id == "" {
		return
	}
	l.ids[id] = struct{}{}
}

func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.ids)
}

// IDs returns the recorded ids in sorted order.
func (l *Ledger) IDs() []string {
	if l == nil {
		return []string{}
	}
	ids := make([]string, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
