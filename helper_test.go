package coinfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coinfolio/coinfolio/store"
)

// newTestLedger returns an empty ledger over an in-memory store with a
// deterministic clock.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger(store.NewMemoryStore(),
		WithClock(func() time.Time { return date(2026, time.January, 1) }))
	require.NoError(t, err)
	return l
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func usd(v float64) Money { return M(v, "USD") }

// mustAdd adds a transaction that is expected to be valid.
func mustAdd(t *testing.T, l *Ledger, tx Transaction) Transaction {
	t.Helper()
	added, err := l.AddTransaction(tx)
	require.NoError(t, err)
	return added
}
