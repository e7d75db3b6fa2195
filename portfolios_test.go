package coinfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePortfolioKeepsSingleDefault(t *testing.T) {
	l := newTestLedger(t)

	main, err := l.SavePortfolio(Portfolio{Name: "main", IsDefault: true})
	require.NoError(t, err)
	trading, err := l.SavePortfolio(Portfolio{Name: "trading", IsDefault: true})
	require.NoError(t, err)

	def, ok := l.DefaultPortfolio()
	require.True(t, ok)
	assert.Equal(t, trading.ID, def.ID)

	// The earlier default was demoted, not duplicated.
	former, err := l.PortfolioByID(main.ID)
	require.NoError(t, err)
	assert.False(t, former.IsDefault)

	defaults := 0
	for _, p := range l.Portfolios() {
		if p.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestSavePortfolioValidates(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.SavePortfolio(Portfolio{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = l.SavePortfolio(Portfolio{ID: "ghost", Name: "ghost"})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestEmptyPortfolioDefaultsToDefault(t *testing.T) {
	l := newTestLedger(t)
	def, err := l.SavePortfolio(Portfolio{Name: "main", IsDefault: true})
	require.NoError(t, err)

	tx := mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(10000), date(2024, time.January, 1)))
	assert.Equal(t, def.ID, tx.Where())
}

func TestDeletePortfolioPurgesTransactions(t *testing.T) {
	l := newTestLedger(t)
	p, err := l.SavePortfolio(Portfolio{Name: "doomed"})
	require.NoError(t, err)
	mustAdd(t, l, NewBuy(p.ID, "BTC", Q(1), usd(10000), date(2024, time.January, 1)))
	mustAdd(t, l, NewBuy(p.ID, "ETH", Q(2), usd(2000), date(2024, time.February, 1)))

	require.NoError(t, l.DeletePortfolio(p.ID, DeleteOptions{}))

	assert.Empty(t, l.Transactions(Query{}))
	assert.True(t, l.Balance("BTC", "").IsZero())
	assert.Empty(t, l.Portfolios())
}

func TestDeletePortfolioMovesTransactions(t *testing.T) {
	l := newTestLedger(t)
	src, err := l.SavePortfolio(Portfolio{Name: "old"})
	require.NoError(t, err)
	dst, err := l.SavePortfolio(Portfolio{Name: "new"})
	require.NoError(t, err)
	mustAdd(t, l, NewBuy(src.ID, "BTC", Q(1), usd(10000), date(2024, time.January, 1)))

	require.NoError(t, l.DeletePortfolio(src.ID, DeleteOptions{
		MoveTransactions:  true,
		TargetPortfolioID: dst.ID,
	}))

	txs := l.Transactions(Query{})
	require.Len(t, txs, 1)
	assert.Equal(t, dst.ID, txs[0].Where())
	assert.True(t, l.Balance("BTC", dst.ID).Equal(Q(1)))
}

// A snapshot captured before a move must keep reporting the state it saw:
// the move swaps replacement transactions into the ledger and never touches
// the ones the snapshot shares.
func TestDeletePortfolioMoveKeepsSnapshotsIntact(t *testing.T) {
	l := newTestLedger(t)
	src, err := l.SavePortfolio(Portfolio{Name: "old"})
	require.NoError(t, err)
	dst, err := l.SavePortfolio(Portfolio{Name: "new"})
	require.NoError(t, err)
	tx := mustAdd(t, l, NewBuy(src.ID, "BTC", Q(1), usd(10000), date(2024, time.January, 1)))

	snap := l.Snapshot(src.ID)
	require.NoError(t, l.DeletePortfolio(src.ID, DeleteOptions{
		MoveTransactions:  true,
		TargetPortfolioID: dst.ID,
	}))

	require.Len(t, snap.Transactions(), 1)
	assert.Equal(t, src.ID, snap.Transactions()[0].Where())
	assert.True(t, snap.Balance("BTC").Equal(Q(1)))

	// The live ledger sees the moved transaction under the same id.
	moved, err := l.Transaction(tx.Ref())
	require.NoError(t, err)
	assert.Equal(t, dst.ID, moved.Where())
	assert.True(t, l.Balance("BTC", dst.ID).Equal(Q(1)))
}

func TestDeleteDefaultPortfolioRefused(t *testing.T) {
	l := newTestLedger(t)
	def, err := l.SavePortfolio(Portfolio{Name: "main", IsDefault: true})
	require.NoError(t, err)

	err = l.DeletePortfolio(def.ID, DeleteOptions{})
	var inv *InvalidOperationError
	require.ErrorAs(t, err, &inv)

	// Once another portfolio takes over as default, deletion goes through.
	_, err = l.SavePortfolio(Portfolio{Name: "next", IsDefault: true})
	require.NoError(t, err)
	assert.NoError(t, l.DeletePortfolio(def.ID, DeleteOptions{}))
}

func TestDeletePortfolioMoveNeedsValidTarget(t *testing.T) {
	l := newTestLedger(t)
	p, err := l.SavePortfolio(Portfolio{Name: "solo"})
	require.NoError(t, err)

	err = l.DeletePortfolio(p.ID, DeleteOptions{MoveTransactions: true, TargetPortfolioID: p.ID})
	var inv *InvalidOperationError
	require.ErrorAs(t, err, &inv)

	err = l.DeletePortfolio(p.ID, DeleteOptions{MoveTransactions: true, TargetPortfolioID: "ghost"})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}
