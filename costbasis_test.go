package coinfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Three buys at rising prices, then a sell reaching into the second lot.
func TestFifoSellSpansLots(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(10000), date(2024, time.January, 1)))
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(20000), date(2024, time.February, 1)))
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(30000), date(2024, time.March, 1)))
	mustAdd(t, l, NewSell("", "BTC", Q(1.5), usd(40000), date(2024, time.June, 1)))

	assert.True(t, l.Balance("BTC", "").Equal(Q(1.5)))

	// The sell consumed the whole first lot and half of the second:
	// proceeds 60000 against a cost of 10000 + 10000.
	p := l.positions[positionKey{asset: "BTC"}]
	require.NotNil(t, p)
	assert.True(t, p.Realized.Equal(usd(40000)), "realized = %s", p.Realized.Decimal())

	// Remaining open lots: 0.5 @ 20000 and 1 @ 30000.
	require.Len(t, p.Lots, 2)
	assert.True(t, p.Lots[0].Remaining.Equal(Q(0.5)))
	assert.True(t, p.Lots[0].UnitCost.Equal(usd(20000)))
	assert.True(t, p.Lots[1].Remaining.Equal(Q(1)))
	assert.True(t, p.OpenCost().Equal(usd(40000)))

	// Average cost counts every buy, sold or not.
	assert.True(t, l.AverageCost("BTC", "").Equal(usd(20000)))
}

// The same history must produce the same state regardless of the order the
// transactions were recorded in.
func TestReplayIsInsertionOrderIndependent(t *testing.T) {
	build := func(order []int) *Ledger {
		txs := []Transaction{
			NewBuy("", "BTC", Q(1), usd(10000), date(2024, time.January, 1)),
			NewBuy("", "BTC", Q(1), usd(20000), date(2024, time.February, 1)),
			NewSell("", "BTC", Q(1.5), usd(40000), date(2024, time.June, 1)),
			NewBuy("", "BTC", Q(2), usd(30000), date(2024, time.March, 1)),
		}
		l := newTestLedger(t)
		for _, i := range order {
			mustAdd(t, l, txs[i])
		}
		return l
	}

	chrono := build([]int{0, 1, 3, 2})
	shuffled := build([]int{2, 0, 3, 1})

	for _, l := range []*Ledger{chrono, shuffled} {
		p := l.positions[positionKey{asset: "BTC"}]
		require.NotNil(t, p)
		assert.True(t, p.Balance.Equal(Q(2.5)))
		// FIFO in event order: 1 @ 10000 and 0.5 @ 20000 were consumed.
		assert.True(t, p.Realized.Equal(usd(40000)), "realized = %s", p.Realized.Decimal())
		assert.True(t, p.OpenCost().Equal(usd(70000)))
	}
}

// Balances are plain signed sums: every inflow adds, every outflow
// subtracts, whatever the transaction type.
func TestBalanceIsSignedSum(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "ETH", Q(5), usd(2000), date(2024, time.January, 1)))
	mustAdd(t, l, NewTransferIn("", "ETH", Q(3), date(2024, time.February, 1)))
	mustAdd(t, l, NewStakingReward("", "ETH", Q(0.5), usd(2500), date(2024, time.March, 1)))
	mustAdd(t, l, NewTransferOut("", "ETH", Q(2), date(2024, time.April, 1)))
	mustAdd(t, l, NewSell("", "ETH", Q(1), usd(3000), date(2024, time.May, 1)))
	mustAdd(t, l, NewConvert("", "ETH", Q(1.5), "SOL", Q(40), date(2024, time.June, 1)))

	assert.True(t, l.Balance("ETH", "").Equal(Q(4)), "got %s", l.Balance("ETH", ""))
	assert.True(t, l.Balance("SOL", "").Equal(Q(40)))
}

// Lot conservation: acquired quantity = open + consumed, for every asset.
func TestLotConservation(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "BTC", Q(2), usd(10000), date(2024, time.January, 1)))
	mustAdd(t, l, NewTransferIn("", "BTC", Q(1), date(2024, time.February, 1)))
	mustAdd(t, l, NewSell("", "BTC", Q(1.25), usd(40000), date(2024, time.March, 1)))
	mustAdd(t, l, NewTransferOut("", "BTC", Q(0.25), date(2024, time.April, 1)))

	p := l.positions[positionKey{asset: "BTC"}]
	require.NotNil(t, p)
	acquired := Q(3)
	consumed := Q(1.5)
	assert.True(t, p.Lots.totalRemaining().Equal(acquired.Sub(consumed)))
	assert.True(t, p.Balance.Equal(p.Lots.totalRemaining()))
}

// Zero-basis inflows enter the queue as lots without cost, so selling them
// realizes the full proceeds.
func TestZeroBasisInflow(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewTransferIn("", "BTC", Q(1), date(2024, time.January, 1)))
	mustAdd(t, l, NewSell("", "BTC", Q(1), usd(50000), date(2024, time.March, 1)))

	p := l.positions[positionKey{asset: "BTC"}]
	require.NotNil(t, p)
	assert.True(t, p.Realized.Equal(usd(50000)))
	assert.True(t, l.AverageCost("BTC", "").IsZero())
}

func TestHistoricalCostBasis(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(10000), date(2024, time.January, 1)))
	mustAdd(t, l, NewSell("", "BTC", Q(0.5), usd(30000), date(2024, time.February, 1)))
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(40000), date(2024, time.April, 1)))

	// As of March only half of the first lot is open.
	basis := l.HistoricalCostBasis("BTC", Q(0.5), date(2024, time.March, 1), "")
	assert.False(t, basis.Partial)
	assert.True(t, basis.Cost.Equal(usd(5000)))
	assert.True(t, basis.Covered.Equal(Q(0.5)))

	// Asking for more than the open lots covers reports the shortfall.
	basis = l.HistoricalCostBasis("BTC", Q(2), date(2024, time.March, 1), "")
	assert.True(t, basis.Partial)
	assert.True(t, basis.Covered.Equal(Q(0.5)))
	assert.True(t, basis.Cost.Equal(usd(5000)))

	// As of May the April lot is open too.
	basis = l.HistoricalCostBasis("BTC", Q(1.5), date(2024, time.May, 1), "")
	assert.False(t, basis.Partial)
	assert.True(t, basis.Cost.Equal(usd(45000)))

	// The probe never mutates the live lots.
	assert.True(t, l.Balance("BTC", "").Equal(Q(1.5)))
	p := l.positions[positionKey{asset: "BTC"}]
	assert.True(t, p.Lots.totalRemaining().Equal(Q(1.5)))
}

func TestConvertMovesCostFreeLots(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "ETH", Q(10), usd(2000), date(2024, time.January, 1)))
	mustAdd(t, l, NewConvert("", "ETH", Q(4), "SOL", Q(100), date(2024, time.February, 1)))

	assert.True(t, l.Balance("ETH", "").Equal(Q(6)))
	assert.True(t, l.Balance("SOL", "").Equal(Q(100)))

	// The SOL lot entered at zero cost; the ETH disposal realized nothing.
	sol := l.positions[positionKey{asset: "SOL"}]
	require.NotNil(t, sol)
	assert.True(t, sol.OpenCost().IsZero())
	eth := l.positions[positionKey{asset: "ETH"}]
	assert.True(t, eth.Realized.IsZero())
}

func TestRebuildMatchesIncrementalState(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "BTC", Q(2), usd(10000), date(2024, time.January, 1)))
	mustAdd(t, l, NewSell("", "BTC", Q(1), usd(30000), date(2024, time.February, 1)))

	before := l.positions[positionKey{asset: "BTC"}].clone()
	l.Rebuild("")
	after := l.positions[positionKey{asset: "BTC"}]

	assert.True(t, before.Balance.Equal(after.Balance))
	assert.True(t, before.Realized.Equal(after.Realized))
	assert.True(t, before.OpenCost().Equal(after.OpenCost()))
	assert.Equal(t, len(before.Lots), len(after.Lots))
}
