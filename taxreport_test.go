package coinfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxReportSplitsHoldingPeriods(t *testing.T) {
	l := newTestLedger(t)
	// Held well over 365 days.
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(10000), date(2023, time.January, 1)))
	// Held a few months.
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(20000), date(2024, time.October, 1)))
	// One sell spanning both lots.
	mustAdd(t, l, NewSell("", "BTC", Q(1.5), usd(40000), date(2025, time.February, 1)))

	report := GenerateTaxReport(l.Snapshot(""), 2025)

	require.Len(t, report.Disposals, 2)
	longTerm := report.Disposals[0]
	shortTerm := report.Disposals[1]
	assert.True(t, longTerm.LongTerm)
	assert.False(t, shortTerm.LongTerm)

	// Long-term: 1 BTC, proceeds 40000 against cost 10000.
	assert.True(t, longTerm.Gain.Equal(usd(30000)))
	// Short-term: 0.5 BTC, proceeds 20000 against cost 10000.
	assert.True(t, shortTerm.Gain.Equal(usd(10000)))

	assert.True(t, report.LongTermGain.Equal(usd(30000)))
	assert.True(t, report.ShortTermGain.Equal(usd(10000)))
	assert.True(t, report.TotalGain.Equal(usd(40000)))
}

func TestTaxReportOnlyCountsTheYear(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "BTC", Q(2), usd(10000), date(2023, time.January, 1)))
	mustAdd(t, l, NewSell("", "BTC", Q(1), usd(20000), date(2023, time.June, 1)))
	mustAdd(t, l, NewSell("", "BTC", Q(1), usd(30000), date(2024, time.June, 1)))

	report := GenerateTaxReport(l.Snapshot(""), 2024)

	// Only the 2024 sell shows, but its FIFO match still reflects the 2023
	// consumption of the first half of the lot.
	require.Len(t, report.Disposals, 1)
	assert.Equal(t, date(2023, time.January, 1), report.Disposals[0].AcquiredAt)
	assert.True(t, report.TotalGain.Equal(usd(20000)))
}

func TestTaxReportIncome(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewStakingReward("", "ETH", Q(2), usd(2500), date(2025, time.March, 1)))
	reward, err := New(TxMiningReward, Fields{
		Asset: "BTC", Amount: Q(0.1), UnitPrice: ptr(usd(60000)),
		Timestamp: date(2025, time.April, 1),
	})
	require.NoError(t, err)
	mustAdd(t, l, reward)

	report := GenerateTaxReport(l.Snapshot(""), 2025)

	require.Len(t, report.Income, 2)
	// 2 ETH at 2500 plus 0.1 BTC at 60000.
	assert.True(t, report.TotalIncome.Equal(usd(11000)), "income = %s", report.TotalIncome.Decimal())
	assert.Empty(t, report.Disposals)

	// Selling the reward later is taxed from a zero basis, so income is
	// never counted twice against the cost.
	mustAdd(t, l, NewSell("", "ETH", Q(2), usd(3000), date(2025, time.May, 1)))
	report = GenerateTaxReport(l.Snapshot(""), 2025)
	assert.True(t, report.TotalGain.Equal(usd(6000)))
}

func TestTaxReportFeeExpense(t *testing.T) {
	l := newTestLedger(t)
	buy := NewBuy("", "BTC", Q(1), usd(10000), date(2025, time.January, 1))
	buy.Fee = usd(25)
	mustAdd(t, l, buy)

	gas, err := New(TxFee, Fields{
		Asset: "ETH", Amount: Q(0.01), UnitPrice: ptr(usd(2000)),
		Timestamp: date(2025, time.February, 1),
	})
	require.NoError(t, err)
	mustAdd(t, l, gas)

	report := GenerateTaxReport(l.Snapshot(""), 2025)
	// 25 fiat fee plus 0.01 ETH at 2000.
	assert.True(t, report.FeeExpense.Equal(usd(45)), "fees = %s", report.FeeExpense.Decimal())
}

// Splitting a sale's proceeds across its lot matches must be exact even
// when the per-unit quotient does not terminate at division precision.
func TestTaxReportProceedsSplitExactly(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(1), date(2025, time.January, 1)))
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(1), date(2025, time.February, 1)))
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(1), date(2025, time.March, 1)))

	price := M(decimal.RequireFromString("0.3333333333333333333333"), "USD")
	mustAdd(t, l, NewSell("", "BTC", Q(3), price, date(2025, time.June, 1)))

	report := GenerateTaxReport(l.Snapshot(""), 2025)
	require.Len(t, report.Disposals, 3)

	var total Money
	for _, d := range report.Disposals {
		total = total.Add(d.Proceeds)
	}
	want := price.Mul(Q(3))
	assert.True(t, total.Equal(want), "split %s != proceeds %s", total.Decimal(), want.Decimal())
}

func TestTaxReportPerAssetTotals(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(10000), date(2025, time.January, 1)))
	mustAdd(t, l, NewSell("", "BTC", Q(1), usd(15000), date(2025, time.June, 1)))
	mustAdd(t, l, NewStakingReward("", "ETH", Q(1), usd(2000), date(2025, time.July, 1)))

	report := GenerateTaxReport(l.Snapshot(""), 2025)

	require.Len(t, report.ByAsset, 2)
	assert.Equal(t, "BTC", report.ByAsset[0].Asset)
	assert.True(t, report.ByAsset[0].Gain.Equal(usd(5000)))
	assert.Equal(t, "ETH", report.ByAsset[1].Asset)
	assert.True(t, report.ByAsset[1].Income.Equal(usd(2000)))
}

func ptr[T any](v T) *T { return &v }
