package coinfolio

import (
	"sort"
	"time"
)

// longTermHolding is the holding period beyond which a disposal's gain is
// long-term. It is a fixed 365-day span, not a calendar-year comparison.
const longTermHolding = 365 * 24 * time.Hour

// Disposal is one FIFO lot match of a taxable sale: the slice of a lot that
// a sell consumed, with its share of the proceeds and its own holding
// period. One sell spanning several lots yields several disposals.
type Disposal struct {
	Asset         string
	TransactionID string
	DisposedAt    time.Time
	AcquiredAt    time.Time // zero when the sale exceeded the open lots
	Quantity      Quantity
	Proceeds      Money
	Cost          Money
	Gain          Money
	LongTerm      bool
}

// IncomeEvent is a reward or airdrop counted as income at received fair
// value. The received quantity also entered the lot queue at zero cost, so
// the income is taxed exactly once here.
type IncomeEvent struct {
	Asset         string
	TransactionID string
	Type          TxType
	ReceivedAt    time.Time
	Quantity      Quantity
	Value         Money
}

// AssetTaxTotal aggregates one asset's figures within a report.
type AssetTaxTotal struct {
	Asset  string
	Gain   Money
	Income Money
}

// TaxReport summarizes one calendar year: realized gains split by holding
// period, income events and deductible fee expenses.
type TaxReport struct {
	Year          int
	Disposals     []Disposal
	Income        []IncomeEvent
	ByAsset       []AssetTaxTotal
	ShortTermGain Money
	LongTermGain  Money
	TotalGain     Money
	TotalIncome   Money
	FeeExpense    Money
}

// GenerateTaxReport computes the report for one calendar year from a
// snapshot. The whole history is replayed so lot matches reflect
// acquisitions from any year, but only events dated within the year are
// reported. The snapshot is read, never mutated.
func GenerateTaxReport(snap *Snapshot, year int) *TaxReport {
	report := &TaxReport{Year: year}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	inYear := func(at time.Time) bool { return !at.Before(from) && at.Before(to) }

	gains := make(map[string]Money)
	income := make(map[string]Money)
	queues := make(map[positionKey]*lots)

	queue := func(portfolio, asset string) *lots {
		key := positionKey{portfolio: portfolio, asset: asset}
		q, ok := queues[key]
		if !ok {
			q = &lots{}
			queues[key] = q
		}
		return q
	}

	for _, tx := range snap.Transactions() {
		b := tx.base()

		if inYear(tx.When()) {
			if !b.Fee.IsZero() {
				report.FeeExpense = report.FeeExpense.Add(b.Fee)
			}
			if fee, ok := tx.(*FeeCharge); ok {
				report.FeeExpense = report.FeeExpense.Add(fee.UnitPrice.Mul(b.Amount))
			}
			if tx.What().Income() {
				price := tx.(interface{ price() Money }).price()
				value := price.Mul(b.Amount)
				report.Income = append(report.Income, IncomeEvent{
					Asset:         b.Asset,
					TransactionID: b.ID,
					Type:          tx.What(),
					ReceivedAt:    tx.When(),
					Quantity:      b.Amount,
					Value:         value,
				})
				report.TotalIncome = report.TotalIncome.Add(value)
				income[b.Asset] = income[b.Asset].Add(value)
			}
		}

		for _, e := range lower(tx) {
			switch v := e.(type) {
			case acquireLot:
				var unitCost Money
				if v.buy && v.quantity.IsPositive() {
					unitCost = v.cost.Div(v.quantity)
				}
				q := queue(v.portfolio, v.asset)
				*q = append(*q, lot{AcquiredAt: v.at, Remaining: v.quantity, UnitCost: unitCost})
			case disposeLot:
				matches, short := queue(v.portfolio, v.asset).consume(v.quantity)
				if !v.sale || !inYear(v.at) {
					continue
				}
				// Proceeds are split pro rata over the matched lots; the
				// last slice takes the remainder so the slices always sum
				// exactly to the sale's proceeds, even when the per-unit
				// quotient does not terminate.
				unitProceeds := v.proceeds.Div(v.quantity)
				var allocated Money
				for i, m := range matches {
					share := unitProceeds.Mul(m.Quantity)
					if i == len(matches)-1 && !short.IsPositive() {
						share = v.proceeds.Sub(allocated)
					}
					allocated = allocated.Add(share)
					report.addDisposal(gains, Disposal{
						Asset:         v.asset,
						TransactionID: v.source,
						DisposedAt:    v.at,
						AcquiredAt:    m.AcquiredAt,
						Quantity:      m.Quantity,
						Proceeds:      share,
						Cost:          m.Cost(),
						LongTerm:      v.at.Sub(m.AcquiredAt) > longTermHolding,
					})
				}
				if short.IsPositive() {
					// The sale exceeded the open lots: the uncovered part has
					// no acquisition, so its full proceeds count as gain.
					report.addDisposal(gains, Disposal{
						Asset:         v.asset,
						TransactionID: v.source,
						DisposedAt:    v.at,
						Quantity:      short,
						Proceeds:      v.proceeds.Sub(allocated),
					})
				}
			}
		}
	}

	assets := make(map[string]bool)
	for asset := range gains {
		assets[asset] = true
	}
	for asset := range income {
		assets[asset] = true
	}
	for asset := range assets {
		report.ByAsset = append(report.ByAsset, AssetTaxTotal{
			Asset:  asset,
			Gain:   gains[asset],
			Income: income[asset],
		})
	}
	sort.Slice(report.ByAsset, func(i, j int) bool {
		return report.ByAsset[i].Asset < report.ByAsset[j].Asset
	})
	return report
}

func (r *TaxReport) addDisposal(gains map[string]Money, d Disposal) {
	d.Gain = d.Proceeds.Sub(d.Cost)
	r.Disposals = append(r.Disposals, d)
	r.TotalGain = r.TotalGain.Add(d.Gain)
	if d.LongTerm {
		r.LongTermGain = r.LongTermGain.Add(d.Gain)
	} else {
		r.ShortTermGain = r.ShortTermGain.Add(d.Gain)
	}
	gains[d.Asset] = gains[d.Asset].Add(d.Gain)
}
