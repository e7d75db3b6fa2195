package coinfolio

import (
	"context"
	"errors"
	"sort"
)

// Valuation computes market values and profit figures over a snapshot. It
// holds no state of its own: every method is a pure function of the snapshot
// and the provider's prices, so the same inputs always produce the same
// report.
type Valuation struct {
	provider MarketPriceProvider
}

// NewValuation returns a valuation engine reading prices from provider.
func NewValuation(provider MarketPriceProvider) *Valuation {
	return &Valuation{provider: provider}
}

// AssetProfitLoss is the market view of one asset: its current value, the
// unrealized profit of its open lots and the realized profit of its past
// sells. An asset whose price is unavailable is marked and carries zero
// market figures.
type AssetProfitLoss struct {
	Asset            string
	Balance          Quantity
	Price            Money
	Value            Money
	OpenCost         Money
	Unrealized       Money
	Realized         Money
	PriceUnavailable bool
}

// ProfitLoss values one asset of the snapshot. Unrealized profit is the
// market value of the balance minus the acquisition cost of the open lots.
func (v *Valuation) ProfitLoss(ctx context.Context, snap *Snapshot, asset string) (AssetProfitLoss, error) {
	pl := AssetProfitLoss{
		Asset:    asset,
		Balance:  snap.Balance(asset),
		OpenCost: snap.OpenCost(asset),
		Realized: snap.Realized(asset),
	}

	price, err := v.provider.CurrentPrice(ctx, asset)
	var unavailable *PriceUnavailableError
	if errors.As(err, &unavailable) {
		pl.PriceUnavailable = true
		return pl, nil
	}
	if err != nil {
		return AssetProfitLoss{}, err
	}

	pl.Price = price
	pl.Value = price.Mul(pl.Balance)
	pl.Unrealized = pl.Value.Sub(pl.OpenCost)
	return pl, nil
}

// SummaryLine is one asset row of a portfolio summary. Allocation is the
// asset's share of the total market value in percent; assets without a price
// carry a zero allocation and are listed in the summary's Excluded set.
type SummaryLine struct {
	Asset            string
	Balance          Quantity
	Price            Money
	Value            Money
	Allocation       Quantity // percent of total value
	AverageCost      Money
	Unrealized       Money
	Realized         Money
	PriceUnavailable bool
}

// PortfolioSummary is the market view of a whole snapshot: one line per
// asset with a non-zero balance, ordered by value descending, plus totals
// over the priced assets.
type PortfolioSummary struct {
	Snapshot        *Snapshot
	Lines           []SummaryLine
	TotalValue      Money
	TotalUnrealized Money
	TotalRealized   Money
	Excluded        []string // assets left out of the totals for want of a price
}

// Summary values every held asset of the snapshot. Assets whose price is
// unavailable are excluded from the totals and marked, never silently
// dropped or counted as zero.
func (v *Valuation) Summary(ctx context.Context, snap *Snapshot) (*PortfolioSummary, error) {
	sum := &PortfolioSummary{Snapshot: snap}

	for _, asset := range snap.Assets() {
		pl, err := v.ProfitLoss(ctx, snap, asset)
		if err != nil {
			return nil, err
		}
		line := SummaryLine{
			Asset:            asset,
			Balance:          pl.Balance,
			Price:            pl.Price,
			Value:            pl.Value,
			AverageCost:      snap.AverageCost(asset),
			Unrealized:       pl.Unrealized,
			Realized:         pl.Realized,
			PriceUnavailable: pl.PriceUnavailable,
		}
		if pl.PriceUnavailable {
			sum.Excluded = append(sum.Excluded, asset)
		} else {
			sum.TotalValue = sum.TotalValue.Add(pl.Value)
			sum.TotalUnrealized = sum.TotalUnrealized.Add(pl.Unrealized)
		}
		sum.TotalRealized = sum.TotalRealized.Add(pl.Realized)
		sum.Lines = append(sum.Lines, line)
	}

	// Allocation shares are computed after the total is known. An empty or
	// unpriced portfolio keeps every allocation at zero rather than dividing
	// by a zero total.
	if sum.TotalValue.IsPositive() {
		for i := range sum.Lines {
			if sum.Lines[i].PriceUnavailable {
				continue
			}
			sum.Lines[i].Allocation = sum.Lines[i].Value.Ratio(sum.TotalValue).Mul(Q(100))
		}
	}

	sort.SliceStable(sum.Lines, func(i, j int) bool {
		return sum.Lines[j].Value.LessThan(sum.Lines[i].Value)
	})
	return sum, nil
}
