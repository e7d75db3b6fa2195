package coinfolio

import (
	"time"
)

// positionKey identifies one asset position within one portfolio.
type positionKey struct {
	portfolio string
	asset     string
}

// AssetPosition is the derived state of one asset in one portfolio: its
// balance, the open FIFO lot queue and the realized profit accumulated from
// sells. Positions are maintained incrementally and can always be recomputed
// from the log by a replay.
type AssetPosition struct {
	PortfolioID string
	Asset       string
	Balance     Quantity
	Lots        lots
	Realized    Money

	// Buy-side accumulators for the weighted average cost. Zero-basis
	// inflows do not participate.
	buyQty  Quantity
	buyCost Money
}

// AverageCost returns the weighted average purchase price across all buys of
// the position, zero when it has none.
func (p *AssetPosition) AverageCost() Money {
	if !p.buyQty.IsPositive() {
		return Money{}
	}
	return p.buyCost.Div(p.buyQty)
}

// OpenCost returns the acquisition cost of the still-open lots.
func (p *AssetPosition) OpenCost() Money { return p.Lots.totalCost() }

func (p *AssetPosition) clone() *AssetPosition {
	out := *p
	out.Lots = p.Lots.clone()
	return &out
}

// position returns the live position for the key, creating it when the asset
// first moves.
func (l *Ledger) position(portfolio, asset string) *AssetPosition {
	key := positionKey{portfolio: portfolio, asset: asset}
	p, ok := l.positions[key]
	if !ok {
		p = &AssetPosition{PortfolioID: portfolio, Asset: asset}
		l.positions[key] = p
	}
	return p
}

// apply folds events into the live positions. Events of a single
// transaction are applied in the order lower produced them.
func (l *Ledger) apply(events ...event) {
	for _, e := range events {
		switch v := e.(type) {
		case acquireLot:
			p := l.position(v.portfolio, v.asset)
			p.Balance = p.Balance.Add(v.quantity)
			var unitCost Money
			if v.buy && v.quantity.IsPositive() {
				unitCost = v.cost.Div(v.quantity)
				p.buyQty = p.buyQty.Add(v.quantity)
				p.buyCost = p.buyCost.Add(v.cost)
			}
			p.Lots = append(p.Lots, lot{AcquiredAt: v.at, Remaining: v.quantity, UnitCost: unitCost})
		case disposeLot:
			p := l.position(v.portfolio, v.asset)
			p.Balance = p.Balance.Sub(v.quantity)
			matches, short := p.Lots.consume(v.quantity)
			if v.sale {
				var cost Money
				for _, m := range matches {
					cost = cost.Add(m.Cost())
				}
				p.Realized = p.Realized.Add(v.proceeds.Sub(cost))
			}
			if short.IsPositive() {
				// Over-disposal: the balance goes negative and the shortfall
				// stays visible through it and partial coverage reporting.
				l.log.Warn("disposal exceeds open lots",
					"portfolio", v.portfolio, "asset", v.asset,
					"short", short, "transaction", v.source)
			}
		}
	}
}

// rebuild replays the whole log of one portfolio, discarding its derived
// state first. Replays walk the log in ascending event-timestamp order, so
// the result is independent of insertion order.
func (l *Ledger) rebuild(portfolioID string) {
	for key := range l.positions {
		if key.portfolio == portfolioID {
			delete(l.positions, key)
		}
	}
	for _, tx := range l.transactions {
		if tx.Where() == portfolioID {
			l.apply(lower(tx)...)
		}
	}
}

// rebuildAll discards and replays every position.
func (l *Ledger) rebuildAll() {
	l.positions = make(map[positionKey]*AssetPosition)
	for _, tx := range l.transactions {
		l.apply(lower(tx)...)
	}
}

// Rebuild discards the derived state of the portfolio and replays its
// transactions from scratch.
func (l *Ledger) Rebuild(portfolioID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rebuild(portfolioID)
}

// Balance returns the current holding of asset. An empty portfolioID sums
// the asset across all portfolios.
func (l *Ledger) Balance(asset, portfolioID string) Quantity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if portfolioID != "" {
		if p, ok := l.positions[positionKey{portfolio: portfolioID, asset: asset}]; ok {
			return p.Balance
		}
		return Quantity{}
	}
	var total Quantity
	for key, p := range l.positions {
		if key.asset == asset {
			total = total.Add(p.Balance)
		}
	}
	return total
}

// AverageCost returns the weighted average purchase price of asset across
// its buys, zero when none exist. An empty portfolioID averages over all
// portfolios.
func (l *Ledger) AverageCost(asset, portfolioID string) Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var qty Quantity
	var cost Money
	for key, p := range l.positions {
		if key.asset != asset {
			continue
		}
		if portfolioID != "" && key.portfolio != portfolioID {
			continue
		}
		qty = qty.Add(p.buyQty)
		cost = cost.Add(p.buyCost)
	}
	if !qty.IsPositive() {
		return Money{}
	}
	return cost.Div(qty)
}

// CostBasis is the FIFO acquisition cost attributed to a hypothetical
// disposal. When the open lots cannot cover the requested quantity, Cost
// covers only the Covered part and Partial is set; the shortfall is never
// silently absorbed.
type CostBasis struct {
	Cost    Money
	Covered Quantity
	Partial bool
}

// HistoricalCostBasis computes the FIFO cost basis of disposing amount units
// of asset as of the given instant: the lot queue is reconstructed from all
// of the portfolio's acquisitions and disposals strictly before asOf, then
// consulted without being mutated.
func (l *Ledger) HistoricalCostBasis(asset string, amount Quantity, asOf time.Time, portfolioID string) CostBasis {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var open lots
	for _, tx := range l.transactions {
		if !tx.When().Before(asOf) {
			break
		}
		if portfolioID != "" && tx.Where() != portfolioID {
			continue
		}
		for _, e := range lower(tx) {
			switch v := e.(type) {
			case acquireLot:
				if v.asset != asset {
					continue
				}
				var unitCost Money
				if v.buy && v.quantity.IsPositive() {
					unitCost = v.cost.Div(v.quantity)
				}
				open = append(open, lot{AcquiredAt: v.at, Remaining: v.quantity, UnitCost: unitCost})
			case disposeLot:
				if v.asset != asset {
					continue
				}
				open.consume(v.quantity)
			}
		}
	}

	cost, covered := open.costOf(amount)
	return CostBasis{Cost: cost, Covered: covered, Partial: covered.LessThan(amount)}
}
