package coinfolio

import (
	"sort"
	"time"
)

// Snapshot is an immutable, internally consistent view of the ledger taken
// at one instant. Valuation and tax reporting read through a snapshot so a
// multi-asset computation never mixes states from different moments.
type Snapshot struct {
	TakenAt      time.Time
	PortfolioID  string // empty for a whole-ledger snapshot
	transactions []Transaction
	positions    map[positionKey]*AssetPosition
}

// Snapshot captures the current state of one portfolio, or of the whole
// ledger when portfolioID is empty. Transactions are shared immutably;
// positions and their lot queues are deep-copied.
func (l *Ledger) Snapshot(portfolioID string) *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := &Snapshot{
		TakenAt:     l.now().UTC(),
		PortfolioID: portfolioID,
		positions:   make(map[positionKey]*AssetPosition),
	}
	for _, tx := range l.transactions {
		if portfolioID == "" || tx.Where() == portfolioID {
			s.transactions = append(s.transactions, tx)
		}
	}
	for key, p := range l.positions {
		if portfolioID == "" || key.portfolio == portfolioID {
			s.positions[key] = p.clone()
		}
	}
	return s
}

// Transactions returns the captured transactions in ascending event
// timestamp order.
func (s *Snapshot) Transactions() []Transaction { return s.transactions }

// Assets returns the distinct assets with a non-zero balance, sorted.
func (s *Snapshot) Assets() []string {
	seen := make(map[string]bool)
	for key, p := range s.positions {
		if !p.Balance.IsZero() {
			seen[key.asset] = true
		}
	}
	assets := make([]string, 0, len(seen))
	for asset := range seen {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

// Balance returns the captured holding of asset, summed across the
// snapshot's portfolios.
func (s *Snapshot) Balance(asset string) Quantity {
	var total Quantity
	for key, p := range s.positions {
		if key.asset == asset {
			total = total.Add(p.Balance)
		}
	}
	return total
}

// OpenCost returns the acquisition cost of the still-open lots of asset.
func (s *Snapshot) OpenCost(asset string) Money {
	var total Money
	for key, p := range s.positions {
		if key.asset == asset {
			total = total.Add(p.OpenCost())
		}
	}
	return total
}

// Realized returns the realized profit accumulated from sells of asset.
func (s *Snapshot) Realized(asset string) Money {
	var total Money
	for key, p := range s.positions {
		if key.asset == asset {
			total = total.Add(p.Realized)
		}
	}
	return total
}

// AverageCost returns the weighted average purchase price of asset across
// the snapshot's buys, zero when none exist.
func (s *Snapshot) AverageCost(asset string) Money {
	var qty Quantity
	var cost Money
	for key, p := range s.positions {
		if key.asset == asset {
			qty = qty.Add(p.buyQty)
			cost = cost.Add(p.buyCost)
		}
	}
	if !qty.IsPositive() {
		return Money{}
	}
	return cost.Div(qty)
}
