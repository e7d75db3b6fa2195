package coinfolio

import "time"

// event is a single atomic balance movement derived from a transaction.
// Derived state has no independent existence outside the log: positions are
// always the result of applying these events in timestamp order.
type event interface {
	when() time.Time
}

// acquireLot adds a new lot of an asset to a portfolio.
type acquireLot struct {
	at        time.Time
	portfolio string
	asset     string
	quantity  Quantity
	cost      Money // total acquisition cost, zero for zero-basis inflows
	buy       bool  // true only for buy transactions
	source    string
}

func (e acquireLot) when() time.Time { return e.at }

// disposeLot removes a quantity of an asset from a portfolio.
type disposeLot struct {
	at        time.Time
	portfolio string
	asset     string
	quantity  Quantity
	proceeds  Money // zero when the disposal has no sale proceeds
	sale      bool  // true only for sell transactions
	source    string
}

func (e disposeLot) when() time.Time { return e.at }

// lower converts a transaction into its atomic events.
//
// Zero-basis policy: transfer-in, reward, airdrop, gift and payment inflows
// and conversion destinations enter the lot queue at zero cost. Only buys
// carry acquisition cost. The income value of rewards is reported
// separately by the tax report, at received fair value.
func lower(tx Transaction) []event {
	b := tx.base()
	switch v := tx.(type) {
	case *Buy:
		return []event{acquireLot{
			at: b.Timestamp, portfolio: b.PortfolioID, asset: b.Asset,
			quantity: b.Amount, cost: v.UnitPrice.Mul(b.Amount), buy: true, source: b.ID,
		}}
	case *Sell:
		return []event{disposeLot{
			at: b.Timestamp, portfolio: b.PortfolioID, asset: b.Asset,
			quantity: b.Amount, proceeds: v.UnitPrice.Mul(b.Amount), sale: true, source: b.ID,
		}}
	case *Convert:
		return []event{
			disposeLot{at: b.Timestamp, portfolio: b.PortfolioID, asset: b.Asset, quantity: b.Amount, source: b.ID},
			acquireLot{at: b.Timestamp, portfolio: b.PortfolioID, asset: v.DestAsset, quantity: v.DestAmount, source: b.ID},
		}
	}

	typ := tx.What()
	switch {
	case typ.Inbound():
		return []event{acquireLot{
			at: b.Timestamp, portfolio: b.PortfolioID, asset: b.Asset,
			quantity: b.Amount, source: b.ID,
		}}
	case typ.Outbound():
		return []event{disposeLot{
			at: b.Timestamp, portfolio: b.PortfolioID, asset: b.Asset,
			quantity: b.Amount, source: b.ID,
		}}
	}
	return nil
}
