package coinfolio

import "time"

// lot is a discrete quantity of an asset acquired at a specific unit cost
// and time, tracked for FIFO consumption.
type lot struct {
	AcquiredAt time.Time
	Remaining  Quantity
	UnitCost   Money // zero for zero-basis inflows
}

// Cost returns the acquisition cost attributed to the remaining quantity.
func (l lot) Cost() Money { return l.UnitCost.Mul(l.Remaining) }

// lots is an open FIFO queue, ordered by acquisition time.
type lots []lot

// lotMatch is one slice of a FIFO consumption: the quantity consumed
// together with the lot it came from.
type lotMatch struct {
	Quantity   Quantity
	UnitCost   Money
	AcquiredAt time.Time
}

// Cost returns the cost basis of the consumed slice.
func (m lotMatch) Cost() Money { return m.UnitCost.Mul(m.Quantity) }

// consume removes quantity from the queue oldest lot first, fully consuming
// each lot before touching the next. It returns the per-lot matches and the
// uncovered remainder when the open lots are insufficient; the caller must
// surface that shortfall, never swallow it.
func (l *lots) consume(quantity Quantity) (matches []lotMatch, short Quantity) {
	remaining := quantity
	for len(*l) > 0 && remaining.IsPositive() {
		head := &(*l)[0]
		if head.Remaining.GreaterThan(remaining) {
			// Partial consumption of the oldest lot.
			matches = append(matches, lotMatch{Quantity: remaining, UnitCost: head.UnitCost, AcquiredAt: head.AcquiredAt})
			head.Remaining = head.Remaining.Sub(remaining)
			return matches, Q(0)
		}
		// Full consumption of the oldest lot.
		matches = append(matches, lotMatch{Quantity: head.Remaining, UnitCost: head.UnitCost, AcquiredAt: head.AcquiredAt})
		remaining = remaining.Sub(head.Remaining)
		*l = (*l)[1:]
	}
	return matches, remaining
}

// costOf computes the FIFO cost of disposing quantity without mutating the
// queue. covered is the quantity the open lots could account for.
func (l lots) costOf(quantity Quantity) (cost Money, covered Quantity) {
	remaining := quantity
	for _, current := range l {
		if !remaining.IsPositive() {
			break
		}
		take := current.Remaining
		if take.GreaterThan(remaining) {
			take = remaining
		}
		cost = cost.Add(current.UnitCost.Mul(take))
		covered = covered.Add(take)
		remaining = remaining.Sub(take)
	}
	return cost, covered
}

// totalRemaining sums the open quantity across all lots.
func (l lots) totalRemaining() Quantity {
	var total Quantity
	for _, current := range l {
		total = total.Add(current.Remaining)
	}
	return total
}

// totalCost sums the acquisition cost of the open lots.
func (l lots) totalCost() Money {
	var total Money
	for _, current := range l {
		total = total.Add(current.Cost())
	}
	return total
}

// clone returns an independent copy of the queue.
func (l lots) clone() lots {
	out := make(lots, len(l))
	copy(out, l)
	return out
}
