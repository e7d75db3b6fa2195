package coinfolio

import "time"

// Portfolio is a named grouping of transactions. At most one portfolio is
// the default; transactions added without an explicit portfolio land there.
type Portfolio struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (l *Ledger) defaultPortfolio() (Portfolio, bool) {
	for _, p := range l.portfolios {
		if p.IsDefault {
			return p, true
		}
	}
	return Portfolio{}, false
}

// SavePortfolio creates or updates a portfolio. A portfolio without an id is
// created and assigned one; saving an id that does not exist is an error.
// Marking a portfolio default demotes the previous default, so the invariant
// of at most one default holds after every save.
func (l *Ledger) SavePortfolio(p Portfolio) (Portfolio, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p.Name == "" {
		return Portfolio{}, invalidf("name", "portfolio name is required")
	}
	now := l.now().UTC()

	if p.ID == "" {
		p.ID = NewPortfolioID()
		p.CreatedAt, p.UpdatedAt = now, now
		if p.IsDefault {
			l.demoteDefault()
		}
		l.portfolios = append(l.portfolios, p)
	} else {
		at := -1
		for i := range l.portfolios {
			if l.portfolios[i].ID == p.ID {
				at = i
				break
			}
		}
		if at < 0 {
			return Portfolio{}, &NotFoundError{Kind: "portfolio", ID: p.ID}
		}
		if p.IsDefault {
			l.demoteDefault()
		}
		p.CreatedAt = l.portfolios[at].CreatedAt
		p.UpdatedAt = now
		l.portfolios[at] = p
	}

	if err := l.persist(); err != nil {
		return Portfolio{}, err
	}
	l.log.Debug("portfolio saved", "id", p.ID, "name", p.Name, "default", p.IsDefault)
	return p, nil
}

func (l *Ledger) demoteDefault() {
	for i := range l.portfolios {
		l.portfolios[i].IsDefault = false
	}
}

// DeleteOptions controls what happens to a deleted portfolio's transactions.
// The zero value purges them together with the portfolio.
type DeleteOptions struct {
	// MoveTransactions reassigns the portfolio's transactions to
	// TargetPortfolioID instead of purging them.
	MoveTransactions  bool
	TargetPortfolioID string
}

// DeletePortfolio removes a portfolio. By default its transactions are
// purged with it; with MoveTransactions they are reassigned to the target
// portfolio and its positions replayed. Either way no transaction is left
// pointing at a portfolio that no longer exists. The default portfolio
// refuses deletion until another one takes its place.
func (l *Ledger) DeletePortfolio(id string, opts DeleteOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := -1
	for i := range l.portfolios {
		if l.portfolios[i].ID == id {
			at = i
			break
		}
	}
	if at < 0 {
		return &NotFoundError{Kind: "portfolio", ID: id}
	}
	if l.portfolios[at].IsDefault {
		return &InvalidOperationError{Op: "delete portfolio", Reason: "cannot delete the default portfolio; make another one default first"}
	}

	if opts.MoveTransactions {
		if opts.TargetPortfolioID == "" || opts.TargetPortfolioID == id {
			return &InvalidOperationError{Op: "delete portfolio", Reason: "move target must be another existing portfolio"}
		}
		found := false
		for _, p := range l.portfolios {
			if p.ID == opts.TargetPortfolioID {
				found = true
				break
			}
		}
		if !found {
			return &NotFoundError{Kind: "portfolio", ID: opts.TargetPortfolioID}
		}
	}

	l.portfolios = append(l.portfolios[:at], l.portfolios[at+1:]...)

	if opts.MoveTransactions {
		// Stored transactions are immutable and their pointers are shared
		// with live snapshots, so a move swaps in replacement variants
		// instead of rewriting the stored ones.
		for i, tx := range l.transactions {
			if tx.Where() != id {
				continue
			}
			r := newRecord(tx)
			r.PortfolioID = opts.TargetPortfolioID
			r.UpdatedAt = l.now().UTC()
			moved, err := decodeRecord(r)
			if err != nil {
				return err
			}
			l.transactions[i] = moved
			l.byID[moved.Ref()] = moved
		}
		l.rebuild(id)
		l.rebuild(opts.TargetPortfolioID)
	} else {
		kept := l.transactions[:0]
		for _, tx := range l.transactions {
			if tx.Where() == id {
				delete(l.byID, tx.Ref())
				continue
			}
			kept = append(kept, tx)
		}
		l.transactions = kept
		l.rebuild(id)
	}

	if err := l.persist(); err != nil {
		return err
	}
	l.log.Debug("portfolio deleted", "id", id, "moved", opts.MoveTransactions)
	return nil
}

// Portfolios lists all portfolios.
func (l *Ledger) Portfolios() []Portfolio {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Portfolio, len(l.portfolios))
	copy(out, l.portfolios)
	return out
}

// DefaultPortfolio returns the default portfolio, if one is set.
func (l *Ledger) DefaultPortfolio() (Portfolio, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaultPortfolio()
}

// PortfolioByID returns the portfolio with the given id.
func (l *Ledger) PortfolioByID(id string) (Portfolio, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.portfolios {
		if p.ID == id {
			return p, nil
		}
	}
	return Portfolio{}, &NotFoundError{Kind: "portfolio", ID: id}
}
