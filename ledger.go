package coinfolio

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coinfolio/coinfolio/store"
)

// Document keys under which the ledger persists its two collections.
const (
	docTransactions = "transactions"
	docPortfolios   = "portfolios"
)

// Ledger is the append-oriented transaction log and the single logical
// owner of all derived state. Mutating operations are serialized behind a
// mutex; readers may run concurrently and long computations should read
// through a Snapshot.
//
// Every mutation rewrites the two persisted documents in full.
type Ledger struct {
	mu    sync.RWMutex
	store store.DocumentStore
	log   *slog.Logger
	now   func() time.Time

	transactions []Transaction // ascending by event timestamp, stable
	byID         map[string]Transaction
	portfolios   []Portfolio
	positions    map[positionKey]*AssetPosition
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for mutation tracing.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithClock injects the clock used for system timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger loads the ledger from the given store. A store that has never
// been written yields an empty ledger; a store holding a malformed payload
// yields a StorageCorruptionError and no ledger.
func NewLedger(st store.DocumentStore, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:     st,
		log:       slog.Default(),
		now:       time.Now,
		byID:      make(map[string]Transaction),
		positions: make(map[positionKey]*AssetPosition),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) load() error {
	data, err := l.store.Get(docTransactions)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if data != nil {
		var records []record
		if err := json.Unmarshal(data, &records); err != nil {
			return &StorageCorruptionError{Document: docTransactions, Err: err}
		}
		for _, r := range records {
			if r.ID == "" {
				return &StorageCorruptionError{Document: docTransactions, Err: fmt.Errorf("record without id")}
			}
			if _, dup := l.byID[r.ID]; dup {
				return &StorageCorruptionError{Document: docTransactions, Err: fmt.Errorf("duplicate transaction id %q", r.ID)}
			}
			tx, err := decodeRecord(r)
			if err != nil {
				return &StorageCorruptionError{Document: docTransactions, Err: err}
			}
			l.transactions = append(l.transactions, tx)
			l.byID[r.ID] = tx
		}
	}

	pdata, err := l.store.Get(docPortfolios)
	if err != nil {
		return fmt.Errorf("load portfolios: %w", err)
	}
	if pdata != nil {
		if err := json.Unmarshal(pdata, &l.portfolios); err != nil {
			return &StorageCorruptionError{Document: docPortfolios, Err: err}
		}
		defaults := 0
		for _, p := range l.portfolios {
			if p.ID == "" {
				return &StorageCorruptionError{Document: docPortfolios, Err: fmt.Errorf("portfolio without id")}
			}
			if p.IsDefault {
				defaults++
			}
		}
		if defaults > 1 {
			return &StorageCorruptionError{Document: docPortfolios, Err: fmt.Errorf("%d default portfolios", defaults)}
		}
	}

	l.stableSort()
	l.rebuildAll()
	return nil
}

// stableSort orders transactions by event timestamp. The sort is stable so
// same-instant transactions keep their relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].When().Before(l.transactions[j].When())
	})
}

// persist rewrites both documents. Must be called with the write lock held.
// When a write fails, the in-memory state is reloaded from the store so
// memory never silently diverges from what is actually persisted; the
// caller's mutation is rolled back along with the error.
func (l *Ledger) persist() error {
	if err := l.writeDocuments(); err != nil {
		if rerr := l.reload(); rerr != nil {
			l.log.Error("reload after failed persist", "error", rerr)
		}
		return err
	}
	return nil
}

func (l *Ledger) reload() error {
	l.transactions = nil
	l.byID = make(map[string]Transaction)
	l.portfolios = nil
	l.positions = make(map[positionKey]*AssetPosition)
	return l.load()
}

func (l *Ledger) writeDocuments() error {
	records := make([]record, 0, len(l.transactions))
	for _, tx := range l.transactions {
		records = append(records, newRecord(tx))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := l.store.Set(docTransactions, data); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}

	pdata, err := json.Marshal(l.portfolios)
	if err != nil {
		return fmt.Errorf("encode portfolios: %w", err)
	}
	if err := l.store.Set(docPortfolios, pdata); err != nil {
		return fmt.Errorf("persist portfolios: %w", err)
	}
	return nil
}

// resolvePortfolio quick-fixes an empty portfolio reference to the default
// portfolio and rejects references to unknown ones.
func (l *Ledger) resolvePortfolio(b *baseTx) error {
	if b.PortfolioID == "" {
		if def, ok := l.defaultPortfolio(); ok {
			b.PortfolioID = def.ID
		}
		return nil
	}
	for _, p := range l.portfolios {
		if p.ID == b.PortfolioID {
			return nil
		}
	}
	return &NotFoundError{Kind: "portfolio", ID: b.PortfolioID}
}

// newestTimestamp returns the newest event timestamp among the portfolio's
// transactions, or the zero time when it has none.
func (l *Ledger) newestTimestamp(portfolioID string) time.Time {
	for i := len(l.transactions) - 1; i >= 0; i-- {
		if l.transactions[i].Where() == portfolioID {
			return l.transactions[i].When()
		}
	}
	return time.Time{}
}

func (l *Ledger) insertSorted(tx Transaction) {
	at := sort.Search(len(l.transactions), func(i int) bool {
		return l.transactions[i].When().After(tx.When())
	})
	l.transactions = append(l.transactions, nil)
	copy(l.transactions[at+1:], l.transactions[at:])
	l.transactions[at] = tx
}

func (l *Ledger) removeTx(id string) {
	for i, tx := range l.transactions {
		if tx.Ref() == id {
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			break
		}
	}
	delete(l.byID, id)
}

// AddTransaction validates tx against its type, assigns id and system
// timestamps, applies it to derived state and persists the ledger. A
// transaction arriving with an id (import round-trip) keeps it.
func (l *Ledger) AddTransaction(tx Transaction) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	b := tx.base()
	if err := l.resolvePortfolio(b); err != nil {
		return nil, err
	}
	if b.ID == "" {
		b.ID = NewTransactionID()
	} else if _, dup := l.byID[b.ID]; dup {
		return nil, invalidf("id", "duplicate transaction id %q", b.ID)
	}
	now := l.now().UTC()
	if b.CreatedAt.IsZero() {
		// Imported records keep their original creation time.
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	// Incremental fast path only when the transaction is the newest of its
	// portfolio; an out-of-order insert changes FIFO consumption of later
	// entries, so the portfolio replays in full.
	newest := l.newestTimestamp(b.PortfolioID)
	l.insertSorted(tx)
	l.byID[b.ID] = tx
	if newest.IsZero() || !tx.When().Before(newest) {
		l.apply(lower(tx)...)
	} else {
		l.rebuild(b.PortfolioID)
	}

	if err := l.persist(); err != nil {
		return nil, err
	}
	l.log.Debug("transaction added", "id", b.ID, "type", tx.What(), "asset", b.Asset)
	return tx, nil
}

// Patch is a partial update to a transaction. Nil fields are left as they
// are; the merged result is revalidated as the resulting type, so a patch
// that leaves a variant with fields it must not carry is rejected.
type Patch struct {
	Type         *TxType
	Asset        *string
	Amount       *Quantity
	UnitPrice    *Money
	Fee          *Money
	FiatCurrency *string
	Exchange     *string
	Description  *string
	PortfolioID  *string
	Tags         *[]string
	Timestamp    *time.Time
	DestAsset    *string
	DestAmount   *Quantity
}

// UpdateTransaction merges the patch into the stored transaction,
// revalidates the result as its (possibly new) type and replaces the stored
// record. Derived state of the affected portfolios is replayed in full.
func (l *Ledger) UpdateTransaction(id string, p Patch) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	old, ok := l.byID[id]
	if !ok {
		return nil, &NotFoundError{Kind: "transaction", ID: id}
	}

	r := newRecord(old)
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Asset != nil {
		r.Asset = *p.Asset
	}
	if p.Amount != nil {
		r.Amount = p.Amount.Decimal()
	}
	if p.FiatCurrency != nil {
		r.FiatCurrency = *p.FiatCurrency
	}
	if p.UnitPrice != nil {
		v := p.UnitPrice.Decimal()
		r.Price = &v
		if p.FiatCurrency == nil && p.UnitPrice.Currency() != "" {
			r.FiatCurrency = p.UnitPrice.Currency()
		}
	}
	if p.Fee != nil {
		r.Fee = p.Fee.Decimal()
	}
	if p.Exchange != nil {
		r.Exchange = *p.Exchange
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.PortfolioID != nil {
		r.PortfolioID = *p.PortfolioID
	}
	if p.Tags != nil {
		r.Tags = *p.Tags
	}
	if p.Timestamp != nil {
		r.Timestamp = *p.Timestamp
	}
	if p.DestAsset != nil {
		r.DestAsset = *p.DestAsset
	}
	if p.DestAmount != nil {
		v := p.DestAmount.Decimal()
		r.DestAmount = &v
	}
	r.UpdatedAt = l.now().UTC()

	ntx, err := decodeRecord(r)
	if err != nil {
		return nil, err
	}
	if nb := ntx.base(); nb.PortfolioID != old.Where() {
		if err := l.resolvePortfolio(nb); err != nil {
			return nil, err
		}
	}

	l.removeTx(id)
	l.insertSorted(ntx)
	l.byID[id] = ntx

	// Cached aggregates are invalidated by any update: replay the affected
	// portfolios.
	l.rebuild(old.Where())
	if ntx.Where() != old.Where() {
		l.rebuild(ntx.Where())
	}

	if err := l.persist(); err != nil {
		return nil, err
	}
	l.log.Debug("transaction updated", "id", id, "type", ntx.What())
	return ntx, nil
}

// DeleteTransaction removes the record and replays the affected portfolio:
// derived state has no independent existence outside the log, so a deletion
// always forces a full deterministic rebuild.
func (l *Ledger) DeleteTransaction(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.byID[id]
	if !ok {
		return &NotFoundError{Kind: "transaction", ID: id}
	}
	l.removeTx(id)
	l.rebuild(tx.Where())

	if err := l.persist(); err != nil {
		return err
	}
	l.log.Debug("transaction deleted", "id", id)
	return nil
}

// Transaction returns the stored transaction with the given id.
func (l *Ledger) Transaction(id string) (Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tx, ok := l.byID[id]
	if !ok {
		return nil, &NotFoundError{Kind: "transaction", ID: id}
	}
	return tx, nil
}

// Query filters and orders a transaction listing. The zero value lists
// everything, newest first.
type Query struct {
	Asset       string
	Type        TxType
	PortfolioID string
	Exchange    string
	Tag         string
	From, To    time.Time // inclusive bounds; zero means unbounded
	SortBy      string    // timestamp, asset, type, amount, exchange, createdAt
	Ascending   bool
}

func (q Query) matches(tx Transaction) bool {
	b := tx.base()
	if q.Asset != "" && b.Asset != q.Asset {
		return false
	}
	if q.Type != "" && tx.What() != q.Type {
		return false
	}
	if q.PortfolioID != "" && b.PortfolioID != q.PortfolioID {
		return false
	}
	if q.Exchange != "" && b.Exchange != q.Exchange {
		return false
	}
	if q.Tag != "" && !b.HasTag(q.Tag) {
		return false
	}
	if !q.From.IsZero() && tx.When().Before(q.From) {
		return false
	}
	if !q.To.IsZero() && tx.When().After(q.To) {
		return false
	}
	return true
}

func (q Query) compare(a, b Transaction) int {
	var c int
	switch q.SortBy {
	case "asset":
		c = strings.Compare(a.base().Asset, b.base().Asset)
	case "type":
		c = strings.Compare(string(a.What()), string(b.What()))
	case "amount":
		c = a.base().Amount.Decimal().Cmp(b.base().Amount.Decimal())
	case "exchange":
		c = strings.Compare(a.base().Exchange, b.base().Exchange)
	case "createdAt":
		c = a.base().CreatedAt.Compare(b.base().CreatedAt)
	default: // timestamp
		c = a.When().Compare(b.When())
	}
	if !q.Ascending {
		c = -c
	}
	return c
}

// Transactions returns the transactions matching the query, ordered by the
// requested field and direction (event timestamp descending by default).
func (l *Ledger) Transactions(q Query) []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Transaction
	for _, tx := range l.transactions {
		if q.matches(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return q.compare(out[i], out[j]) < 0
	})
	return out
}
