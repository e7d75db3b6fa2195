package coinfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// record is the canonical flat shape a transaction is persisted and
// exchanged in. Every variant round-trips through it without loss, ids
// included.
type record struct {
	ID           string           `json:"id"`
	Type         TxType           `json:"type"`
	Asset        string           `json:"asset"`
	Amount       decimal.Decimal  `json:"amount"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Fee          decimal.Decimal  `json:"fee"`
	FiatCurrency string           `json:"fiatCurrency,omitempty"`
	Exchange     string           `json:"exchange,omitempty"`
	Description  string           `json:"description,omitempty"`
	PortfolioID  string           `json:"portfolioId"`
	Tags         []string         `json:"tags,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	DestAsset    string           `json:"destAsset,omitempty"`
	DestAmount   *decimal.Decimal `json:"destAmount,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// newRecord flattens a transaction variant into its canonical record.
func newRecord(tx Transaction) record {
	b := tx.base()
	r := record{
		ID:           b.ID,
		Type:         tx.What(),
		Asset:        b.Asset,
		Amount:       b.Amount.Decimal(),
		Fee:          b.Fee.Decimal(),
		FiatCurrency: b.FiatCurrency,
		Exchange:     b.Exchange,
		Description:  b.Description,
		PortfolioID:  b.PortfolioID,
		Tags:         b.Tags,
		Timestamp:    b.Timestamp,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if p, ok := tx.(interface{ price() Money }); ok {
		v := p.price().Decimal()
		r.Price = &v
	}
	if c, ok := tx.(*Convert); ok {
		r.DestAsset = c.DestAsset
		v := c.DestAmount.Decimal()
		r.DestAmount = &v
	}
	return r
}

// decodeRecord rebuilds the transaction variant a record describes,
// validating it as the resulting type. The record's id and system
// timestamps are preserved.
func decodeRecord(r record) (Transaction, error) {
	f := Fields{
		Asset:        r.Asset,
		Amount:       Q(r.Amount),
		Fee:          M(r.Fee, r.FiatCurrency),
		FiatCurrency: r.FiatCurrency,
		Exchange:     r.Exchange,
		Description:  r.Description,
		PortfolioID:  r.PortfolioID,
		Tags:         r.Tags,
		Timestamp:    r.Timestamp,
		DestAsset:    r.DestAsset,
	}
	if r.Price != nil {
		p := M(*r.Price, r.FiatCurrency)
		f.UnitPrice = &p
	}
	if r.DestAmount != nil {
		q := Q(*r.DestAmount)
		f.DestAmount = &q
	}

	tx, err := New(r.Type, f)
	if err != nil {
		return nil, err
	}
	b := tx.base()
	b.ID = r.ID
	b.CreatedAt = r.CreatedAt
	b.UpdatedAt = r.UpdatedAt
	return tx, nil
}
