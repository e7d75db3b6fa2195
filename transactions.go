package coinfolio

import (
	"fmt"
	"slices"
	"time"
)

// TxType is a typed string identifying a transaction variant.
type TxType string

// Transaction types recorded in the ledger.
const (
	TxBuy             TxType = "buy"
	TxSell            TxType = "sell"
	TxTransferIn      TxType = "transfer_in"
	TxTransferOut     TxType = "transfer_out"
	TxConvert         TxType = "convert"
	TxStakingReward   TxType = "staking_reward"
	TxMiningReward    TxType = "mining_reward"
	TxAirdrop         TxType = "airdrop"
	TxGiftReceived    TxType = "gift_received"
	TxGiftSent        TxType = "gift_sent"
	TxPaymentReceived TxType = "payment_received"
	TxPaymentSent     TxType = "payment_sent"
	TxFee             TxType = "fee"
)

var txTypes = []TxType{
	TxBuy, TxSell, TxTransferIn, TxTransferOut, TxConvert,
	TxStakingReward, TxMiningReward, TxAirdrop,
	TxGiftReceived, TxGiftSent, TxPaymentReceived, TxPaymentSent, TxFee,
}

// ParseTxType parses a string into a TxType.
func ParseTxType(s string) (TxType, error) {
	if slices.Contains(txTypes, TxType(s)) {
		return TxType(s), nil
	}
	return "", fmt.Errorf("unknown transaction type: %q", s)
}

// Inbound reports whether the type increases the balance of its asset.
// The destination side of a convert also adds, but that is carried by the
// Convert variant itself.
func (t TxType) Inbound() bool {
	switch t {
	case TxBuy, TxTransferIn, TxStakingReward, TxMiningReward, TxAirdrop,
		TxGiftReceived, TxPaymentReceived:
		return true
	}
	return false
}

// Outbound reports whether the type decreases the balance of its asset.
func (t TxType) Outbound() bool {
	switch t {
	case TxSell, TxTransferOut, TxConvert, TxGiftSent, TxPaymentSent, TxFee:
		return true
	}
	return false
}

// Priced reports whether the type structurally carries a unit price.
func (t TxType) Priced() bool {
	switch t {
	case TxBuy, TxSell, TxStakingReward, TxMiningReward, TxAirdrop, TxFee:
		return true
	}
	return false
}

// Income reports whether the type is taxable income at received fair value.
func (t TxType) Income() bool {
	switch t {
	case TxStakingReward, TxMiningReward, TxAirdrop:
		return true
	}
	return false
}

// Transaction is the closed interface over all transaction variants. Each
// variant carries only the fields valid for its type, enforced at
// construction; there are no runtime field-presence checks downstream.
//
// A transaction is immutable once persisted: updates build a fresh variant
// and replace the stored one.
type Transaction interface {
	What() TxType     // variant type tag
	When() time.Time  // event timestamp
	Ref() string      // opaque unique id
	Where() string    // owning portfolio id
	Validate() error
	base() *baseTx
}

// baseTx carries the fields shared by every transaction variant.
type baseTx struct {
	ID           string
	PortfolioID  string
	Asset        string
	Amount       Quantity
	Fee          Money // fiat fee paid on the transaction, may be zero
	FiatCurrency string
	Exchange     string
	Description  string
	Tags         []string
	Timestamp    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *baseTx) When() time.Time { return t.Timestamp }
func (t *baseTx) Ref() string     { return t.ID }
func (t *baseTx) Where() string   { return t.PortfolioID }
func (t *baseTx) base() *baseTx   { return t }

// HasTag reports whether the transaction carries the given tag.
func (t *baseTx) HasTag(tag string) bool { return slices.Contains(t.Tags, tag) }

func (t *baseTx) validate() error {
	if t.Asset == "" {
		return invalidf("asset", "asset symbol is required")
	}
	if !t.Amount.IsPositive() {
		return invalidf("amount", "must be positive, got %s", t.Amount)
	}
	if t.Fee.IsNegative() {
		return invalidf("fee", "must not be negative, got %s", t.Fee.Decimal())
	}
	if t.Timestamp.IsZero() {
		return invalidf("timestamp", "event timestamp is required")
	}
	return nil
}

// pricedTx is the component for variants that carry a fiat unit price.
type pricedTx struct {
	baseTx
	UnitPrice Money
}

func (t *pricedTx) price() Money { return t.UnitPrice }

func (t *pricedTx) validate() error {
	if err := t.baseTx.validate(); err != nil {
		return err
	}
	if t.UnitPrice.IsNegative() {
		return invalidf("price", "must not be negative, got %s", t.UnitPrice.Decimal())
	}
	// Quick fix: a price without an explicit currency takes the
	// transaction's fiat currency.
	if t.UnitPrice.Currency() == "" && t.FiatCurrency != "" {
		t.UnitPrice = M(t.UnitPrice.Decimal(), t.FiatCurrency)
	}
	return nil
}

// Buy is a purchase of an asset for fiat at a unit price.
type Buy struct{ pricedTx }

func (t *Buy) What() TxType    { return TxBuy }
func (t *Buy) Validate() error { return t.pricedTx.validate() }

// Sell is a disposal of an asset for fiat at a unit price.
type Sell struct{ pricedTx }

func (t *Sell) What() TxType    { return TxSell }
func (t *Sell) Validate() error { return t.pricedTx.validate() }

// StakingReward is an asset inflow earned from staking, valued at received
// fair value for income reporting.
type StakingReward struct{ pricedTx }

func (t *StakingReward) What() TxType    { return TxStakingReward }
func (t *StakingReward) Validate() error { return t.pricedTx.validate() }

// MiningReward is an asset inflow earned from mining.
type MiningReward struct{ pricedTx }

func (t *MiningReward) What() TxType    { return TxMiningReward }
func (t *MiningReward) Validate() error { return t.pricedTx.validate() }

// Airdrop is an unsolicited asset inflow, valued at received fair value.
type Airdrop struct{ pricedTx }

func (t *Airdrop) What() TxType    { return TxAirdrop }
func (t *Airdrop) Validate() error { return t.pricedTx.validate() }

// FeeCharge is a standalone fee paid in an asset (e.g. network gas), valued
// at a unit price so it can be aggregated as a deductible expense.
type FeeCharge struct{ pricedTx }

func (t *FeeCharge) What() TxType    { return TxFee }
func (t *FeeCharge) Validate() error { return t.pricedTx.validate() }

// TransferIn moves an asset into the portfolio from an external wallet or
// exchange. It adds balance with zero cost basis.
type TransferIn struct{ baseTx }

func (t *TransferIn) What() TxType    { return TxTransferIn }
func (t *TransferIn) Validate() error { return t.baseTx.validate() }

// TransferOut moves an asset out of the portfolio.
type TransferOut struct{ baseTx }

func (t *TransferOut) What() TxType    { return TxTransferOut }
func (t *TransferOut) Validate() error { return t.baseTx.validate() }

// GiftReceived is an asset received as a gift.
type GiftReceived struct{ baseTx }

func (t *GiftReceived) What() TxType    { return TxGiftReceived }
func (t *GiftReceived) Validate() error { return t.baseTx.validate() }

// GiftSent is an asset given away.
type GiftSent struct{ baseTx }

func (t *GiftSent) What() TxType    { return TxGiftSent }
func (t *GiftSent) Validate() error { return t.baseTx.validate() }

// PaymentReceived is an asset received in exchange for goods or services.
type PaymentReceived struct{ baseTx }

func (t *PaymentReceived) What() TxType    { return TxPaymentReceived }
func (t *PaymentReceived) Validate() error { return t.baseTx.validate() }

// PaymentSent is an asset spent on goods or services.
type PaymentSent struct{ baseTx }

func (t *PaymentSent) What() TxType    { return TxPaymentSent }
func (t *PaymentSent) Validate() error { return t.baseTx.validate() }

// Convert swaps one asset for another: the source amount leaves the balance
// and the destination amount enters it.
type Convert struct {
	baseTx
	DestAsset  string
	DestAmount Quantity
}

func (t *Convert) What() TxType { return TxConvert }

func (t *Convert) Validate() error {
	if err := t.baseTx.validate(); err != nil {
		return err
	}
	if t.DestAsset == "" {
		return invalidf("destAsset", "destination asset is required for convert")
	}
	if t.DestAsset == t.Asset {
		return invalidf("destAsset", "cannot convert %s to itself", t.Asset)
	}
	if !t.DestAmount.IsPositive() {
		return invalidf("destAmount", "must be positive, got %s", t.DestAmount)
	}
	return nil
}

// Describe returns a one-line human description of the transaction.
func Describe(tx Transaction) string {
	b := tx.base()
	switch v := tx.(type) {
	case *Buy:
		return fmt.Sprintf("%s %s @ %s", b.Amount, b.Asset, v.UnitPrice)
	case *Sell:
		return fmt.Sprintf("%s %s @ %s", b.Amount, b.Asset, v.UnitPrice)
	case *Convert:
		return fmt.Sprintf("%s %s to %s %s", b.Amount, b.Asset, v.DestAmount, v.DestAsset)
	}
	if p, ok := tx.(interface{ price() Money }); ok {
		return fmt.Sprintf("%s %s @ %s", b.Amount, b.Asset, p.price())
	}
	return fmt.Sprintf("%s %s", b.Amount, b.Asset)
}

// Fields is the flat construction shape for a transaction. New builds the
// variant matching the type and rejects fields that do not belong to it.
type Fields struct {
	Asset        string
	Amount       Quantity
	UnitPrice    *Money // nil when the type carries no price
	Fee          Money
	FiatCurrency string
	Exchange     string
	Description  string
	PortfolioID  string
	Tags         []string
	Timestamp    time.Time
	DestAsset    string
	DestAmount   *Quantity
}

// New constructs the transaction variant for typ from flat fields and
// validates it. The id and system timestamps are assigned by the ledger on
// insert, not here.
func New(typ TxType, f Fields) (Transaction, error) {
	b := baseTx{
		PortfolioID:  f.PortfolioID,
		Asset:        f.Asset,
		Amount:       f.Amount,
		Fee:          f.Fee,
		FiatCurrency: f.FiatCurrency,
		Exchange:     f.Exchange,
		Description:  f.Description,
		Tags:         slices.Clone(f.Tags),
		Timestamp:    f.Timestamp,
	}

	if f.DestAsset != "" && typ != TxConvert {
		return nil, invalidf("destAsset", "only valid for convert, not %s", typ)
	}
	if f.UnitPrice != nil && !typ.Priced() {
		return nil, invalidf("price", "not valid for %s", typ)
	}
	if f.UnitPrice == nil && typ.Priced() {
		return nil, invalidf("price", "required for %s", typ)
	}

	var tx Transaction
	switch typ {
	case TxBuy:
		tx = &Buy{pricedTx{baseTx: b, UnitPrice: *f.UnitPrice}}
	case TxSell:
		tx = &Sell{pricedTx{baseTx: b, UnitPrice: *f.UnitPrice}}
	case TxStakingReward:
		tx = &StakingReward{pricedTx{baseTx: b, UnitPrice: *f.UnitPrice}}
	case TxMiningReward:
		tx = &MiningReward{pricedTx{baseTx: b, UnitPrice: *f.UnitPrice}}
	case TxAirdrop:
		tx = &Airdrop{pricedTx{baseTx: b, UnitPrice: *f.UnitPrice}}
	case TxFee:
		tx = &FeeCharge{pricedTx{baseTx: b, UnitPrice: *f.UnitPrice}}
	case TxTransferIn:
		tx = &TransferIn{b}
	case TxTransferOut:
		tx = &TransferOut{b}
	case TxGiftReceived:
		tx = &GiftReceived{b}
	case TxGiftSent:
		tx = &GiftSent{b}
	case TxPaymentReceived:
		tx = &PaymentReceived{b}
	case TxPaymentSent:
		tx = &PaymentSent{b}
	case TxConvert:
		var dest Quantity
		if f.DestAmount != nil {
			dest = *f.DestAmount
		}
		tx = &Convert{baseTx: b, DestAsset: f.DestAsset, DestAmount: dest}
	default:
		return nil, invalidf("type", "unknown transaction type %q", typ)
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewBuy creates a buy of quantity units at the given fiat unit price.
func NewBuy(portfolioID, asset string, quantity Quantity, unitPrice Money, at time.Time) *Buy {
	return &Buy{pricedTx{
		baseTx:    baseTx{PortfolioID: portfolioID, Asset: asset, Amount: quantity, FiatCurrency: unitPrice.Currency(), Timestamp: at},
		UnitPrice: unitPrice,
	}}
}

// NewSell creates a sell of quantity units at the given fiat unit price.
func NewSell(portfolioID, asset string, quantity Quantity, unitPrice Money, at time.Time) *Sell {
	return &Sell{pricedTx{
		baseTx:    baseTx{PortfolioID: portfolioID, Asset: asset, Amount: quantity, FiatCurrency: unitPrice.Currency(), Timestamp: at},
		UnitPrice: unitPrice,
	}}
}

// NewConvert creates a conversion of amount units of asset into destAmount
// units of destAsset.
func NewConvert(portfolioID, asset string, amount Quantity, destAsset string, destAmount Quantity, at time.Time) *Convert {
	return &Convert{
		baseTx:     baseTx{PortfolioID: portfolioID, Asset: asset, Amount: amount, Timestamp: at},
		DestAsset:  destAsset,
		DestAmount: destAmount,
	}
}

// NewTransferIn creates an inbound transfer of amount units of asset.
func NewTransferIn(portfolioID, asset string, amount Quantity, at time.Time) *TransferIn {
	return &TransferIn{baseTx{PortfolioID: portfolioID, Asset: asset, Amount: amount, Timestamp: at}}
}

// NewTransferOut creates an outbound transfer of amount units of asset.
func NewTransferOut(portfolioID, asset string, amount Quantity, at time.Time) *TransferOut {
	return &TransferOut{baseTx{PortfolioID: portfolioID, Asset: asset, Amount: amount, Timestamp: at}}
}

// NewStakingReward creates a staking reward valued at the given fair unit price.
func NewStakingReward(portfolioID, asset string, amount Quantity, fairPrice Money, at time.Time) *StakingReward {
	return &StakingReward{pricedTx{
		baseTx:    baseTx{PortfolioID: portfolioID, Asset: asset, Amount: amount, FiatCurrency: fairPrice.Currency(), Timestamp: at},
		UnitPrice: fairPrice,
	}}
}
