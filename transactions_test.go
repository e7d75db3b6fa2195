package coinfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsMalformedFields(t *testing.T) {
	at := date(2025, time.March, 1)
	price := usd(100)
	dest := Q(10)

	tests := []struct {
		name  string
		typ   TxType
		f     Fields
		field string
	}{
		{
			name:  "missing asset",
			typ:   TxBuy,
			f:     Fields{Amount: Q(1), UnitPrice: &price, Timestamp: at},
			field: "asset",
		},
		{
			name:  "zero amount",
			typ:   TxBuy,
			f:     Fields{Asset: "BTC", Amount: Q(0), UnitPrice: &price, Timestamp: at},
			field: "amount",
		},
		{
			name:  "negative amount",
			typ:   TxSell,
			f:     Fields{Asset: "BTC", Amount: Q(-1), UnitPrice: &price, Timestamp: at},
			field: "amount",
		},
		{
			name:  "missing timestamp",
			typ:   TxBuy,
			f:     Fields{Asset: "BTC", Amount: Q(1), UnitPrice: &price},
			field: "timestamp",
		},
		{
			name:  "buy without price",
			typ:   TxBuy,
			f:     Fields{Asset: "BTC", Amount: Q(1), Timestamp: at},
			field: "price",
		},
		{
			name:  "price on a transfer",
			typ:   TxTransferIn,
			f:     Fields{Asset: "BTC", Amount: Q(1), UnitPrice: &price, Timestamp: at},
			field: "price",
		},
		{
			name:  "convert without destination asset",
			typ:   TxConvert,
			f:     Fields{Asset: "ETH", Amount: Q(2), DestAmount: &dest, Timestamp: at},
			field: "destAsset",
		},
		{
			name:  "convert to itself",
			typ:   TxConvert,
			f:     Fields{Asset: "ETH", Amount: Q(2), DestAsset: "ETH", DestAmount: &dest, Timestamp: at},
			field: "destAsset",
		},
		{
			name:  "convert without destination amount",
			typ:   TxConvert,
			f:     Fields{Asset: "ETH", Amount: Q(2), DestAsset: "SOL", Timestamp: at},
			field: "destAmount",
		},
		{
			name:  "destination asset on a buy",
			typ:   TxBuy,
			f:     Fields{Asset: "BTC", Amount: Q(1), UnitPrice: &price, DestAsset: "ETH", Timestamp: at},
			field: "destAsset",
		},
		{
			name:  "negative fee",
			typ:   TxTransferOut,
			f:     Fields{Asset: "BTC", Amount: Q(1), Fee: usd(-5), Timestamp: at},
			field: "fee",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.typ, tc.f)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestNewBuildsEveryVariant(t *testing.T) {
	at := date(2025, time.March, 1)
	price := usd(50)
	dest := Q(10)

	for _, typ := range txTypes {
		f := Fields{Asset: "BTC", Amount: Q(1), Timestamp: at}
		if typ.Priced() {
			f.UnitPrice = &price
		}
		if typ == TxConvert {
			f.DestAsset = "ETH"
			f.DestAmount = &dest
		}
		tx, err := New(typ, f)
		require.NoError(t, err, typ)
		assert.Equal(t, typ, tx.What())
		assert.Equal(t, at, tx.When())
	}
}

func TestPriceInheritsFiatCurrency(t *testing.T) {
	p := M(100, "")
	tx, err := New(TxBuy, Fields{
		Asset: "BTC", Amount: Q(1), UnitPrice: &p,
		FiatCurrency: "EUR", Timestamp: date(2025, time.March, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", tx.(*Buy).UnitPrice.Currency())
}

func TestParseTxType(t *testing.T) {
	typ, err := ParseTxType("staking_reward")
	require.NoError(t, err)
	assert.Equal(t, TxStakingReward, typ)

	_, err = ParseTxType("margin_call")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	at := date(2025, time.March, 1)
	buy := NewBuy("", "BTC", Q(2), usd(100), at)
	assert.Contains(t, Describe(buy), "BTC")

	conv := NewConvert("", "ETH", Q(2), "SOL", Q(50), at)
	assert.Contains(t, Describe(conv), "SOL")
}
