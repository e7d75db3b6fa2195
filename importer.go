package coinfolio

import (
	"fmt"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// ImportRow is one raw row from an external source, keyed by column name.
// Values may be strings, numbers or nested documents (JSON exports).
type ImportRow map[string]any

// Profile maps an external source's rows onto transaction fields. A column
// spec is either a plain column name or, when it starts with "$", a JSONPath
// expression evaluated against the whole row.
type Profile struct {
	Name        string
	Columns     map[string]string // canonical field -> column name or JSONPath
	TypeAliases map[string]TxType // source type label (lowercased) -> type
	TimeLayouts []string          // tried in order when parsing timestamps
}

// Canonical fields a profile can map. Unmapped optional fields are left
// empty; type, asset, amount and timestamp are required of every row.
const (
	fieldType        = "type"
	fieldAsset       = "asset"
	fieldAmount      = "amount"
	fieldPrice       = "price"
	fieldFee         = "fee"
	fieldCurrency    = "fiatCurrency"
	fieldExchange    = "exchange"
	fieldDescription = "description"
	fieldTimestamp   = "timestamp"
	fieldDestAsset   = "destAsset"
	fieldDestAmount  = "destAmount"
)

// commonTypeAliases translate the type labels exchanges actually emit.
var commonTypeAliases = map[string]TxType{
	"buy":            TxBuy,
	"purchase":       TxBuy,
	"sell":           TxSell,
	"sale":           TxSell,
	"deposit":        TxTransferIn,
	"receive":        TxTransferIn,
	"withdrawal":     TxTransferOut,
	"withdraw":       TxTransferOut,
	"send":           TxTransferOut,
	"convert":        TxConvert,
	"swap":           TxConvert,
	"staking":        TxStakingReward,
	"staking income": TxStakingReward,
	"reward":         TxStakingReward,
	"mining":         TxMiningReward,
	"airdrop":        TxAirdrop,
	"fee":            TxFee,
}

// BinanceProfile maps Binance transaction history exports.
func BinanceProfile() Profile {
	return Profile{
		Name: "binance",
		Columns: map[string]string{
			fieldType:      "Operation",
			fieldAsset:     "Coin",
			fieldAmount:    "Change",
			fieldTimestamp: "UTC_Time",
			fieldExchange:  "Account",
		},
		TypeAliases: map[string]TxType{
			"buy":             TxBuy,
			"sell":            TxSell,
			"deposit":         TxTransferIn,
			"withdraw":        TxTransferOut,
			"staking rewards": TxStakingReward,
			"distribution":    TxAirdrop,
			"fee":             TxFee,
		},
		TimeLayouts: []string{"2006-01-02 15:04:05"},
	}
}

// CoinbaseProfile maps Coinbase transaction report exports.
func CoinbaseProfile() Profile {
	return Profile{
		Name: "coinbase",
		Columns: map[string]string{
			fieldType:        "Transaction Type",
			fieldAsset:       "Asset",
			fieldAmount:      "Quantity Transacted",
			fieldPrice:       "Spot Price at Transaction",
			fieldFee:         "Fees and/or Spread",
			fieldCurrency:    "Spot Price Currency",
			fieldTimestamp:   "Timestamp",
			fieldDescription: "Notes",
		},
		TypeAliases: map[string]TxType{
			"buy":             TxBuy,
			"sell":            TxSell,
			"receive":         TxTransferIn,
			"send":            TxTransferOut,
			"convert":         TxConvert,
			"staking income":  TxStakingReward,
			"coinbase earn":   TxAirdrop,
			"learning reward": TxAirdrop,
		},
		TimeLayouts: []string{time.RFC3339, "2006-01-02T15:04:05Z"},
	}
}

// GenericProfile maps rows whose columns already use (close to) canonical
// names; unmapped fields fall back to fuzzy column matching.
func GenericProfile() Profile {
	return Profile{Name: "generic"}
}

// genericAliases are the column names the generic fallback recognizes, per
// canonical field, compared after normalization.
var genericAliases = map[string][]string{
	fieldType:        {"type", "transactiontype", "operation", "side"},
	fieldAsset:       {"asset", "coin", "symbol"},
	fieldAmount:      {"amount", "quantity", "size", "change"},
	fieldPrice:       {"price", "unitprice", "spotprice"},
	fieldFee:         {"fee", "fees"},
	fieldCurrency:    {"fiatcurrency", "currency", "pricecurrency", "quotecurrency"},
	fieldExchange:    {"exchange", "account", "platform"},
	fieldDescription: {"description", "notes", "note", "comment"},
	fieldTimestamp:   {"timestamp", "date", "time", "datetime", "utctime"},
	fieldDestAsset:   {"destasset", "toasset", "tocoin"},
	fieldDestAmount:  {"destamount", "toamount"},
}

func normalizeColumn(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer(" ", "", "_", "", "-", "", "(utc)", "").Replace(name)
	return name
}

// lookup resolves the canonical field for one row: the profile's mapping
// first, the generic aliases as fallback. A "$"-prefixed mapping is a
// JSONPath evaluated against the whole row.
func (p Profile) lookup(row ImportRow, field string) (any, bool) {
	if spec, ok := p.Columns[field]; ok {
		if strings.HasPrefix(spec, "$") {
			v, err := jsonpath.Get(spec, map[string]any(row))
			if err != nil || v == nil {
				return nil, false
			}
			return v, true
		}
		v, ok := row[spec]
		return v, ok
	}
	for _, alias := range genericAliases[field] {
		for column, v := range row {
			if normalizeColumn(column) == alias {
				return v, true
			}
		}
	}
	return nil, false
}

func (p Profile) stringField(row ImportRow, field string) string {
	v, ok := p.lookup(row, field)
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (p Profile) decimalField(row ImportRow, field string) (decimal.Decimal, bool, error) {
	v, ok := p.lookup(row, field)
	if !ok || v == nil {
		return decimal.Decimal{}, false, nil
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true, nil
	case int:
		return decimal.NewFromInt(int64(n)), true, nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return decimal.Decimal{}, false, nil
		}
		// Exports report outflows as negative changes; amounts are
		// magnitudes, the sign lives in the type.
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false, fmt.Errorf("%s: %w", field, err)
		}
		return d, true, nil
	default:
		return decimal.Decimal{}, false, fmt.Errorf("%s: unsupported value %T", field, v)
	}
}

func (p Profile) timeField(row ImportRow, field string) (time.Time, error) {
	v, ok := p.lookup(row, field)
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("%s: missing", field)
	}
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	layouts := p.TimeLayouts
	if len(layouts) == 0 {
		layouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: unparseable time %q", field, s)
}

func (p Profile) txType(label string) (TxType, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if t, ok := p.TypeAliases[key]; ok {
		return t, nil
	}
	if t, ok := commonTypeAliases[key]; ok {
		return t, nil
	}
	return ParseTxType(key)
}

// mapRow converts one raw row into a validated transaction.
func (p Profile) mapRow(row ImportRow, portfolioID string) (Transaction, error) {
	typ, err := p.txType(p.stringField(row, fieldType))
	if err != nil {
		return nil, err
	}

	f := Fields{
		Asset:        p.stringField(row, fieldAsset),
		FiatCurrency: p.stringField(row, fieldCurrency),
		Exchange:     p.stringField(row, fieldExchange),
		Description:  p.stringField(row, fieldDescription),
		DestAsset:    p.stringField(row, fieldDestAsset),
		PortfolioID:  portfolioID,
	}
	if f.Exchange == "" && p.Name != "generic" {
		f.Exchange = p.Name
	}

	amount, ok, err := p.decimalField(row, fieldAmount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("amount: missing")
	}
	f.Amount = Q(amount.Abs())

	if d, ok, err := p.decimalField(row, fieldPrice); err != nil {
		return nil, err
	} else if ok {
		m := M(d, f.FiatCurrency)
		f.UnitPrice = &m
	}
	if d, ok, err := p.decimalField(row, fieldFee); err != nil {
		return nil, err
	} else if ok {
		f.Fee = M(d.Abs(), f.FiatCurrency)
	}
	if d, ok, err := p.decimalField(row, fieldDestAmount); err != nil {
		return nil, err
	} else if ok {
		q := Q(d.Abs())
		f.DestAmount = &q
	}

	f.Timestamp, err = p.timeField(row, fieldTimestamp)
	if err != nil {
		return nil, err
	}

	return New(typ, f)
}

// ImportResult summarizes one import run. Invalid rows are collected with
// their row number and skipped; valid rows are always committed, so a batch
// with errors is a partial import, not a rollback.
type ImportResult struct {
	Total   int
	Added   int
	Invalid int
	Errors  []*ImportRowError
}

// ImportRows maps and adds each row under the profile. Row numbers in the
// reported errors are 1-based positions within the batch.
func (l *Ledger) ImportRows(rows []ImportRow, profile Profile, portfolioID string) ImportResult {
	result := ImportResult{Total: len(rows)}
	for i, row := range rows {
		tx, err := profile.mapRow(row, portfolioID)
		if err == nil {
			_, err = l.AddTransaction(tx)
		}
		if err != nil {
			result.Invalid++
			result.Errors = append(result.Errors, &ImportRowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		result.Added++
	}
	l.log.Info("import finished", "profile", profile.Name,
		"total", result.Total, "added", result.Added, "invalid", result.Invalid)
	return result
}
