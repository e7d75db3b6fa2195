package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coinfolio/coinfolio"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		typ        string
		asset      string
		amount     string
		price      float64
		fee        float64
		currency   string
		exchange   string
		note       string
		portfolio  string
		tags       []string
		when       string
		destAsset  string
		destAmount string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Example: `  coinfolio add --type buy --asset BTC --amount 0.5 --price 42000 --date 2025-03-01
  coinfolio add --type convert --asset ETH --amount 2 --dest-asset SOL --dest-amount 55`,
		RunE: func(cmd *cobra.Command, args []string) error {
			txType, err := coinfolio.ParseTxType(typ)
			if err != nil {
				return err
			}
			qty, err := coinfolio.ParseQuantity(amount)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			if currency == "" {
				currency = a.cfg.Currency
			}

			f := coinfolio.Fields{
				Asset:        asset,
				Amount:       qty,
				Fee:          coinfolio.M(fee, currency),
				FiatCurrency: currency,
				Exchange:     exchange,
				Description:  note,
				PortfolioID:  portfolio,
				Tags:         tags,
				DestAsset:    destAsset,
			}
			if cmd.Flags().Changed("price") {
				p := coinfolio.M(price, currency)
				f.UnitPrice = &p
			}
			if destAmount != "" {
				q, err := coinfolio.ParseQuantity(destAmount)
				if err != nil {
					return fmt.Errorf("dest-amount: %w", err)
				}
				f.DestAmount = &q
			}

			f.Timestamp = time.Now().UTC()
			if when != "" {
				f.Timestamp, err = parseDate(when)
				if err != nil {
					return err
				}
			}

			tx, err := coinfolio.New(txType, f)
			if err != nil {
				return err
			}
			tx, err = a.ledger.AddTransaction(tx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s (%s)\n", tx.What(), coinfolio.Describe(tx), tx.Ref())
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "transaction type (buy, sell, convert, ...)")
	cmd.Flags().StringVar(&asset, "asset", "", "asset symbol")
	cmd.Flags().StringVar(&amount, "amount", "", "asset quantity")
	cmd.Flags().Float64Var(&price, "price", 0, "fiat unit price")
	cmd.Flags().Float64Var(&fee, "fee", 0, "fiat fee paid")
	cmd.Flags().StringVar(&currency, "currency", "", "fiat currency (defaults to the configured one)")
	cmd.Flags().StringVar(&exchange, "exchange", "", "exchange or platform")
	cmd.Flags().StringVar(&note, "note", "", "free-form description")
	cmd.Flags().StringVar(&portfolio, "portfolio", "", "portfolio id (defaults to the default portfolio)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag, repeatable")
	cmd.Flags().StringVar(&when, "date", "", "event date (2006-01-02 or RFC3339)")
	cmd.Flags().StringVar(&destAsset, "dest-asset", "", "destination asset (convert only)")
	cmd.Flags().StringVar(&destAmount, "dest-amount", "", "destination quantity (convert only)")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("asset")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
