package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coinfolio/coinfolio"
	"github.com/coinfolio/coinfolio/renderer"
)

func newSummaryCmd(a *app) *cobra.Command {
	var portfolio string
	var prices []string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Value the holdings at current market prices",
		Long: `Summary values every held asset with the configured price source and
reports the allocation and profit figures. Assets without a market price are
listed but excluded from the totals.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := priceProvider(a, prices)
			if err != nil {
				return err
			}
			snap := a.ledger.Snapshot(portfolio)
			sum, err := coinfolio.NewValuation(provider).Summary(cmd.Context(), snap)
			if err != nil {
				return err
			}
			a.render(cmd, renderer.SummaryMarkdown(sum))
			return nil
		},
	}
	cmd.Flags().StringVar(&portfolio, "portfolio", "", "restrict to one portfolio id")
	cmd.Flags().StringSliceVar(&prices, "price", nil, "price override ASSET=VALUE, repeatable")
	return cmd
}

// priceProvider builds the provider used by valuations. Prices come from the
// --price overrides; live price feeds plug in through the same interface.
func priceProvider(a *app, overrides []string) (coinfolio.MarketPriceProvider, error) {
	prices := make(map[string]coinfolio.Money)
	for _, spec := range overrides {
		asset, value, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, &coinfolio.ValidationError{Field: "price", Reason: "want ASSET=VALUE, got " + spec}
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		prices[asset] = coinfolio.M(f, a.cfg.Currency)
	}
	return coinfolio.NewStaticProvider(prices), nil
}

func newTaxCmd(a *app) *cobra.Command {
	var portfolio string
	var year int

	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Generate the yearly tax report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = time.Now().Year()
			}
			snap := a.ledger.Snapshot(portfolio)
			report := coinfolio.GenerateTaxReport(snap, year)
			a.render(cmd, renderer.TaxReportMarkdown(report))
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (defaults to the current one)")
	cmd.Flags().StringVar(&portfolio, "portfolio", "", "restrict to one portfolio id")
	return cmd
}
