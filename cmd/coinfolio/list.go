package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coinfolio/coinfolio"
	"github.com/coinfolio/coinfolio/renderer"
)

func newListCmd(a *app) *cobra.Command {
	var q coinfolio.Query
	var typ, from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if typ != "" {
				t, err := coinfolio.ParseTxType(typ)
				if err != nil {
					return err
				}
				q.Type = t
			}
			var err error
			if from != "" {
				if q.From, err = parseDate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if q.To, err = parseDate(to); err != nil {
					return err
				}
			}
			txs := a.ledger.Transactions(q)
			a.render(cmd, renderer.TransactionsMarkdown(txs))
			return nil
		},
	}

	cmd.Flags().StringVar(&q.Asset, "asset", "", "filter by asset")
	cmd.Flags().StringVar(&typ, "type", "", "filter by transaction type")
	cmd.Flags().StringVar(&q.PortfolioID, "portfolio", "", "filter by portfolio id")
	cmd.Flags().StringVar(&q.Exchange, "exchange", "", "filter by exchange")
	cmd.Flags().StringVar(&q.Tag, "tag", "", "filter by tag")
	cmd.Flags().StringVar(&from, "from", "", "inclusive start date")
	cmd.Flags().StringVar(&to, "to", "", "inclusive end date")
	cmd.Flags().StringVar(&q.SortBy, "sort", "", "sort field (timestamp, asset, type, amount, exchange, createdAt)")
	cmd.Flags().BoolVar(&q.Ascending, "asc", false, "sort ascending instead of descending")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction and replay its portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ledger.DeleteTransaction(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
