package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coinfolio/coinfolio"
)

func newImportCmd(a *app) *cobra.Command {
	var profileName string
	var portfolio string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from an exchange export or a ledger dump",
		Long: `Import reads a CSV export under a mapping profile (binance, coinbase or
generic), or a .jsonl ledger dump produced by export. Invalid rows are
reported with their row number and skipped; valid rows are committed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			if strings.HasSuffix(args[0], ".jsonl") {
				added, err := a.ledger.ImportTransactions(file)
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d transactions\n", added)
				return err
			}

			profile, err := profileByName(profileName)
			if err != nil {
				return err
			}
			rows, err := readCSVRows(file)
			if err != nil {
				return err
			}
			result := a.ledger.ImportRows(rows, profile, portfolio)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d/%d rows\n", result.Added, result.Total)
			for _, rowErr := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", rowErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&profileName, "profile", "generic", "mapping profile (binance, coinbase, generic)")
	cmd.Flags().StringVar(&portfolio, "portfolio", "", "portfolio id for the imported transactions")
	return cmd
}

func profileByName(name string) (coinfolio.Profile, error) {
	switch name {
	case "binance":
		return coinfolio.BinanceProfile(), nil
	case "coinbase":
		return coinfolio.CoinbaseProfile(), nil
	case "generic":
		return coinfolio.GenericProfile(), nil
	}
	return coinfolio.Profile{}, fmt.Errorf("unknown import profile %q", name)
}

// readCSVRows reads a headed CSV into raw rows keyed by column name.
func readCSVRows(file *os.File) ([]coinfolio.ImportRow, error) {
	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 1 {
		return nil, nil
	}
	header := records[0]
	rows := make([]coinfolio.ImportRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(coinfolio.ImportRow, len(header))
		for i, column := range header {
			if i < len(rec) {
				row[column] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func newExportCmd(a *app) *cobra.Command {
	var portfolio string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as JSON Lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := coinfolio.Query{PortfolioID: portfolio, SortBy: "timestamp", Ascending: true}
			return a.ledger.ExportTransactions(cmd.OutOrStdout(), q)
		},
	}
	cmd.Flags().StringVar(&portfolio, "portfolio", "", "restrict to one portfolio id")
	return cmd
}
