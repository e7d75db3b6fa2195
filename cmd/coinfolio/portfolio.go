package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coinfolio/coinfolio"
)

func newPortfolioCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage portfolios",
	}
	cmd.AddCommand(
		newPortfolioListCmd(a),
		newPortfolioCreateCmd(a),
		newPortfolioRenameCmd(a),
		newPortfolioDeleteCmd(a),
	)
	return cmd
}

func newPortfolioListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List portfolios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range a.ledger.Portfolios() {
				mark := " "
				if p.IsDefault {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", mark, p.ID, p.Name)
			}
			return nil
		},
	}
}

func newPortfolioCreateCmd(a *app) *cobra.Command {
	var isDefault bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.ledger.SavePortfolio(coinfolio.Portfolio{Name: args[0], IsDefault: isDefault})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&isDefault, "default", false, "make it the default portfolio")
	return cmd
}

func newPortfolioRenameCmd(a *app) *cobra.Command {
	var isDefault bool
	cmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a portfolio",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.ledger.PortfolioByID(args[0])
			if err != nil {
				return err
			}
			p.Name = args[1]
			if cmd.Flags().Changed("default") {
				p.IsDefault = isDefault
			}
			if _, err := a.ledger.SavePortfolio(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&isDefault, "default", false, "make it the default portfolio")
	return cmd
}

func newPortfolioDeleteCmd(a *app) *cobra.Command {
	var moveTo string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a portfolio and purge (or move) its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := coinfolio.DeleteOptions{}
			if moveTo != "" {
				opts.MoveTransactions = true
				opts.TargetPortfolioID = moveTo
			}
			if err := a.ledger.DeletePortfolio(args[0], opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&moveTo, "move-to", "", "move transactions to this portfolio instead of purging them")
	return cmd
}
