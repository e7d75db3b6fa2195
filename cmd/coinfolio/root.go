package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/coinfolio/coinfolio"
	"github.com/coinfolio/coinfolio/config"
	"github.com/coinfolio/coinfolio/store"
)

// app carries the state shared by all subcommands, wired once the root
// command's flags are parsed.
type app struct {
	cfg    config.Config
	ledger *coinfolio.Ledger
	log    *slog.Logger

	configPath string
	plain      bool // skip terminal rendering, print raw markdown
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "coinfolio",
		Short:         "Track crypto transactions, cost basis and taxes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath(), "configuration file")
	root.PersistentFlags().BoolVar(&a.plain, "plain", false, "print raw markdown instead of rendering")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newPortfolioCmd(a),
		newSummaryCmd(a),
		newTaxCmd(a),
		newImportCmd(a),
		newExportCmd(a),
	)
	return root
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "coinfolio.yaml"
	}
	return filepath.Join(home, ".coinfolio", "config.yaml")
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = newLogger(cfg.Log)
	slog.SetDefault(a.log)

	var st store.DocumentStore
	switch cfg.Store {
	case config.StoreSQLite:
		st, err = store.NewSQLite(cfg.SQLitePath())
	default:
		st, err = store.NewFileStore(cfg.DataDir)
	}
	if err != nil {
		return err
	}

	a.ledger, err = coinfolio.NewLedger(st, coinfolio.WithLogger(a.log))
	return err
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// render prints a markdown document, styled for the terminal unless --plain
// is set or styling fails.
func (a *app) render(cmd *cobra.Command, markdown string) {
	if !a.plain {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err == nil {
			if out, err := r.Render(markdown); err == nil {
				fmt.Fprint(cmd.OutOrStdout(), out)
				return
			}
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), markdown)
}
