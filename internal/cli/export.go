package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/handlers"
	"github.com/rustyeddy/tradejournal/journal"
)

// exportResult reports where an export landed.
type exportResult struct {
	Files  []string `json:"files"`
	Trades int      `json:"trades"`
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades to CSV or Org-mode",
		Long: `Write the journal to files. The target directory defaults to
export.dir from the configuration.

Examples:
  tradejournal export csv --dir ./out
  tradejournal export org --symbol EURUSD`,
	}
	cmd.AddCommand(newExportCSVCmd(a), newExportOrgCmd(a))
	return cmd
}

func (a *app) exportDir(dir string) (string, error) {
	if dir == "" {
		dir = a.cfg.Export.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	return dir, nil
}

func printExport(p *printer, r exportResult) error {
	for _, f := range r.Files {
		fmt.Fprintf(p.w, "✓ Wrote %s\n", f)
	}
	fmt.Fprintf(p.w, "  %d trades\n", r.Trades)
	return nil
}

func newExportCSVCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write trades.csv and curve.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.exportDir(dir)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return a.withJournal(ctx, func(h *handlers.Handlers) error {
				trades := h.ListTrades(ctx, journal.TradeFilter{})
				if !trades.Success {
					return emit(a, cmd, trades, nil)
				}
				curve := h.ProfitCurve(ctx)
				if !curve.Success {
					return emit(a, cmd, curve, nil)
				}

				res, err := writeCSV(out, trades.Data, curve.Data)
				if err != nil {
					return emit(a, cmd, handlers.Response[exportResult]{Message: err.Error()}, nil)
				}
				return emit(a, cmd, handlers.Response[exportResult]{Success: true, Data: res}, printExport)
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory")
	return cmd
}

func writeCSV(dir string, trades []journal.Trade, curve []journal.CurvePoint) (exportResult, error) {
	tradesPath := filepath.Join(dir, "trades.csv")
	curvePath := filepath.Join(dir, "curve.csv")

	x, err := journal.NewCSV(tradesPath, curvePath)
	if err != nil {
		return exportResult{}, err
	}
	for _, t := range trades {
		if err := x.WriteTrade(t); err != nil {
			x.Close()
			return exportResult{}, err
		}
	}
	for _, c := range curve {
		if err := x.WriteCurvePoint(c); err != nil {
			x.Close()
			return exportResult{}, err
		}
	}
	if err := x.Close(); err != nil {
		return exportResult{}, err
	}
	return exportResult{Files: []string{tradesPath, curvePath}, Trades: len(trades)}, nil
}

func newExportOrgCmd(a *app) *cobra.Command {
	var (
		dir    string
		filter journal.TradeFilter
	)
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Write journal.org with one entry per trade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.exportDir(dir)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return a.withJournal(ctx, func(h *handlers.Handlers) error {
				trades := h.ListTrades(ctx, filter)
				if !trades.Success {
					return emit(a, cmd, trades, nil)
				}

				path := filepath.Join(out, "journal.org")
				if err := os.WriteFile(path, []byte(journal.FormatTradesOrg(trades.Data)), 0o644); err != nil {
					return emit(a, cmd, handlers.Response[exportResult]{Message: err.Error()}, nil)
				}
				res := exportResult{Files: []string{path}, Trades: len(trades.Data)}
				return emit(a, cmd, handlers.Response[exportResult]{Success: true, Data: res}, printExport)
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory")
	cmd.Flags().StringVar(&filter.Symbol, "symbol", "", "Only this symbol")
	cmd.Flags().StringVar(&filter.MethodID, "method", "", "Only this method id")
	cmd.Flags().StringVar(&filter.StartDate, "from", "", "Entry time on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.EndDate, "to", "", "Entry time on or before (YYYY-MM-DD)")
	return cmd
}
