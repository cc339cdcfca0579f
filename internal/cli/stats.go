package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/handlers"
	"github.com/rustyeddy/tradejournal/journal"
)

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Performance statistics",
		Long: `Derive performance statistics from the journal.

Subcommands:
  overall  - Totals, win rate, profit factor and holding time
  methods  - Per-method breakdown
  symbols  - Per-symbol breakdown
  period   - Day, week or month buckets
  curve    - Cumulative profit by exit time
  report   - Org-mode report of all of the above`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "overall",
			Short: "Overall summary",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
					return emit(a, cmd, h.OverallStats(cmd.Context()), printSummary)
				})
			},
		},
		&cobra.Command{
			Use:   "methods",
			Short: "Per-method breakdown",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
					return emit(a, cmd, h.MethodStats(cmd.Context()), printMethodStats)
				})
			},
		},
		&cobra.Command{
			Use:   "symbols",
			Short: "Per-symbol breakdown",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
					return emit(a, cmd, h.SymbolStats(cmd.Context()), printSymbolStats)
				})
			},
		},
		&cobra.Command{
			Use:       "period <day|week|month>",
			Short:     "Trades, win rate and P/L per time bucket",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"day", "week", "month"},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
					return emit(a, cmd, h.TimePeriodStats(cmd.Context(), args[0]), printPeriods)
				})
			},
		},
		&cobra.Command{
			Use:   "curve",
			Short: "Cumulative profit curve",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
					return emit(a, cmd, h.ProfitCurve(cmd.Context()), printCurve)
				})
			},
		},
		newStatsReportCmd(a),
	)
	return cmd
}

func newStatsReportCmd(a *app) *cobra.Command {
	var (
		title  string
		output string
		notes  []string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render an Org-mode statistics report",
		Long: `Render the overall, per-method and per-symbol statistics as an
Org-mode document. Without --output the report is printed.

Example:
  tradejournal stats report --title "January review" --note "cut losers faster" -o jan.org`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				r := h.Report(cmd.Context(), title)
				if r.Success {
					r.Data.Notes = notes
				}
				return emit(a, cmd, r, func(p *printer, rep journal.Report) error {
					if output == "" {
						return rep.WriteOrg(p.w)
					}
					if err := writeReport(output, rep); err != nil {
						return err
					}
					fmt.Fprintf(p.w, "✓ Wrote report: %s\n", output)
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "Trading Journal Report", "Report title")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this file")
	cmd.Flags().StringArrayVar(&notes, "note", nil, "Observation to add to the report (repeatable)")
	return cmd
}

func writeReport(path string, rep journal.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := rep.WriteOrg(f); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
