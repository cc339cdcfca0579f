package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rustyeddy/tradejournal/handlers"
	"github.com/rustyeddy/tradejournal/journal"
)

func newTradeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Log and edit trades",
		Long: `Create, list, show, update and delete journal trades.

Examples:
  tradejournal trade add --symbol EURUSD --direction long --entry-price 1.0850 --lots 1
  tradejournal trade list --symbol EURUSD --from 2024-01-01 --to 2024-01-31
  tradejournal trade update 3 --exit-price 1.0900 --profit 50 --result win
  tradejournal trade delete 3`,
	}

	cmd.AddCommand(
		newTradeAddCmd(a),
		newTradeListCmd(a),
		newTradeGetCmd(a),
		newTradeUpdateCmd(a),
		newTradeDeleteCmd(a),
	)
	return cmd
}

// tradeFlags binds every editable trade field. apply copies only the flags
// that were set on the command line.
type tradeFlags struct {
	symbol         string
	direction      string
	entryPrice     float64
	exitPrice      float64
	entryTime      string
	exitTime       string
	lots           float64
	profit         float64
	expectedProfit float64
	methodID       string
	methodName     string
	notes          string
	tags           []string
	result         string
}

func (f *tradeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.symbol, "symbol", "", "Instrument symbol, e.g. EURUSD")
	fs.StringVar(&f.direction, "direction", "", "long or short")
	fs.Float64Var(&f.entryPrice, "entry-price", 0, "Entry price")
	fs.Float64Var(&f.exitPrice, "exit-price", 0, "Exit price")
	fs.StringVar(&f.entryTime, "entry-time", "", "Entry timestamp (RFC3339 or YYYY-MM-DD HH:MM)")
	fs.StringVar(&f.exitTime, "exit-time", "", "Exit timestamp")
	fs.Float64Var(&f.lots, "lots", 0, "Position size in lots")
	fs.Float64Var(&f.profit, "profit", 0, "Realized profit (negative for a loss)")
	fs.Float64Var(&f.expectedProfit, "expected-profit", 0, "Planned profit")
	fs.StringVar(&f.methodID, "method", "", "Method id (defaults to the default method on add)")
	fs.StringVar(&f.methodName, "method-name", "", "Method name when no method id is given")
	fs.StringVar(&f.notes, "notes", "", "Free-form notes")
	fs.StringSliceVar(&f.tags, "tags", nil, "Comma separated tags")
	fs.StringVar(&f.result, "result", "", "win, loss or breakeven")
}

func (f *tradeFlags) apply(fs *pflag.FlagSet, t *journal.Trade) {
	set := func(name string) bool { return fs.Changed(name) }
	price := func(name string, v float64, dst **float64) {
		if set(name) {
			x := v
			*dst = &x
		}
	}

	if set("symbol") {
		t.Symbol = strings.ToUpper(strings.TrimSpace(f.symbol))
	}
	if set("direction") {
		t.Direction = journal.Direction(strings.ToLower(f.direction))
	}
	price("entry-price", f.entryPrice, &t.EntryPrice)
	price("exit-price", f.exitPrice, &t.ExitPrice)
	if set("entry-time") {
		t.EntryTime = f.entryTime
	}
	if set("exit-time") {
		t.ExitTime = f.exitTime
	}
	price("lots", f.lots, &t.Lots)
	price("profit", f.profit, &t.Profit)
	price("expected-profit", f.expectedProfit, &t.ExpectedProfit)
	if set("method") {
		t.MethodID = f.methodID
		t.MethodName = ""
	}
	if set("method-name") {
		t.MethodName = f.methodName
	}
	if set("notes") {
		t.Notes = f.notes
	}
	if set("tags") {
		t.Tags = f.tags
	}
	if set("result") {
		t.Result = journal.Result(strings.ToLower(f.result))
	}
}

func parseTradeID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid trade id %q", s)
	}
	return id, nil
}

func newTradeAddCmd(a *app) *cobra.Command {
	f := &tradeFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a new trade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withJournal(ctx, func(h *handlers.Handlers) error {
				t := journal.Trade{}
				f.apply(cmd.Flags(), &t)
				if t.MethodID == "" && t.MethodName == "" {
					if def := h.DefaultMethod(ctx); def.Success {
						t.MethodID = def.Data.ID
					}
				}
				return emit(a, cmd, h.CreateTrade(ctx, t), func(p *printer, t journal.Trade) error {
					fmt.Fprintf(p.w, "created trade #%d\n", t.ID)
					return printTrades(p, []journal.Trade{t})
				})
			})
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("direction")
	return cmd
}

func newTradeListCmd(a *app) *cobra.Command {
	var filter journal.TradeFilter
	var result string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades, most recently closed first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Result = journal.Result(strings.ToLower(result))
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.ListTrades(cmd.Context(), filter), printTrades)
			})
		},
	}
	cmd.Flags().StringVar(&filter.Symbol, "symbol", "", "Only this symbol")
	cmd.Flags().StringVar(&filter.MethodID, "method", "", "Only this method id")
	cmd.Flags().StringVar(&result, "result", "", "Only win, loss or breakeven")
	cmd.Flags().StringVar(&filter.StartDate, "from", "", "Entry time on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.EndDate, "to", "", "Entry time on or before (YYYY-MM-DD, whole day)")
	return cmd
}

func newTradeGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <trade-id>",
		Short: "Show one trade as an Org entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTradeID(args[0])
			if err != nil {
				return err
			}
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.GetTrade(cmd.Context(), id), func(p *printer, t journal.Trade) error {
					fmt.Fprint(p.w, journal.FormatTradeOrg(t))
					return nil
				})
			})
		},
	}
}

func newTradeUpdateCmd(a *app) *cobra.Command {
	f := &tradeFlags{}
	cmd := &cobra.Command{
		Use:   "update <trade-id>",
		Short: "Change fields of an existing trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTradeID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return a.withJournal(ctx, func(h *handlers.Handlers) error {
				cur := h.GetTrade(ctx, id)
				if !cur.Success {
					return emit(a, cmd, cur, nil)
				}
				t := cur.Data
				f.apply(cmd.Flags(), &t)
				return emit(a, cmd, h.UpdateTrade(ctx, id, t), func(p *printer, t journal.Trade) error {
					fmt.Fprintf(p.w, "updated trade #%d\n", t.ID)
					return printTrades(p, []journal.Trade{t})
				})
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newTradeDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTradeID(args[0])
			if err != nil {
				return err
			}
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.DeleteTrade(cmd.Context(), id), done(fmt.Sprintf("deleted trade #%d", id)))
			})
		},
	}
}
