package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/handlers"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pkg/id"
)

// printer renders tables for one writer. Colors are dropped automatically
// when the writer is not a terminal.
type printer struct {
	w      io.Writer
	header lipgloss.Style
	cell   lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	title  lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:      w,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		good:   r.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#10B981")),
		bad:    r.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#EF4444")),
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
	}
}

// table prints rows under headers. Cells in the pnlCol column are colored by
// sign; pass -1 to disable.
func (p *printer) table(headers []string, rows [][]string, pnlCol int) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			if col == pnlCol && row >= 0 && row < len(rows) {
				if v, err := strconv.ParseFloat(rows[row][col], 64); err == nil {
					switch {
					case v > 0:
						return p.good
					case v < 0:
						return p.bad
					}
				}
			}
			return p.cell
		})
	fmt.Fprintln(p.w, t.Render())
}

func (p *printer) heading(s string) {
	fmt.Fprintln(p.w, p.title.Render(s))
}

// emit writes r as JSON when --json is set, otherwise hands the data to text.
// A failed response becomes the command error.
func emit[T any](a *app, cmd *cobra.Command, r handlers.Response[T], text func(p *printer, v T) error) error {
	out := cmd.OutOrStdout()
	if a.rc.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return err
		}
	} else if r.Success && text != nil {
		if err := text(newPrinter(out), r.Data); err != nil {
			return err
		}
	}
	if !r.Success {
		return errors.New(r.Message)
	}
	return nil
}

// done prints a fixed confirmation for mutations without data.
func done(msg string) func(p *printer, v any) error {
	return func(p *printer, _ any) error {
		fmt.Fprintln(p.w, msg)
		return nil
	}
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func pct(v float64) string { return strconv.FormatFloat(v*100, 'f', 1, 64) + "%" }

func optMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return money(*v)
}

func optPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func tradeRows(trades []journal.Trade) [][]string {
	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Symbol,
			string(t.Direction),
			optPrice(t.EntryPrice),
			optPrice(t.ExitPrice),
			orDash(t.EntryTime),
			orDash(t.ExitTime),
			optPrice(t.Lots),
			optMoney(t.Profit),
			t.MethodName,
			orDash(string(t.Result)),
			strings.Join(t.Tags, ","),
		})
	}
	return rows
}

var tradeHeaders = []string{"ID", "Symbol", "Dir", "Entry", "Exit", "Entry Time", "Exit Time", "Lots", "P/L", "Method", "Result", "Tags"}

func printTrades(p *printer, trades []journal.Trade) error {
	if len(trades) == 0 {
		fmt.Fprintln(p.w, "no trades")
		return nil
	}
	p.table(tradeHeaders, tradeRows(trades), 8)
	return nil
}

func methodRows(methods []journal.Method) [][]string {
	rows := make([][]string, 0, len(methods))
	for _, m := range methods {
		def := ""
		if m.IsDefault {
			def = "*"
		}
		rows = append(rows, []string{
			def,
			m.ID,
			m.Code,
			m.Name,
			strconv.Itoa(m.UsageCount),
			pct(m.WinRate),
			money(m.TotalPnL),
			methodCreated(m.ID),
		})
	}
	return rows
}

// methodCreated is the UTC creation day of a generated method id, or "-" for
// ids supplied by the user.
func methodCreated(methodID string) string {
	t, ok := id.Time(methodID)
	if !ok {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func printMethods(p *printer, methods []journal.Method) error {
	if len(methods) == 0 {
		fmt.Fprintln(p.w, "no methods")
		return nil
	}
	p.table([]string{"", "ID", "Code", "Name", "Used", "Win Rate", "P/L", "Created"}, methodRows(methods), 6)
	return nil
}

func printMethod(p *printer, m journal.Method) error {
	return printMethods(p, []journal.Method{m})
}

func printSummary(p *printer, s journal.Summary) error {
	p.heading("Overall")
	p.table([]string{"Metric", "Value"}, [][]string{
		{"Trades", strconv.Itoa(s.TotalTrades)},
		{"Wins", strconv.Itoa(s.TotalWin)},
		{"Losses", strconv.Itoa(s.TotalLoss)},
		{"Breakeven", strconv.Itoa(s.TotalBreakeven)},
		{"Win rate", pct(s.WinRate)},
		{"Total P/L", money(s.TotalProfit)},
		{"Average P/L", money(s.AverageProfit)},
		{"Max profit", money(s.MaxProfit)},
		{"Max loss", money(s.MaxLoss)},
		{"Profit factor", money(s.ProfitFactor)},
		{"Avg holding (h)", money(s.AverageHoldingTime)},
		{"Expected P/L", money(s.TotalExpectedProfit)},
		{"Avg expected P/L", money(s.AvgExpectedProfit)},
		{"Avg win", money(s.AvgWin)},
		{"Avg loss", money(s.AvgLoss)},
	}, -1)
	return nil
}

func bucketCells(b journal.BucketStats) []string {
	return []string{
		strconv.Itoa(b.TotalTrades),
		strconv.Itoa(b.WinCount),
		pct(b.WinRate),
		money(b.TotalProfit),
		money(b.TotalExpectedProfit),
		money(b.AverageProfit),
		money(b.ProfitFactor),
	}
}

var bucketHeaders = []string{"Trades", "Wins", "Win Rate", "P/L", "Expected", "Avg", "PF"}

func printMethodStats(p *printer, list []journal.MethodBreakdown) error {
	rows := make([][]string, 0, len(list))
	for _, m := range list {
		rows = append(rows, append([]string{m.MethodName}, bucketCells(m.BucketStats)...))
	}
	p.table(append([]string{"Method"}, bucketHeaders...), rows, 4)
	return nil
}

func printSymbolStats(p *printer, list []journal.SymbolBreakdown) error {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, append([]string{s.Symbol}, bucketCells(s.BucketStats)...))
	}
	p.table(append([]string{"Symbol"}, bucketHeaders...), rows, 4)
	return nil
}

func printPeriods(p *printer, list []journal.PeriodBreakdown) error {
	rows := make([][]string, 0, len(list))
	for _, b := range list {
		rows = append(rows, []string{b.Period, strconv.Itoa(b.TotalTrades), pct(b.WinRate), money(b.TotalProfit)})
	}
	p.table([]string{"Period", "Trades", "Win Rate", "P/L"}, rows, 3)
	return nil
}

func printCurve(p *printer, curve []journal.CurvePoint) error {
	rows := make([][]string, 0, len(curve))
	for _, c := range curve {
		rows = append(rows, []string{
			strconv.FormatInt(c.TradeID, 10),
			c.Time,
			money(c.Profit),
			money(c.CumulativeProfit),
		})
	}
	p.table([]string{"Trade", "Time", "P/L", "Cumulative"}, rows, 3)
	return nil
}
