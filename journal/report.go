package journal

import (
	"context"
	"io"
	"text/template"
	"time"
)

// Report is the data behind the Org-mode statistics report.
type Report struct {
	Created time.Time         `json:"created"`
	Title   string            `json:"title"`
	Summary Summary           `json:"summary"`
	Methods []MethodBreakdown `json:"methods"`
	Symbols []SymbolBreakdown `json:"symbols"`
	Curve   []CurvePoint      `json:"curve"`
	Notes   []string          `json:"notes,omitempty"`
}

// BuildReport snapshots every statistic the engine offers.
func (e *StatsEngine) BuildReport(ctx context.Context, title string) (Report, error) {
	r := Report{Created: time.Now(), Title: title}
	var err error
	if r.Summary, err = e.Overall(ctx); err != nil {
		return Report{}, err
	}
	if r.Methods, err = e.Methods(ctx); err != nil {
		return Report{}, err
	}
	if r.Symbols, err = e.Symbols(ctx); err != nil {
		return Report{}, err
	}
	if r.Curve, err = e.ProfitCurve(ctx); err != nil {
		return Report{}, err
	}
	return r, nil
}

var reportOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"last": func(c []CurvePoint) float64 {
		if len(c) == 0 {
			return 0
		}
		return c[len(c)-1].CumulativeProfit
	},
}

var reportOrg = template.Must(template.New("report").Funcs(reportOrgFuncs).Parse(ReportOrgTemplate))

// WriteOrg renders the report as Org-mode text.
func (r Report) WriteOrg(w io.Writer) error {
	return reportOrg.Execute(w, r)
}

const ReportOrgTemplate = `* REPORT: {{if .Title}}{{.Title}}{{else}}Trading journal{{end}}
:PROPERTIES:
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:TRADES:      {{.Summary.TotalTrades}}
:WINS:        {{.Summary.TotalWin}}
:LOSSES:      {{.Summary.TotalLoss}}
:BREAKEVEN:   {{.Summary.TotalBreakeven}}
:WIN_RATE:    {{printf "%.2f" .Summary.WinRate}}
:NET_PL:      {{printf "%.2f" .Summary.TotalProfit}}
:PROFIT_FAC:  {{printf "%.2f" .Summary.ProfitFactor}}
:END:

** Performance Summary
- Net P/L:          *{{printf "%.2f" .Summary.TotalProfit}}*
- Average P/L:      *{{printf "%.2f" .Summary.AverageProfit}}*
- Win Rate:         *{{printf "%.2f" (mul100 .Summary.WinRate)}}%*
- Profit Factor:    *{{printf "%.2f" .Summary.ProfitFactor}}*
- Best Trade:       *{{printf "%.2f" .Summary.MaxProfit}}*
- Worst Trade:      *{{printf "%.2f" .Summary.MaxLoss}}*
- Avg Win / Loss:   *{{printf "%.2f" .Summary.AvgWin}} / {{printf "%.2f" .Summary.AvgLoss}}*
- Avg Holding (h):  *{{printf "%.2f" .Summary.AverageHoldingTime}}*
- Expected P/L:     *{{printf "%.2f" .Summary.TotalExpectedProfit}}* (avg {{printf "%.2f" .Summary.AvgExpectedProfit}})
- Curve End:        *{{printf "%.2f" (last .Curve)}}*

** Trade Distribution
| Outcome   | Count |
|-----------+-------|
| Wins      | {{.Summary.TotalWin}} |
| Losses    | {{.Summary.TotalLoss}} |
| Breakeven | {{.Summary.TotalBreakeven}} |
| Total     | {{.Summary.TotalTrades}} |

{{- if .Methods }}

** Methods
| Method | Trades | Win Rate | P/L | Avg | PF |
|--------+--------+----------+-----+-----+----|
{{- range .Methods }}
| {{.MethodName}} | {{.TotalTrades}} | {{printf "%.2f" .WinRate}} | {{printf "%.2f" .TotalProfit}} | {{printf "%.2f" .AverageProfit}} | {{printf "%.2f" .ProfitFactor}} |
{{- end }}
{{- end }}

{{- if .Symbols }}

** Symbols
| Symbol | Trades | Win Rate | P/L | Avg | PF |
|--------+--------+----------+-----+-----+----|
{{- range .Symbols }}
| {{.Symbol}} | {{.TotalTrades}} | {{printf "%.2f" .WinRate}} | {{printf "%.2f" .TotalProfit}} | {{printf "%.2f" .AverageProfit}} | {{printf "%.2f" .ProfitFactor}} |
{{- end }}
{{- end }}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
