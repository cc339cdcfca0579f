package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
)

// CSVExporter writes trades and the profit curve to two CSV files.
type CSVExporter struct {
	trades *csv.Writer
	curve  *csv.Writer
	tf, cf *os.File
}

var (
	tradesCSVHeader = []string{"id", "symbol", "direction", "entry_price", "exit_price", "entry_time", "exit_time",
		"lots", "profit", "expected_profit", "method_id", "method_name", "result", "tags", "notes"}
	curveCSVHeader = []string{"trade_id", "time", "profit", "cumulative_profit"}
)

func NewCSV(tradesPath, curvePath string) (*CSVExporter, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	cf, err := os.Create(curvePath)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	cw := csv.NewWriter(cf)

	if err := tw.Write(tradesCSVHeader); err != nil {
		return nil, err
	}
	if err := cw.Write(curveCSVHeader); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}

	return &CSVExporter{tw, cw, tf, cf}, nil
}

func (x *CSVExporter) WriteTrade(t Trade) error {
	if err := x.trades.Write([]string{
		strconv.FormatInt(t.ID, 10),
		t.Symbol,
		string(t.Direction),
		fp(t.EntryPrice),
		fp(t.ExitPrice),
		t.EntryTime,
		t.ExitTime,
		fp(t.Lots),
		fp(t.Profit),
		fp(t.ExpectedProfit),
		t.MethodID,
		t.MethodName,
		string(t.Result),
		strings.Join(t.Tags, ";"),
		t.Notes,
	}); err != nil {
		return err
	}
	x.trades.Flush()
	return x.trades.Error()
}

func (x *CSVExporter) WriteCurvePoint(p CurvePoint) error {
	if err := x.curve.Write([]string{
		strconv.FormatInt(p.TradeID, 10),
		p.Time,
		f(p.Profit),
		f(p.CumulativeProfit),
	}); err != nil {
		return err
	}
	x.curve.Flush()
	return x.curve.Error()
}

func (x *CSVExporter) Close() error {
	x.trades.Flush()
	if err := x.trades.Error(); err != nil {
		return err
	}
	x.curve.Flush()
	if err := x.curve.Error(); err != nil {
		return err
	}

	if err := x.tf.Close(); err != nil {
		return err
	}
	if err := x.cf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

// fp formats an optional value; nil becomes an empty cell.
func fp(x *float64) string {
	if x == nil {
		return ""
	}
	return strconv.FormatFloat(*x, 'f', -1, 64)
}
