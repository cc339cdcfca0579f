package journal

import (
	"context"
	"database/sql"
	"sort"

	"github.com/shopspring/decimal"
)

// Summary is the overall statistics over every trade. AverageHoldingTime
// is in hours.
type Summary struct {
	TotalTrades         int     `json:"totalTrades"`
	TotalWin            int     `json:"totalWin"`
	TotalLoss           int     `json:"totalLoss"`
	TotalBreakeven      int     `json:"totalBreakeven"`
	WinRate             float64 `json:"winRate"`
	TotalProfit         float64 `json:"totalProfit"`
	AverageProfit       float64 `json:"averageProfit"`
	MaxProfit           float64 `json:"maxProfit"`
	MaxLoss             float64 `json:"maxLoss"`
	ProfitFactor        float64 `json:"profitFactor"`
	AverageHoldingTime  float64 `json:"averageHoldingTime"`
	TotalExpectedProfit float64 `json:"totalExpectedProfit"`
	AvgExpectedProfit   float64 `json:"avgExpectedProfit"`
	AvgWin              float64 `json:"avgWin"`
	AvgLoss             float64 `json:"avgLoss"`
}

// BucketStats is the shared shape of the per-method and per-symbol rollups.
type BucketStats struct {
	TotalTrades         int     `json:"totalTrades"`
	WinCount            int     `json:"winCount"`
	WinRate             float64 `json:"winRate"`
	TotalProfit         float64 `json:"totalProfit"`
	TotalExpectedProfit float64 `json:"totalExpectedProfit"`
	AverageProfit       float64 `json:"averageProfit"`
	ProfitFactor        float64 `json:"profitFactor"`
}

type MethodBreakdown struct {
	MethodID   string `json:"methodId"`
	MethodName string `json:"methodName"`
	BucketStats
}

type SymbolBreakdown struct {
	Symbol string `json:"symbol"`
	BucketStats
}

type PeriodBreakdown struct {
	Period      string  `json:"period"`
	TotalTrades int     `json:"totalTrades"`
	WinRate     float64 `json:"winRate"`
	TotalProfit float64 `json:"totalProfit"`
}

// CurvePoint is one step of the cumulative profit curve.
type CurvePoint struct {
	TradeID          int64   `json:"tradeId"`
	Time             string  `json:"time"`
	Profit           float64 `json:"profit"`
	CumulativeProfit float64 `json:"cumulativeProfit"`
}

// StatsEngine computes read-only aggregates over the current trades. Nothing
// is cached; every call reads the store.
type StatsEngine struct {
	store *Store
}

func NewStatsEngine(store *Store) *StatsEngine {
	return &StatsEngine{store: store}
}

// statRow is the projection of trades the engine aggregates over.
type statRow struct {
	ID             int64
	Symbol         string
	MethodID       sql.NullString
	EntryTime      sql.NullString
	ExitTime       sql.NullString
	Profit         sql.NullFloat64
	ExpectedProfit sql.NullFloat64
	Result         sql.NullString
}

func (r statRow) profit() decimal.Decimal {
	if !r.Profit.Valid {
		return decimal.Zero
	}
	return decimalOf(r.Profit.Float64)
}

func (e *StatsEngine) rows(ctx context.Context, orderBy string) ([]statRow, error) {
	db, err := e.store.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, symbol, methodId, entryTime, exitTime, profit, expectedProfit, result
		FROM trades ORDER BY `+orderBy)
	if err != nil {
		return nil, storageError("read trades", err)
	}
	defer rows.Close()

	var out []statRow
	for rows.Next() {
		var r statRow
		if err := rows.Scan(&r.ID, &r.Symbol, &r.MethodID, &r.EntryTime, &r.ExitTime,
			&r.Profit, &r.ExpectedProfit, &r.Result); err != nil {
			return nil, storageError("read trades", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("read trades", err)
	}
	return out, nil
}

// bucket accumulates the sums behind BucketStats.
type bucket struct {
	trades     int
	wins       int
	profit     decimal.Decimal
	expected   decimal.Decimal
	winAmount  decimal.Decimal
	lossAmount decimal.Decimal
}

func (b *bucket) add(r statRow) {
	b.trades++
	p := r.profit()
	b.profit = b.profit.Add(p)
	if r.ExpectedProfit.Valid {
		b.expected = b.expected.Add(decimalOf(r.ExpectedProfit.Float64))
	}
	switch Result(r.Result.String) {
	case Win:
		b.wins++
		b.winAmount = b.winAmount.Add(p)
	case Loss:
		b.lossAmount = b.lossAmount.Add(p.Abs())
	}
}

func (b *bucket) stats() BucketStats {
	return BucketStats{
		TotalTrades:         b.trades,
		WinCount:            b.wins,
		WinRate:             ratio(decimal.NewFromInt(int64(b.wins)), b.trades),
		TotalProfit:         b.profit.InexactFloat64(),
		TotalExpectedProfit: b.expected.InexactFloat64(),
		AverageProfit:       ratio(b.profit, b.trades),
		ProfitFactor:        profitFactor(b.winAmount, b.lossAmount),
	}
}

// Overall summarizes every trade. With no trades every field is zero.
func (e *StatsEngine) Overall(ctx context.Context) (Summary, error) {
	rows, err := e.rows(ctx, "id")
	if err != nil {
		return Summary{}, err
	}
	if len(rows) == 0 {
		return Summary{}, nil
	}

	var (
		s                       Summary
		all                     bucket
		maxProfit, maxLoss      decimal.Decimal
		holding                 decimal.Decimal
		holdingN                int
		expectedN               int
		winProfit, lossProfit   decimal.Decimal
		winProfitN, lossProfitN int
	)
	for _, r := range rows {
		all.add(r)
		switch Result(r.Result.String) {
		case Win:
			s.TotalWin++
		case Loss:
			s.TotalLoss++
		case Breakeven:
			s.TotalBreakeven++
		}

		if r.Profit.Valid {
			p := decimalOf(r.Profit.Float64)
			if p.IsPositive() && p.GreaterThan(maxProfit) {
				maxProfit = p
			}
			if p.IsNegative() && p.LessThan(maxLoss) {
				maxLoss = p
			}
			switch Result(r.Result.String) {
			case Win:
				winProfit = winProfit.Add(p)
				winProfitN++
			case Loss:
				lossProfit = lossProfit.Add(p.Abs())
				lossProfitN++
			}
		}
		if r.ExpectedProfit.Valid {
			expectedN++
		}

		entry, okEntry := parseTimestamp(r.EntryTime.String)
		exit, okExit := parseTimestamp(r.ExitTime.String)
		if okEntry && okExit {
			holding = holding.Add(decimalOf(exit.Sub(entry).Hours()))
			holdingN++
		}
	}

	b := all.stats()
	s.TotalTrades = b.TotalTrades
	s.WinRate = b.WinRate
	s.TotalProfit = b.TotalProfit
	s.AverageProfit = b.AverageProfit
	s.MaxProfit = maxProfit.InexactFloat64()
	s.MaxLoss = maxLoss.InexactFloat64()
	s.ProfitFactor = b.ProfitFactor
	s.AverageHoldingTime = ratio(holding, holdingN)
	s.TotalExpectedProfit = b.TotalExpectedProfit
	s.AvgExpectedProfit = ratio(all.expected, expectedN)
	s.AvgWin = ratio(winProfit, winProfitN)
	s.AvgLoss = ratio(lossProfit, lossProfitN)
	return s, nil
}

// Methods returns one breakdown per method, including methods with no
// trades, most traded first.
func (e *StatsEngine) Methods(ctx context.Context) ([]MethodBreakdown, error) {
	db, err := e.store.DB()
	if err != nil {
		return nil, err
	}

	mrows, err := db.QueryContext(ctx, `
		SELECT id, name FROM methods
		WHERE id IS NOT NULL AND id != ''
		ORDER BY rowid`)
	if err != nil {
		return nil, storageError("read methods", err)
	}
	var out []MethodBreakdown
	for mrows.Next() {
		var mb MethodBreakdown
		if err := mrows.Scan(&mb.MethodID, &mb.MethodName); err != nil {
			mrows.Close()
			return nil, storageError("read methods", err)
		}
		out = append(out, mb)
	}
	if err := mrows.Err(); err != nil {
		mrows.Close()
		return nil, storageError("read methods", err)
	}
	mrows.Close()

	rows, err := e.rows(ctx, "id")
	if err != nil {
		return nil, err
	}
	buckets := make(map[string]*bucket, len(out))
	for _, r := range rows {
		if !r.MethodID.Valid {
			continue
		}
		b, ok := buckets[r.MethodID.String]
		if !ok {
			b = &bucket{}
			buckets[r.MethodID.String] = b
		}
		b.add(r)
	}

	for i := range out {
		b, ok := buckets[out[i].MethodID]
		if !ok {
			b = &bucket{}
		}
		out[i].BucketStats = b.stats()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalTrades > out[j].TotalTrades
	})
	if out == nil {
		out = []MethodBreakdown{}
	}
	return out, nil
}

// Symbols returns one breakdown per traded symbol, most traded first.
func (e *StatsEngine) Symbols(ctx context.Context) ([]SymbolBreakdown, error) {
	rows, err := e.rows(ctx, "id")
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*bucket)
	for _, r := range rows {
		b, ok := buckets[r.Symbol]
		if !ok {
			b = &bucket{}
			buckets[r.Symbol] = b
		}
		b.add(r)
	}

	out := make([]SymbolBreakdown, 0, len(buckets))
	for sym, b := range buckets {
		out = append(out, SymbolBreakdown{Symbol: sym, BucketStats: b.stats()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTrades != out[j].TotalTrades {
			return out[i].TotalTrades > out[j].TotalTrades
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}

// TimePeriods buckets trades by entry time, oldest bucket first. Trades
// without a parseable entry time are left out.
func (e *StatsEngine) TimePeriods(ctx context.Context, p Period) ([]PeriodBreakdown, error) {
	if _, err := ParsePeriod(string(p)); err != nil {
		return nil, err
	}
	rows, err := e.rows(ctx, "id")
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*bucket)
	for _, r := range rows {
		t, ok := parseTimestamp(r.EntryTime.String)
		if !ok {
			continue
		}
		k := p.key(t)
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		b.add(r)
	}

	out := make([]PeriodBreakdown, 0, len(buckets))
	for k, b := range buckets {
		bs := b.stats()
		out = append(out, PeriodBreakdown{
			Period:      k,
			TotalTrades: bs.TotalTrades,
			WinRate:     bs.WinRate,
			TotalProfit: bs.TotalProfit,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

// ProfitCurve returns the running total of profit in exit-time order. Each
// point is rounded on its own; the running sum keeps full precision.
func (e *StatsEngine) ProfitCurve(ctx context.Context) ([]CurvePoint, error) {
	rows, err := e.rows(ctx, "exitTime ASC, id ASC")
	if err != nil {
		return nil, err
	}

	out := make([]CurvePoint, 0, len(rows))
	sum := decimal.Zero
	for _, r := range rows {
		p := r.profit()
		sum = sum.Add(p)
		out = append(out, CurvePoint{
			TradeID:          r.ID,
			Time:             r.ExitTime.String,
			Profit:           p.InexactFloat64(),
			CumulativeProfit: round2(sum),
		})
	}
	return out, nil
}
