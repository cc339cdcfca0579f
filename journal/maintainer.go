package journal

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Recomputer refreshes the derived stats of one method.
type Recomputer interface {
	Recompute(ctx context.Context, methodID string) error
}

// Maintainer keeps usage_count, win_rate and total_pnl on methods in sync
// with the trades table. Every call recomputes from the current trades, so
// calling it twice is harmless.
type Maintainer struct {
	store *Store
	log   *zap.Logger
}

func NewMaintainer(store *Store, log *zap.Logger) *Maintainer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Maintainer{store: store, log: log.Named("maintainer")}
}

// derivedStats are the derived columns written to a method row.
type derivedStats struct {
	UsageCount int
	WinRate    float64
	TotalPnL   float64
}

// Recompute rewrites the derived stats of methodID. An empty id is a no-op.
func (m *Maintainer) Recompute(ctx context.Context, methodID string) error {
	if methodID == "" {
		return nil
	}
	db, err := m.store.DB()
	if err != nil {
		return err
	}

	totals, err := methodTotals(ctx, db, methodID)
	if err != nil {
		return storageError("recompute method stats", err)
	}

	res, err := db.ExecContext(ctx, `
		UPDATE methods SET usage_count = ?, win_rate = ?, total_pnl = ?
		WHERE id = ?`,
		totals.UsageCount, totals.WinRate, totals.TotalPnL, methodID,
	)
	if err != nil {
		return storageError("recompute method stats", err)
	}
	if err := expectRows(res, notFoundErrorf("method %q", methodID)); err != nil {
		return storageError("recompute method stats", err)
	}

	m.log.Debug("method stats recomputed",
		zap.String("method_id", methodID),
		zap.Int("usage_count", totals.UsageCount),
		zap.Float64("win_rate", totals.WinRate),
		zap.Float64("total_pnl", totals.TotalPnL),
	)
	return nil
}

func methodTotals(ctx context.Context, db *sql.DB, methodID string) (derivedStats, error) {
	rows, err := db.QueryContext(ctx, `SELECT result, profit FROM trades WHERE methodId = ?`, methodID)
	if err != nil {
		return derivedStats{}, err
	}
	defer rows.Close()

	count, wins := 0, 0
	pnl := decimal.Zero
	for rows.Next() {
		var (
			result sql.NullString
			profit sql.NullFloat64
		)
		if err := rows.Scan(&result, &profit); err != nil {
			return derivedStats{}, err
		}
		count++
		if Result(result.String) == Win {
			wins++
		}
		if profit.Valid {
			pnl = pnl.Add(decimalOf(profit.Float64))
		}
	}
	if err := rows.Err(); err != nil {
		return derivedStats{}, err
	}

	return derivedStats{
		UsageCount: count,
		WinRate:    ratio(decimal.NewFromInt(int64(wins)), count),
		TotalPnL:   pnl.InexactFloat64(),
	}, nil
}
