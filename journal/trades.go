package journal

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

const tradeColumns = `id, symbol, direction, entryPrice, exitPrice, entryTime, exitTime,
	lots, profit, expectedProfit, methodId, methodName, notes, tags, result`

// TradeRepo reads and writes the trades table. Every successful mutation
// that touches a method id asks stats to recompute that method.
type TradeRepo struct {
	store *Store
	stats Recomputer
	log   *zap.Logger
}

func NewTradeRepo(store *Store, stats Recomputer, log *zap.Logger) *TradeRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &TradeRepo{store: store, stats: stats, log: log.Named("trades")}
}

func scanTrade(s rowScanner) (Trade, error) {
	var r tradeRow
	if err := s.Scan(
		&r.ID,
		&r.Symbol,
		&r.Direction,
		&r.EntryPrice,
		&r.ExitPrice,
		&r.EntryTime,
		&r.ExitTime,
		&r.Lots,
		&r.Profit,
		&r.ExpectedProfit,
		&r.MethodID,
		&r.MethodName,
		&r.Notes,
		&r.Tags,
		&r.Result,
	); err != nil {
		return Trade{}, err
	}
	return r.trade()
}

// Get returns a single trade by id.
func (r *TradeRepo) Get(ctx context.Context, tradeID int64) (Trade, error) {
	db, err := r.store.DB()
	if err != nil {
		return Trade{}, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, tradeID)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Trade{}, notFoundErrorf("trade %d", tradeID)
	}
	if err != nil {
		return Trade{}, storageError("get trade", err)
	}
	return t, nil
}

// List returns the trades matching f, latest exit first. Trades without an
// exit time sort last.
func (r *TradeRepo) List(ctx context.Context, f TradeFilter) ([]Trade, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + tradeColumns + ` FROM trades WHERE 1=1`
	var args []any
	if f.Symbol != "" {
		query += ` AND symbol = ?`
		args = append(args, f.Symbol)
	}
	if f.MethodID != "" {
		query += ` AND methodId = ?`
		args = append(args, f.MethodID)
	}
	if f.Result != "" {
		query += ` AND result = ?`
		args = append(args, string(f.Result))
	}
	if f.StartDate != "" {
		query += ` AND entryTime >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		if next, ok := nextDay(f.EndDate); ok {
			query += ` AND entryTime < ?`
			args = append(args, next)
		} else {
			query += ` AND entryTime <= ?`
			args = append(args, f.EndDate)
		}
	}
	query += ` ORDER BY exitTime IS NULL, exitTime DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("list trades", err)
	}
	defer rows.Close()

	out := []Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, storageError("list trades", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list trades", err)
	}
	return out, nil
}

// nextDay returns the day after a YYYY-MM-DD date.
func nextDay(day string) (string, bool) {
	if len(day) != len(dateLayout) {
		return "", false
	}
	t, err := time.Parse(dateLayout, day)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, 1).Format(dateLayout), true
}

// Create inserts t and returns it with its assigned id. Profit and
// ExpectedProfit are stored exactly as entered.
func (r *TradeRepo) Create(ctx context.Context, t Trade) (Trade, error) {
	if err := r.prepare(ctx, &t); err != nil {
		return Trade{}, err
	}
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return Trade{}, validationErrorf("tags: %v", err)
	}
	db, err := r.store.DB()
	if err != nil {
		return Trade{}, err
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO trades
		(symbol, direction, entryPrice, exitPrice, entryTime, exitTime, lots,
		 profit, expectedProfit, methodId, methodName, notes, tags, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Symbol, string(t.Direction), nullFloat(t.EntryPrice), nullFloat(t.ExitPrice),
		nullString(t.EntryTime), nullString(t.ExitTime), nullFloat(t.Lots),
		nullFloat(t.Profit), nullFloat(t.ExpectedProfit), nullString(t.MethodID),
		t.MethodName, nullString(t.Notes), tags, nullString(string(t.Result)),
	)
	if err != nil {
		return Trade{}, storageError("create trade", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return Trade{}, storageError("create trade", err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	r.log.Info("trade created", zap.Int64("id", t.ID), zap.String("symbol", t.Symbol))
	r.recompute(ctx, t.MethodID)
	return t, nil
}

// Update replaces every field of trade tradeID with t.
func (r *TradeRepo) Update(ctx context.Context, tradeID int64, t Trade) (Trade, error) {
	if err := r.prepare(ctx, &t); err != nil {
		return Trade{}, err
	}
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return Trade{}, validationErrorf("tags: %v", err)
	}
	db, err := r.store.DB()
	if err != nil {
		return Trade{}, err
	}

	oldMethodID, err := r.methodOf(ctx, db, tradeID)
	if err != nil {
		return Trade{}, err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE trades SET symbol = ?, direction = ?, entryPrice = ?, exitPrice = ?,
			entryTime = ?, exitTime = ?, lots = ?, profit = ?, expectedProfit = ?,
			methodId = ?, methodName = ?, notes = ?, tags = ?, result = ?
		WHERE id = ?`,
		t.Symbol, string(t.Direction), nullFloat(t.EntryPrice), nullFloat(t.ExitPrice),
		nullString(t.EntryTime), nullString(t.ExitTime), nullFloat(t.Lots),
		nullFloat(t.Profit), nullFloat(t.ExpectedProfit), nullString(t.MethodID),
		t.MethodName, nullString(t.Notes), tags, nullString(string(t.Result)),
		tradeID,
	)
	if err != nil {
		return Trade{}, storageError("update trade", err)
	}
	if err := expectRows(res, notFoundErrorf("trade %d", tradeID)); err != nil {
		return Trade{}, storageError("update trade", err)
	}
	t.ID = tradeID
	if t.Tags == nil {
		t.Tags = []string{}
	}

	r.log.Info("trade updated", zap.Int64("id", tradeID))
	if oldMethodID != t.MethodID {
		r.recompute(ctx, oldMethodID)
	}
	r.recompute(ctx, t.MethodID)
	return t, nil
}

// Delete removes trade tradeID and refreshes its method's stats.
func (r *TradeRepo) Delete(ctx context.Context, tradeID int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}

	methodID, err := r.methodOf(ctx, db, tradeID)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, tradeID)
	if err != nil {
		return storageError("delete trade", err)
	}
	if err := expectRows(res, notFoundErrorf("trade %d", tradeID)); err != nil {
		return storageError("delete trade", err)
	}

	r.log.Info("trade deleted", zap.Int64("id", tradeID))
	r.recompute(ctx, methodID)
	return nil
}

// methodOf returns the current methodId of a trade ("" when NULL).
func (r *TradeRepo) methodOf(ctx context.Context, db *sql.DB, tradeID int64) (string, error) {
	var methodID sql.NullString
	err := db.QueryRowContext(ctx, `SELECT methodId FROM trades WHERE id = ?`, tradeID).Scan(&methodID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFoundErrorf("trade %d", tradeID)
	}
	if err != nil {
		return "", storageError("read trade method", err)
	}
	return methodID.String, nil
}

// prepare validates t and fills MethodName from the referenced method when
// it is missing. The name is frozen on the trade from then on.
func (r *TradeRepo) prepare(ctx context.Context, t *Trade) error {
	t.Symbol = strings.TrimSpace(t.Symbol)
	if t.Symbol == "" {
		return validationErrorf("symbol is required")
	}
	if t.Direction != Long && t.Direction != Short {
		return validationErrorf("direction must be %q or %q, got %q", Long, Short, t.Direction)
	}
	if !t.Result.valid() {
		return validationErrorf("result must be win, loss or breakeven, got %q", t.Result)
	}

	if t.MethodID != "" {
		db, err := r.store.DB()
		if err != nil {
			return err
		}
		var name string
		err = db.QueryRowContext(ctx, `SELECT name FROM methods WHERE id = ?`, t.MethodID).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return validationErrorf("method %q does not exist", t.MethodID)
		}
		if err != nil {
			return storageError("resolve method name", err)
		}
		if t.MethodName == "" {
			t.MethodName = name
		}
	}
	if t.MethodName == "" {
		return validationErrorf("methodName is required")
	}
	return nil
}

// recompute refreshes a method's stats. Failures are logged and never
// change the outcome of the trade mutation that triggered them.
func (r *TradeRepo) recompute(ctx context.Context, methodID string) {
	if methodID == "" || r.stats == nil {
		return
	}
	if err := r.stats.Recompute(ctx, methodID); err != nil {
		r.log.Error("recompute method stats failed",
			zap.String("method_id", methodID), zap.Error(err))
	}
}
