// Package handlers exposes the journal to a UI process. Every call returns a
// Response envelope instead of an error.
package handlers

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/journal"
)

// Response is the envelope handed to the UI layer.
type Response[T any] struct {
	Success bool
	Data    T
	Message string
}

// MarshalJSON writes {success, data?, message?}. Data is only present on
// success, so empty lists still serialize as [].
func (r Response[T]) MarshalJSON() ([]byte, error) {
	type wire struct {
		Success bool   `json:"success"`
		Data    any    `json:"data,omitempty"`
		Message string `json:"message,omitempty"`
	}
	w := wire{Success: r.Success, Message: r.Message}
	if r.Success {
		w.Data = r.Data
	}
	return json.Marshal(w)
}

func ok[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

// Handlers wires the repositories and the stats engine behind envelopes.
type Handlers struct {
	trades  *journal.TradeRepo
	methods *journal.MethodRepo
	stats   *journal.StatsEngine
	log     *zap.Logger
}

func New(trades *journal.TradeRepo, methods *journal.MethodRepo, stats *journal.StatsEngine, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{trades: trades, methods: methods, stats: stats, log: log.Named("handlers")}
}

// NewFromStore builds the full set of repositories over one store.
func NewFromStore(store *journal.Store, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	maint := journal.NewMaintainer(store, log)
	return New(
		journal.NewTradeRepo(store, maint, log),
		journal.NewMethodRepo(store, log),
		journal.NewStatsEngine(store),
		log,
	)
}

func fail[T any](h *Handlers, op string, err error) Response[T] {
	h.log.Warn(op+" failed", zap.Error(err))
	return Response[T]{Success: false, Message: err.Error()}
}

// Trades

func (h *Handlers) ListTrades(ctx context.Context, f journal.TradeFilter) Response[[]journal.Trade] {
	list, err := h.trades.List(ctx, f)
	if err != nil {
		return fail[[]journal.Trade](h, "list trades", err)
	}
	return ok(list)
}

func (h *Handlers) GetTrade(ctx context.Context, id int64) Response[journal.Trade] {
	t, err := h.trades.Get(ctx, id)
	if err != nil {
		return fail[journal.Trade](h, "get trade", err)
	}
	return ok(t)
}

func (h *Handlers) CreateTrade(ctx context.Context, t journal.Trade) Response[journal.Trade] {
	created, err := h.trades.Create(ctx, t)
	if err != nil {
		return fail[journal.Trade](h, "create trade", err)
	}
	return ok(created)
}

func (h *Handlers) UpdateTrade(ctx context.Context, id int64, t journal.Trade) Response[journal.Trade] {
	updated, err := h.trades.Update(ctx, id, t)
	if err != nil {
		return fail[journal.Trade](h, "update trade", err)
	}
	return ok(updated)
}

func (h *Handlers) DeleteTrade(ctx context.Context, id int64) Response[any] {
	if err := h.trades.Delete(ctx, id); err != nil {
		return fail[any](h, "delete trade", err)
	}
	return Response[any]{Success: true, Message: "deleted"}
}

// Methods

func (h *Handlers) ListMethods(ctx context.Context) Response[[]journal.Method] {
	list, err := h.methods.List(ctx)
	if err != nil {
		return fail[[]journal.Method](h, "list methods", err)
	}
	return ok(list)
}

func (h *Handlers) GetMethod(ctx context.Context, id string) Response[journal.Method] {
	m, err := h.methods.Get(ctx, id)
	if err != nil {
		return fail[journal.Method](h, "get method", err)
	}
	return ok(m)
}

func (h *Handlers) CreateMethod(ctx context.Context, m journal.Method) Response[journal.Method] {
	created, err := h.methods.Create(ctx, m)
	if err != nil {
		return fail[journal.Method](h, "create method", err)
	}
	return ok(created)
}

func (h *Handlers) UpdateMethod(ctx context.Context, id string, p journal.MethodPatch) Response[journal.Method] {
	updated, err := h.methods.Update(ctx, id, p)
	if err != nil {
		return fail[journal.Method](h, "update method", err)
	}
	return ok(updated)
}

func (h *Handlers) DeleteMethod(ctx context.Context, id string) Response[any] {
	if err := h.methods.Delete(ctx, id); err != nil {
		return fail[any](h, "delete method", err)
	}
	return Response[any]{Success: true, Message: "deleted"}
}

func (h *Handlers) DefaultMethod(ctx context.Context) Response[journal.Method] {
	m, err := h.methods.Default(ctx)
	if err != nil {
		return fail[journal.Method](h, "get default method", err)
	}
	return ok(m)
}

func (h *Handlers) SetDefaultMethod(ctx context.Context, id string) Response[any] {
	if err := h.methods.SetDefault(ctx, id); err != nil {
		return fail[any](h, "set default method", err)
	}
	return Response[any]{Success: true, Message: "default method set"}
}

func (h *Handlers) CleanupMethods(ctx context.Context) Response[int64] {
	n, err := h.methods.CleanupInvalid(ctx)
	if err != nil {
		return fail[int64](h, "cleanup methods", err)
	}
	return ok(n)
}

// Stats

func (h *Handlers) OverallStats(ctx context.Context) Response[journal.Summary] {
	s, err := h.stats.Overall(ctx)
	if err != nil {
		return fail[journal.Summary](h, "overall stats", err)
	}
	return ok(s)
}

func (h *Handlers) MethodStats(ctx context.Context) Response[[]journal.MethodBreakdown] {
	s, err := h.stats.Methods(ctx)
	if err != nil {
		return fail[[]journal.MethodBreakdown](h, "method stats", err)
	}
	return ok(s)
}

func (h *Handlers) SymbolStats(ctx context.Context) Response[[]journal.SymbolBreakdown] {
	s, err := h.stats.Symbols(ctx)
	if err != nil {
		return fail[[]journal.SymbolBreakdown](h, "symbol stats", err)
	}
	return ok(s)
}

func (h *Handlers) TimePeriodStats(ctx context.Context, period string) Response[[]journal.PeriodBreakdown] {
	p, err := journal.ParsePeriod(period)
	if err != nil {
		return fail[[]journal.PeriodBreakdown](h, "time period stats", err)
	}
	s, err := h.stats.TimePeriods(ctx, p)
	if err != nil {
		return fail[[]journal.PeriodBreakdown](h, "time period stats", err)
	}
	return ok(s)
}

func (h *Handlers) ProfitCurve(ctx context.Context) Response[[]journal.CurvePoint] {
	c, err := h.stats.ProfitCurve(ctx)
	if err != nil {
		return fail[[]journal.CurvePoint](h, "profit curve", err)
	}
	return ok(c)
}

func (h *Handlers) Report(ctx context.Context, title string) Response[journal.Report] {
	r, err := h.stats.BuildReport(ctx, title)
	if err != nil {
		return fail[journal.Report](h, "build report", err)
	}
	return ok(r)
}
