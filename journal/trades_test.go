package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTradeRoundTrip(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	m, err := fx.methods.Create(ctx, Method{Code: "BO", Name: "Breakout"})
	require.NoError(t, err)

	in := Trade{
		Symbol:         "EURUSD",
		Direction:      Long,
		EntryPrice:     ptr(1.085),
		ExitPrice:      ptr(1.0875),
		EntryTime:      "2024-03-15T10:30:00",
		ExitTime:       "2024-03-15T14:30:00",
		Lots:           ptr(0.5),
		Profit:         ptr(125),
		ExpectedProfit: ptr(150),
		MethodID:       m.ID,
		Notes:          "clean break",
		Tags:           []string{"breakout", "news"},
		Result:         Win,
	}
	created, err := fx.trades.Create(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Breakout", created.MethodName)

	got, err := fx.trades.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, []string{"breakout", "news"}, got.Tags)

	list, err := fx.trades.List(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"breakout", "news"}, list[0].Tags)
}

func TestCreateTradeDefaults(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.trades.Create(ctx, Trade{Symbol: "BTCUSD", Direction: Short, MethodName: "manual"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, created.Tags)

	got, err := fx.trades.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Tags)
	assert.Nil(t, got.Profit)
	assert.Nil(t, got.ExpectedProfit)
	assert.Empty(t, got.Result)
	assert.Empty(t, got.MethodID)
	assert.Empty(t, fx.rec.reset(), "no method, no recompute")
}

func TestCreateTradeStoresZeroProfit(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	created, err := fx.trades.Create(context.Background(),
		Trade{Symbol: "EURUSD", Direction: Long, MethodName: "m", Profit: ptr(0), Result: Breakeven})
	require.NoError(t, err)

	got, err := fx.trades.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profit)
	assert.Zero(t, *got.Profit)
}

func TestCreateTradeKeepsGivenMethodName(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	m, err := fx.methods.Create(ctx, Method{Code: "BO", Name: "Breakout"})
	require.NoError(t, err)

	created, err := fx.trades.Create(ctx, Trade{Symbol: "EURUSD", Direction: Long, MethodID: m.ID, MethodName: "Custom"})
	require.NoError(t, err)
	assert.Equal(t, "Custom", created.MethodName)

	renamed := "Renamed"
	_, err = fx.methods.Update(ctx, m.ID, MethodPatch{Name: &renamed})
	require.NoError(t, err)

	resolved, err := fx.trades.Create(ctx, Trade{Symbol: "EURUSD", Direction: Long, MethodID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", resolved.MethodName)

	got, err := fx.trades.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Custom", got.MethodName, "methodName is frozen at write time")
}

func TestCreateTradeValidation(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		trade  Trade
		errMsg string
	}{
		{"missing symbol", Trade{Direction: Long, MethodName: "m"}, "symbol is required"},
		{"bad direction", Trade{Symbol: "X", Direction: "up", MethodName: "m"}, "direction"},
		{"bad result", Trade{Symbol: "X", Direction: Long, MethodName: "m", Result: "draw"}, "result"},
		{"missing method name", Trade{Symbol: "X", Direction: Long}, "methodName is required"},
		{"unknown method", Trade{Symbol: "X", Direction: Long, MethodID: "ghost"}, "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.trades.Create(ctx, tt.trade)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestListTradesFilters(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	m, err := fx.methods.Create(ctx, Method{ID: "bo", Code: "BO", Name: "Breakout"})
	require.NoError(t, err)

	seed := []Trade{
		{Symbol: "EURUSD", Direction: Long, MethodID: m.ID, Result: Win, EntryTime: "2024-01-01T09:00:00", ExitTime: "2024-01-01T12:00:00"},
		{Symbol: "EURUSD", Direction: Short, MethodName: "manual", Result: Loss, EntryTime: "2024-01-15T09:00:00", ExitTime: "2024-01-16T12:00:00"},
		{Symbol: "GBPUSD", Direction: Long, MethodID: m.ID, Result: Loss, EntryTime: "2024-01-31T22:00:00", ExitTime: "2024-02-01T01:00:00"},
		{Symbol: "GBPUSD", Direction: Long, MethodName: "manual", EntryTime: "2024-02-02T09:00:00"},
	}
	ids := make([]int64, len(seed))
	for i, tr := range seed {
		created, err := fx.trades.Create(ctx, tr)
		require.NoError(t, err)
		ids[i] = created.ID
	}

	tests := []struct {
		name   string
		filter TradeFilter
		want   []int64
	}{
		{"all, latest exit first, open trades last", TradeFilter{}, []int64{ids[2], ids[1], ids[0], ids[3]}},
		{"symbol", TradeFilter{Symbol: "EURUSD"}, []int64{ids[1], ids[0]}},
		{"method", TradeFilter{MethodID: "bo"}, []int64{ids[2], ids[0]}},
		{"result", TradeFilter{Result: Loss}, []int64{ids[2], ids[1]}},
		{"start date inclusive", TradeFilter{StartDate: "2024-01-15"}, []int64{ids[2], ids[1], ids[3]}},
		{"end date covers whole day", TradeFilter{EndDate: "2024-01-31"}, []int64{ids[2], ids[1], ids[0]}},
		{"end timestamp", TradeFilter{EndDate: "2024-01-15T09:00:00"}, []int64{ids[1], ids[0]}},
		{"conjunction", TradeFilter{Symbol: "GBPUSD", Result: Loss, StartDate: "2024-01-01"}, []int64{ids[2]}},
		{"no match", TradeFilter{Symbol: "USDJPY"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := fx.trades.List(ctx, tt.filter)
			require.NoError(t, err)
			got := []int64{}
			for _, tr := range list {
				got = append(got, tr.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateTrade(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.trades.Create(ctx, Trade{Symbol: "EURUSD", Direction: Long, MethodName: "manual", Tags: []string{"a"}})
	require.NoError(t, err)

	upd := created
	upd.Profit = ptr(-20)
	upd.Result = Loss
	upd.Tags = []string{"b", "a"}
	got, err := fx.trades.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	stored, err := fx.trades.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, Loss, stored.Result)
	assert.Equal(t, []string{"b", "a"}, stored.Tags)
	require.NotNil(t, stored.Profit)
	assert.InDelta(t, -20.0, *stored.Profit, 1e-9)

	_, err = fx.trades.Update(ctx, 9999, upd)
	assert.ErrorIs(t, err, ErrNotFound)

	upd.Symbol = ""
	_, err = fx.trades.Update(ctx, created.ID, upd)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteTrade(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.trades.Create(ctx, Trade{Symbol: "EURUSD", Direction: Long, MethodName: "manual"})
	require.NoError(t, err)

	require.NoError(t, fx.trades.Delete(ctx, created.ID))
	_, err = fx.trades.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fx.trades.Delete(ctx, created.ID), ErrNotFound)
}

func TestTradeMutationsRecomputeMethods(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	a, err := fx.methods.Create(ctx, Method{ID: "a", Code: "A", Name: "Alpha"})
	require.NoError(t, err)
	b, err := fx.methods.Create(ctx, Method{ID: "b", Code: "B", Name: "Beta"})
	require.NoError(t, err)

	tr, err := fx.trades.Create(ctx, Trade{Symbol: "EURUSD", Direction: Long, MethodID: a.ID, Profit: ptr(10), Result: Win})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, fx.rec.reset())

	_, err = fx.trades.Create(ctx, Trade{Symbol: "EURUSD", Direction: Long, MethodID: b.ID, Profit: ptr(-4), Result: Loss})
	require.NoError(t, err)
	fx.rec.reset()

	beforeA, err := fx.methods.Get(ctx, "a")
	require.NoError(t, err)
	beforeB, err := fx.methods.Get(ctx, "b")
	require.NoError(t, err)

	moved := tr
	moved.MethodID = b.ID
	moved.MethodName = ""
	got, err := fx.trades.Update(ctx, tr.ID, moved)
	require.NoError(t, err)
	assert.Equal(t, "Beta", got.MethodName)
	assert.Equal(t, []string{"a", "b"}, fx.rec.reset(), "one recompute per side")

	afterA, err := fx.methods.Get(ctx, "a")
	require.NoError(t, err)
	afterB, err := fx.methods.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, beforeA.UsageCount-1, afterA.UsageCount)
	assert.Equal(t, beforeB.UsageCount+1, afterB.UsageCount)

	same := got
	same.Notes = "edited"
	_, err = fx.trades.Update(ctx, tr.ID, same)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, fx.rec.reset(), "unchanged method recomputed once")

	detached := got
	detached.MethodID = ""
	_, err = fx.trades.Update(ctx, tr.ID, detached)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, fx.rec.reset())

	require.NoError(t, fx.trades.Delete(ctx, tr.ID))
	assert.Empty(t, fx.rec.reset(), "trade had no method")
}

func TestDeleteTradeRecomputesMethod(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.methods.Create(ctx, Method{ID: "a", Code: "A", Name: "Alpha"})
	require.NoError(t, err)
	tr, err := fx.trades.Create(ctx, Trade{Symbol: "EURUSD", Direction: Long, MethodID: "a", Profit: ptr(10), Result: Win})
	require.NoError(t, err)
	fx.rec.reset()

	require.NoError(t, fx.trades.Delete(ctx, tr.ID))
	assert.Equal(t, []string{"a"}, fx.rec.reset())

	m, err := fx.methods.Get(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, m.UsageCount)
	assert.Zero(t, m.WinRate)
	assert.Zero(t, m.TotalPnL)
}

func TestRecomputeFailureDoesNotFailMutation(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := NewMethodRepo(s, nil).Create(ctx, Method{ID: "a", Code: "A", Name: "Alpha"})
	require.NoError(t, err)

	rec := &recordingRecomputer{err: errors.New("boom")}
	trades := NewTradeRepo(s, rec, nil)

	tr, err := trades.Create(ctx, Trade{Symbol: "EURUSD", Direction: Long, MethodID: "a"})
	require.NoError(t, err)
	_, err = trades.Update(ctx, tr.ID, tr)
	require.NoError(t, err)
	require.NoError(t, trades.Delete(ctx, tr.ID))
	assert.Equal(t, []string{"a", "a", "a"}, rec.reset())
}

func TestDecodeTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"", []string{}, false},
		{"[]", []string{}, false},
		{"null", []string{}, false},
		{`["x","y"]`, []string{"x", "y"}, false},
		{"not json", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := decodeTags(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
