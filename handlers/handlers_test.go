package handlers

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
)

func newHandlers(t *testing.T) *Handlers {
	t.Helper()

	store, err := journal.Open(filepath.Join(t.TempDir(), "h.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewFromStore(store, nil)
}

func ptr(f float64) *float64 { return &f }

func TestResponseJSON(t *testing.T) {
	t.Run("success with empty list", func(t *testing.T) {
		b, err := json.Marshal(ok([]journal.Trade{}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"data":[]}`, string(b))
	})

	t.Run("failure drops data", func(t *testing.T) {
		r := Response[journal.Method]{Success: false, Message: "boom"}
		b, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":false,"message":"boom"}`, string(b))
	})

	t.Run("success without data", func(t *testing.T) {
		b, err := json.Marshal(Response[any]{Success: true, Message: "deleted"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"message":"deleted"}`, string(b))
	})
}

func TestMethodFlow(t *testing.T) {
	h := newHandlers(t)
	ctx := context.Background()

	created := h.CreateMethod(ctx, journal.Method{Code: "BO", Name: "Breakout", IsDefault: true})
	require.True(t, created.Success, created.Message)
	assert.NotEmpty(t, created.Data.ID)

	list := h.ListMethods(ctx)
	require.True(t, list.Success)
	assert.Len(t, list.Data, 1)

	def := h.DefaultMethod(ctx)
	require.True(t, def.Success)
	assert.Equal(t, created.Data.ID, def.Data.ID)

	name := "Range Breakout"
	upd := h.UpdateMethod(ctx, created.Data.ID, journal.MethodPatch{Name: &name})
	require.True(t, upd.Success, upd.Message)
	assert.Equal(t, "Range Breakout", upd.Data.Name)

	missing := h.SetDefaultMethod(ctx, "method_missing")
	assert.False(t, missing.Success)
	assert.NotEmpty(t, missing.Message)

	del := h.DeleteMethod(ctx, created.Data.ID)
	assert.True(t, del.Success)

	got := h.GetMethod(ctx, created.Data.ID)
	assert.False(t, got.Success)
}

func TestTradeFlowUpdatesStats(t *testing.T) {
	h := newHandlers(t)
	ctx := context.Background()

	m := h.CreateMethod(ctx, journal.Method{Code: "PB", Name: "Pullback"})
	require.True(t, m.Success, m.Message)

	tr := h.CreateTrade(ctx, journal.Trade{
		Symbol:     "EURUSD",
		Direction:  journal.Long,
		EntryPrice: ptr(1.1),
		ExitPrice:  ptr(1.2),
		EntryTime:  "2024-01-02T09:00:00Z",
		ExitTime:   "2024-01-02T11:00:00Z",
		Lots:       ptr(1),
		Profit:     ptr(50),
		MethodID:   m.Data.ID,
		Result:     journal.Win,
	})
	require.True(t, tr.Success, tr.Message)
	assert.Equal(t, "Pullback", tr.Data.MethodName)

	got := h.GetMethod(ctx, m.Data.ID)
	require.True(t, got.Success)
	assert.Equal(t, 1, got.Data.UsageCount)
	assert.Equal(t, 1.0, got.Data.WinRate)
	assert.Equal(t, 50.0, got.Data.TotalPnL)

	overall := h.OverallStats(ctx)
	require.True(t, overall.Success)
	assert.Equal(t, 1, overall.Data.TotalTrades)

	periods := h.TimePeriodStats(ctx, "month")
	require.True(t, periods.Success)
	require.Len(t, periods.Data, 1)
	assert.Equal(t, "2024-01", periods.Data[0].Period)

	bad := h.TimePeriodStats(ctx, "year")
	assert.False(t, bad.Success)

	curve := h.ProfitCurve(ctx)
	require.True(t, curve.Success)
	assert.Len(t, curve.Data, 1)

	assert.True(t, h.DeleteTrade(ctx, tr.Data.ID).Success)
	assert.False(t, h.GetTrade(ctx, tr.Data.ID).Success)

	list := h.ListTrades(ctx, journal.TradeFilter{})
	require.True(t, list.Success)
	assert.Empty(t, list.Data)
}

func TestCreateTradeValidation(t *testing.T) {
	h := newHandlers(t)

	r := h.CreateTrade(context.Background(), journal.Trade{Symbol: "EURUSD"})
	assert.False(t, r.Success)
	assert.NotEmpty(t, r.Message)
}
