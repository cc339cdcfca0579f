package journal

import (
	"context"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeEmptyIDIsNoop(t *testing.T) {
	t.Parallel()

	var nilStore *Store
	assert.NoError(t, NewMaintainer(nilStore, nil).Recompute(context.Background(), ""))
}

func TestRecomputeUnknownMethod(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	err := NewMaintainer(s, nil).Recompute(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.methods.Create(ctx, Method{ID: "a", Code: "A", Name: "Alpha"})
	require.NoError(t, err)
	for _, tr := range []Trade{
		{Symbol: "X", Direction: Long, MethodID: "a", Profit: ptr(10.1), Result: Win},
		{Symbol: "X", Direction: Long, MethodID: "a", Profit: ptr(0.2), Result: Loss},
		{Symbol: "X", Direction: Long, MethodID: "a", Result: Win},
	} {
		_, err := fx.trades.Create(ctx, tr)
		require.NoError(t, err)
	}

	m := NewMaintainer(fx.store, nil)
	require.NoError(t, m.Recompute(ctx, "a"))
	first, err := fx.methods.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, m.Recompute(ctx, "a"))
	second, err := fx.methods.Get(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, first.UsageCount)
	assert.Equal(t, 0.67, first.WinRate)
	assert.Equal(t, 10.3, first.TotalPnL, "null profit counts as zero")
}

// Method stats must match a from-scratch count after any history of
// creates, updates and deletes.
func TestMethodStatsMatchTradesAfterRandomHistory(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	methodIDs := []string{"a", "b", "c"}
	for _, id := range methodIDs {
		_, err := fx.methods.Create(ctx, Method{ID: id, Code: id, Name: id})
		require.NoError(t, err)
	}

	rng := rand.New(rand.NewSource(42))
	results := []Result{Win, Loss, Breakeven, ""}
	randomTrade := func() Trade {
		tr := Trade{Symbol: "EURUSD", Direction: Long, MethodName: "manual", Result: results[rng.Intn(len(results))]}
		if k := rng.Intn(len(methodIDs) + 1); k < len(methodIDs) {
			tr.MethodID = methodIDs[k]
		}
		if rng.Intn(4) > 0 {
			tr.Profit = ptr(float64(rng.Intn(20001)-10000) / 100)
		}
		return tr
	}

	var live []int64
	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			created, err := fx.trades.Create(ctx, randomTrade())
			require.NoError(t, err)
			live = append(live, created.ID)
		case op == 1:
			_, err := fx.trades.Update(ctx, live[rng.Intn(len(live))], randomTrade())
			require.NoError(t, err)
		default:
			k := rng.Intn(len(live))
			require.NoError(t, fx.trades.Delete(ctx, live[k]))
			live = append(live[:k], live[k+1:]...)
		}
	}

	for _, id := range methodIDs {
		trades, err := fx.trades.List(ctx, TradeFilter{MethodID: id})
		require.NoError(t, err)

		wins := 0
		pnl := 0.0
		for _, tr := range trades {
			if tr.Result == Win {
				wins++
			}
			if tr.Profit != nil {
				pnl += *tr.Profit
			}
		}
		wantRate := ratio(decimal.NewFromInt(int64(wins)), len(trades))

		m, err := fx.methods.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, len(trades), m.UsageCount, "method %s", id)
		assert.InDelta(t, wantRate, m.WinRate, 1e-9, "method %s", id)
		assert.InDelta(t, pnl, m.TotalPnL, 1e-6, "method %s", id)
	}
}
