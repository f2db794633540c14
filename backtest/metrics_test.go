package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/replay/market"
	"github.com/rustyeddy/replay/sim"
)

func equityCurve(values ...float64) []sim.EquityPoint {
	base := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	points := make([]sim.EquityPoint, len(values))
	for i, v := range values {
		points[i] = sim.EquityPoint{Time: base.Add(time.Duration(i) * time.Minute), Equity: v}
	}
	return points
}

func sells(pnls ...float64) []sim.Trade {
	trades := make([]sim.Trade, len(pnls))
	for i, pnl := range pnls {
		trades[i] = sim.Trade{Action: market.Sell, RealizedPL: pnl}
	}
	return trades
}

func TestMaxDrawdown(t *testing.T) {
	dd, ddPct := maxDrawdown(equityCurve(100, 120, 90, 110, 80, 130))
	assert.InDelta(t, 40.0, dd, 1e-9)
	assert.InDelta(t, (120.0-80.0)/120.0*100, ddPct, 1e-9)

	t.Run("monotonic curve has no drawdown", func(t *testing.T) {
		dd, ddPct := maxDrawdown(equityCurve(100, 110, 120))
		assert.Zero(t, dd)
		assert.Zero(t, ddPct)
	})

	t.Run("empty curve", func(t *testing.T) {
		dd, ddPct := maxDrawdown(nil)
		assert.Zero(t, dd)
		assert.Zero(t, ddPct)
	})
}

func TestTradeStats(t *testing.T) {
	r := &Result{}
	tradeStats(r, sells(50, -20, 30, -10))

	assert.Equal(t, 4, r.ClosedTrades)
	assert.Equal(t, 2, r.Wins)
	assert.Equal(t, 2, r.Losses)
	assert.InDelta(t, 50.0, r.WinRate, 1e-9)
	assert.InDelta(t, 80.0/30.0, r.ProfitFactor, 1e-9)
	assert.InDelta(t, 40.0, r.AvgWin, 1e-9)
	assert.InDelta(t, -15.0, r.AvgLoss, 1e-9)
}

func TestTradeStatsZeroPL(t *testing.T) {
	// Zero-P&L trades count as losses for win rate but are excluded from
	// both averages, and buys are never closed trades.
	trades := append(sells(10, 0), sim.Trade{Action: market.Buy})
	r := &Result{}
	tradeStats(r, trades)

	assert.Equal(t, 2, r.ClosedTrades)
	assert.Equal(t, 1, r.Wins)
	assert.Equal(t, 1, r.Losses)
	assert.InDelta(t, 50.0, r.WinRate, 1e-9)
	assert.InDelta(t, 10.0, r.AvgWin, 1e-9)
	assert.Zero(t, r.AvgLoss)
	assert.Zero(t, r.ProfitFactor, "no strictly negative trades means no profit factor")
}

func TestTradeStatsEmpty(t *testing.T) {
	r := &Result{}
	tradeStats(r, nil)
	assert.Zero(t, r.WinRate)
	assert.Zero(t, r.ProfitFactor)
}

func TestSharpeRatio(t *testing.T) {
	t.Run("too few points", func(t *testing.T) {
		assert.Zero(t, sharpeRatio(nil, 0))
		assert.Zero(t, sharpeRatio(equityCurve(100), 0))
	})

	t.Run("flat curve has zero volatility", func(t *testing.T) {
		assert.Zero(t, sharpeRatio(equityCurve(100, 100, 100), 0))
	})

	t.Run("constant growth has zero volatility", func(t *testing.T) {
		assert.Zero(t, sharpeRatio(equityCurve(100, 110, 121), 0))
	})

	t.Run("non-positive prior equity is skipped", func(t *testing.T) {
		// Only the 100 -> 110 return is valid; a single return has zero
		// population stddev.
		assert.Zero(t, sharpeRatio(equityCurve(0, 100, 110), 0))
	})

	t.Run("hand-computed", func(t *testing.T) {
		// Returns 0.1 and -0.05: mean 0.025, population stddev 0.075.
		got := sharpeRatio(equityCurve(100, 110, 104.5), 0)
		want := (0.025 * periodsPerYear) / (0.075 * math.Sqrt(periodsPerYear))
		assert.InDelta(t, want, got, 1e-9)
	})
}

func TestAnalyze(t *testing.T) {
	ledger := sim.NewLedger(10_000)
	ledger.Cash = 9_000
	ledger.Trades = sells(-1000)
	ledger.Equity = equityCurve(10_000, 10_000, 9_000)

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	r := Analyze(ledger, "run-1", "sma-cross", []string{"SPY"}, start, end, 0.02)
	require.NotNil(t, r)

	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, "sma-cross", r.Strategy)
	assert.InDelta(t, -1000.0, r.TotalPL, 1e-9)
	assert.InDelta(t, -10.0, r.TotalPLPct, 1e-9)
	assert.Equal(t, 1, r.TotalTrades)
	assert.Equal(t, 1, r.ClosedTrades)
	assert.Equal(t, 1, r.Losses)
	assert.InDelta(t, 1000.0, r.MaxDrawdown, 1e-9)
	assert.InDelta(t, 10.0, r.MaxDrawdownPct, 1e-9)

	// Completed run, no open positions: realized P&L sums to total P&L.
	sum := 0.0
	for _, trade := range r.Trades {
		sum += trade.RealizedPL
	}
	assert.InDelta(t, r.TotalPL, sum, 1e-9)
}
