package backtest

import (
	"math"
	"time"

	"github.com/rustyeddy/replay/market"
	"github.com/rustyeddy/replay/sim"
)

// Equity samples are assumed to land on minute bars over a 252-trading-day,
// 390-minute-per-day calendar when annualizing.
const periodsPerYear = 252 * 390

// Analyze reduces a finished ledger plus the run's time bounds to a Result.
// It is a pure function of its inputs; the ledger is read, never written.
func Analyze(ledger *sim.Ledger, runID, strategy string, instruments []string,
	start, end time.Time, riskFreeRate float64) *Result {

	finalEquity := ledger.TotalEquity()
	totalPL := finalEquity - ledger.InitialCapital
	totalPLPct := 0.0
	if ledger.InitialCapital != 0 {
		totalPLPct = totalPL / ledger.InitialCapital * 100
	}

	r := &Result{
		RunID:          runID,
		Strategy:       strategy,
		Instruments:    instruments,
		Start:          start,
		End:            end,
		InitialCapital: ledger.InitialCapital,
		FinalEquity:    finalEquity,
		TotalPL:        totalPL,
		TotalPLPct:     totalPLPct,
		TotalTrades:    len(ledger.Trades),
		SharpeRatio:    sharpeRatio(ledger.Equity, riskFreeRate),
		Trades:         ledger.Trades,
		EquityCurve:    ledger.Equity,
	}

	r.MaxDrawdown, r.MaxDrawdownPct = maxDrawdown(ledger.Equity)
	tradeStats(r, ledger.Trades)
	return r
}

// tradeStats fills the closed-trade statistics. A closed trade is any SELL;
// zero-P&L trades count as losses for the win rate but are excluded from
// both averages.
func tradeStats(r *Result, trades []sim.Trade) {
	var sumWin, sumLoss float64
	var winCount, lossCount int

	for _, t := range trades {
		if t.Action != market.Sell {
			continue
		}
		r.ClosedTrades++
		switch {
		case t.RealizedPL > 0:
			r.Wins++
			winCount++
			sumWin += t.RealizedPL
		case t.RealizedPL < 0:
			r.Losses++
			lossCount++
			sumLoss += t.RealizedPL
		default:
			r.Losses++
		}
	}

	if r.ClosedTrades > 0 {
		r.WinRate = float64(r.Wins) / float64(r.ClosedTrades) * 100
	}
	if winCount > 0 {
		r.AvgWin = sumWin / float64(winCount)
	}
	if lossCount > 0 {
		r.AvgLoss = sumLoss / float64(lossCount)
	}
	if sumWin > 0 && sumLoss < 0 {
		r.ProfitFactor = sumWin / math.Abs(sumLoss)
	}
}

// sharpeRatio annualizes the per-sample simple returns between consecutive
// equity points. Samples whose prior equity is non-positive are skipped.
func sharpeRatio(points []sim.EquityPoint, riskFreeRate float64) float64 {
	var returns []float64
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Equity
		if prev <= 0 {
			continue
		}
		returns = append(returns, (points[i].Equity-prev)/prev)
	}
	if len(returns) < 1 {
		return 0
	}

	mean := 0.0
	for _, ret := range returns {
		mean += ret
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, ret := range returns {
		d := ret - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	annReturn := mean * periodsPerYear
	annStdDev := math.Sqrt(variance) * math.Sqrt(periodsPerYear)
	if annStdDev == 0 {
		return 0
	}
	return (annReturn - riskFreeRate) / annStdDev
}

// maxDrawdown tracks the running peak across the equity curve and returns
// the largest dollar and percent declines. The two maxima are tracked
// independently and need not occur at the same sample.
func maxDrawdown(points []sim.EquityPoint) (dd, ddPct float64) {
	peak := math.Inf(-1)
	for _, pt := range points {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		drop := peak - pt.Equity
		if drop > dd {
			dd = drop
		}
		if peak > 0 {
			if pct := drop / peak * 100; pct > ddPct {
				ddPct = pct
			}
		}
	}
	return dd, ddPct
}
