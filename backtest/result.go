// Package backtest drives a bar replay through a strategy and a simulated
// ledger and reduces the outcome to summary statistics.
package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/replay/sim"
)

// Result is the aggregate outcome of one completed run. It is created once,
// after forced liquidation, and never mutated.
type Result struct {
	RunID       string    `json:"run_id"`
	Strategy    string    `json:"strategy"`
	Instruments []string  `json:"instruments"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`

	InitialCapital float64 `json:"initial_capital"`
	FinalEquity    float64 `json:"final_equity"`
	TotalPL        float64 `json:"total_pl"`
	TotalPLPct     float64 `json:"total_pl_pct"`

	TotalTrades  int     `json:"total_trades"`
	ClosedTrades int     `json:"closed_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	ProfitFactor float64 `json:"profit_factor"`

	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`

	Trades      []sim.Trade       `json:"trades"`
	EquityCurve []sim.EquityPoint `json:"equity_curve"`
}

// Print writes a human-readable summary of the run.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Instruments:   %v\n", r.Instruments)
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Initial:       %.2f\n", r.InitialCapital)
	fmt.Fprintf(w, "Final Equity:  %.2f\n", r.FinalEquity)
	fmt.Fprintf(w, "Net P/L:       %.2f (%.2f%%)\n", r.TotalPL, r.TotalPLPct)
	fmt.Fprintf(w, "Sharpe:        %.3f\n", r.SharpeRatio)
	fmt.Fprintf(w, "Max Drawdown:  %.2f (%.2f%%)\n", r.MaxDrawdown, r.MaxDrawdownPct)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d (%d closed)\n", r.TotalTrades, r.ClosedTrades)
	fmt.Fprintf(w, "Wins:          %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", r.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", r.AvgLoss)
	if r.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", r.ProfitFactor)
	}
	fmt.Fprintln(w)
}
