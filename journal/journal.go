// Package journal persists run artifacts (trades, equity curve, run
// summaries) to CSV files or SQLite.
package journal

import (
	"github.com/rustyeddy/replay/backtest"
	"github.com/rustyeddy/replay/sim"
	"github.com/rustyeddy/replay/stream"
)

// Journal records the artifacts of a backtest run.
type Journal interface {
	RecordTrade(sim.Trade) error
	RecordEquity(sim.EquityPoint) error
	RecordRun(*backtest.Result) error
	Close() error
}

// Consume drains a bus subscription into the journal until the subscription
// channel closes. Record errors are returned after the drain completes so a
// bad disk never stalls the replay; only the first error is kept.
func Consume(j Journal, sub *stream.Subscription) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for ev := range sub.Events() {
		switch ev.Type {
		case stream.EventTrade:
			if t, ok := ev.Payload.(sim.Trade); ok {
				keep(j.RecordTrade(t))
			}
		case stream.EventEquity:
			if pt, ok := ev.Payload.(sim.EquityPoint); ok {
				keep(j.RecordEquity(pt))
			}
		case stream.EventResult:
			if res, ok := ev.Payload.(*backtest.Result); ok {
				keep(j.RecordRun(res))
			}
		}
	}
	return firstErr
}
