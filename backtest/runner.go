package backtest

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/rustyeddy/replay/market"
	"github.com/rustyeddy/replay/pkg/id"
	"github.com/rustyeddy/replay/sim"
	"github.com/rustyeddy/replay/strategies"
	"github.com/rustyeddy/replay/stream"
)

var (
	// ErrRunActive is returned when Run is called while a run is in flight.
	// The active run is not disturbed.
	ErrRunActive = errors.New("backtest: run already active")

	// ErrNoData is returned when the bar sequence is empty.
	ErrNoData = errors.New("backtest: no data for requested instruments")
)

// State is the run lifecycle: Idle -> Running -> Completed, or
// Running -> Failed on a setup error before any bar is processed.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Config holds the knobs for a run.
type Config struct {
	Strategy       strategies.Strategy
	InitialCapital float64
	FeePerTrade    float64
	RiskFreeRate   float64

	// SamplingInterval is how many bars pass between equity samples. The
	// final bar is always sampled. Values <= 0 mean every bar.
	SamplingInterval int

	// ProgressInterval is how many bars pass between progress events.
	// Values <= 0 default to ten sampling intervals.
	ProgressInterval int
}

// Runner replays a bar sequence through the configured strategy against a
// fresh ledger, publishing bar/trade/equity/progress events to the bus as it
// goes. A Runner drives at most one run at a time.
type Runner struct {
	cfg   Config
	bus   *stream.Bus
	state atomic.Int32

	ledger *sim.Ledger // ledger of the most recent run
}

// NewRunner creates a runner. bus may be nil if no listeners are wanted.
func NewRunner(cfg Config, bus *stream.Bus) *Runner {
	return &Runner{cfg: cfg, bus: bus}
}

// State reports the lifecycle state of the runner.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Ledger exposes the most recent run's ledger, for inspection after the run
// has completed. It is nil before the first run.
func (r *Runner) Ledger() *sim.Ledger { return r.ledger }

func (r *Runner) publish(t stream.EventType, payload any) {
	if r.bus != nil {
		r.bus.Publish(stream.Event{Type: t, Payload: payload})
	}
}

// Run replays bars, already sorted by timestamp, between start and end.
// Bars from different instruments are interleaved by timestamp, not
// processed instrument-by-instrument. On success the runner transitions to
// Completed and returns the analyzed result; a setup failure transitions to
// Failed, publishes an error event, and leaves no partial ledger state.
func (r *Runner) Run(bars []market.Bar, start, end time.Time) (*Result, error) {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) &&
		!r.state.CompareAndSwap(int32(StateCompleted), int32(StateRunning)) &&
		!r.state.CompareAndSwap(int32(StateFailed), int32(StateRunning)) {
		return nil, ErrRunActive
	}

	if len(bars) == 0 {
		r.state.Store(int32(StateFailed))
		r.publish(stream.EventError, stream.RunError{Message: ErrNoData.Error()})
		return nil, ErrNoData
	}

	sample := r.cfg.SamplingInterval
	if sample <= 0 {
		sample = 1
	}
	progress := r.cfg.ProgressInterval
	if progress <= 0 {
		progress = sample * 10
	}

	strat := r.cfg.Strategy
	strat.Reset()

	ledger := sim.NewLedger(r.cfg.InitialCapital)
	exec := sim.NewExecutor(ledger, r.cfg.FeePerTrade)
	r.ledger = ledger

	total := len(bars)
	for i, bar := range bars {
		exec.MarkToMarket(bar)

		if sig := strat.OnBar(bar); sig != nil {
			if trade := exec.Execute(*sig); trade != nil {
				r.publish(stream.EventTrade, *trade)
			}
		}

		r.publish(stream.EventBar, bar)

		last := i == total-1
		if (i+1)%sample == 0 || last {
			pt := ledger.SampleEquity(bar.Time)
			r.publish(stream.EventEquity, pt)
		}
		if (i+1)%progress == 0 || last {
			r.publish(stream.EventProgress, stream.Progress{Current: i + 1, Total: total})
		}
	}

	for _, trade := range exec.CloseAll(bars[total-1].Time) {
		r.publish(stream.EventTrade, trade)
	}

	result := Analyze(ledger, id.New(), strat.Name(), market.Instruments(bars),
		start, end, r.cfg.RiskFreeRate)

	r.publish(stream.EventResult, result)
	r.state.Store(int32(StateCompleted))
	return result, nil
}
