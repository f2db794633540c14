package strategies

import (
	"fmt"

	"github.com/rustyeddy/replay/indicators"
	"github.com/rustyeddy/replay/market"
)

// SMACross trades a short/long simple moving average crossover, one lot at a
// time:
//   - BUY when the short SMA crosses above the long SMA and the strategy is
//     not already holding.
//   - SELL when it crosses back below while holding.
//
// The holding flag is strategy-local bookkeeping, not the ledger's position
// state. Order execution is the sole arbiter of whether a signal actually
// fills; if a BUY is dropped for insufficient cash the strategy will still
// believe it is long. The strategy never queries the ledger.
type SMACross struct {
	shortPeriod int
	longPeriod  int

	state map[string]*smaState
}

// smaState is the per-instrument crossover state.
type smaState struct {
	closes    []float64
	prevShort float64
	prevLong  float64
	havePrev  bool
	holding   bool
}

// NewSMACross creates an SMA crossover strategy with the given short and long
// lookback periods.
func NewSMACross(short, long int) (*SMACross, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("sma-cross: periods must be positive (short=%d long=%d)", short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("sma-cross: short period %d must be less than long period %d", short, long)
	}
	return &SMACross{
		shortPeriod: short,
		longPeriod:  long,
		state:       make(map[string]*smaState),
	}, nil
}

func (s *SMACross) Name() string { return "sma-cross" }

// Reset clears all per-instrument state for reuse across independent runs.
func (s *SMACross) Reset() {
	s.state = make(map[string]*smaState)
}

// OnBar appends the bar close to the instrument's price history and evaluates
// the crossover. It returns nil until both averages have been defined on two
// consecutive bars; a crossover needs two defined pairs to detect a sign
// change.
func (s *SMACross) OnBar(bar market.Bar) *market.Signal {
	st := s.state[bar.Instrument]
	if st == nil {
		st = &smaState{closes: make([]float64, 0, 2*s.longPeriod)}
		s.state[bar.Instrument] = st
	}

	st.closes = append(st.closes, bar.Close)
	if keep := 2 * s.longPeriod; len(st.closes) > keep {
		st.closes = st.closes[len(st.closes)-keep:]
	}

	if len(st.closes) < s.longPeriod {
		return nil
	}

	shortMA, err := indicators.SMA(st.closes, s.shortPeriod)
	if err != nil {
		return nil
	}
	longMA, err := indicators.SMA(st.closes, s.longPeriod)
	if err != nil {
		return nil
	}

	if !st.havePrev {
		st.prevShort, st.prevLong = shortMA, longMA
		st.havePrev = true
		return nil
	}

	buy := st.prevShort <= st.prevLong && shortMA > longMA && !st.holding
	sell := st.prevShort >= st.prevLong && shortMA < longMA && st.holding

	// Always persist the new pair, signal or not, so repeated bars on the
	// same side of the cross don't re-trigger.
	st.prevShort, st.prevLong = shortMA, longMA

	switch {
	case buy:
		st.holding = true
		return &market.Signal{
			Instrument: bar.Instrument,
			Time:       bar.Time,
			Action:     market.Buy,
			Price:      bar.Close,
			Quantity:   1,
			Reason:     fmt.Sprintf("short SMA %.4f crossed above long SMA %.4f", shortMA, longMA),
		}
	case sell:
		st.holding = false
		return &market.Signal{
			Instrument: bar.Instrument,
			Time:       bar.Time,
			Action:     market.Sell,
			Price:      bar.Close,
			Quantity:   1,
			Reason:     fmt.Sprintf("short SMA %.4f crossed below long SMA %.4f", shortMA, longMA),
		}
	default:
		return nil
	}
}
