// Package sim implements the cash/position ledger and the order execution
// rules the replay engine runs signals through.
package sim

import (
	"time"

	"github.com/rustyeddy/replay/market"
)

// ContractMultiplier converts one lot at a given price into notional dollars.
const ContractMultiplier = 100.0

// Position is an open long for a single instrument. The executor refreshes
// MarkPrice on every bar for that instrument.
type Position struct {
	Instrument string    `json:"instrument"`
	Quantity   int       `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	EntryTime  time.Time `json:"entry_time"`
	MarkPrice  float64   `json:"mark_price"`
}

// Value returns the position's current notional value.
func (p *Position) Value() float64 {
	return float64(p.Quantity) * p.MarkPrice * ContractMultiplier
}

// UnrealizedPL returns the mark-to-market P&L since entry.
func (p *Position) UnrealizedPL() float64 {
	return (p.MarkPrice - p.EntryPrice) * float64(p.Quantity) * ContractMultiplier
}

// Trade is the immutable record of an executed order. RealizedPL is zero for
// buys and the round-trip result for sells.
type Trade struct {
	ID         string        `json:"id"`
	Time       time.Time     `json:"time"`
	Instrument string        `json:"instrument"`
	Action     market.Action `json:"action"`
	Price      float64       `json:"price"`
	Quantity   int           `json:"quantity"`
	Fee        float64       `json:"fee"`
	RealizedPL float64       `json:"realized_pl"`
}

// EquityPoint is one sample of total account equity.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// Ledger holds the cash balance, open positions, trade history and equity
// curve for a single run. It is owned by that run's executor; a successful
// execution never leaves Cash negative and an instrument has a Positions
// entry exactly while it has an open long.
type Ledger struct {
	InitialCapital float64
	Cash           float64
	Positions      map[string]*Position
	Trades         []Trade
	Equity         []EquityPoint
}

// NewLedger creates a ledger funded with initialCapital.
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{
		InitialCapital: initialCapital,
		Cash:           initialCapital,
		Positions:      make(map[string]*Position),
	}
}

// TotalEquity is cash plus the current value of all open positions.
func (l *Ledger) TotalEquity() float64 {
	equity := l.Cash
	for _, p := range l.Positions {
		equity += p.Value()
	}
	return equity
}

// SampleEquity appends and returns an equity point at t.
func (l *Ledger) SampleEquity(t time.Time) EquityPoint {
	pt := EquityPoint{Time: t, Equity: l.TotalEquity()}
	l.Equity = append(l.Equity, pt)
	return pt
}
