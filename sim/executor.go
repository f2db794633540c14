package sim

import (
	"sort"
	"time"

	"github.com/rustyeddy/replay/market"
	"github.com/rustyeddy/replay/pkg/id"
)

// Executor applies signals to a ledger it does not own. Rejections (duplicate
// buy, insufficient cash, sell with no position) are expected per-signal
// outcomes, not errors: Execute simply returns nil and the replay continues.
type Executor struct {
	ledger *Ledger
	fee    float64
}

// NewExecutor wraps the ledger with the given flat fee per trade.
func NewExecutor(ledger *Ledger, feePerTrade float64) *Executor {
	return &Executor{ledger: ledger, fee: feePerTrade}
}

// MarkToMarket refreshes the open position's mark price from the bar close.
// It never creates trades or touches cash.
func (e *Executor) MarkToMarket(bar market.Bar) {
	if p, ok := e.ledger.Positions[bar.Instrument]; ok {
		p.MarkPrice = bar.Close
	}
}

// Execute turns a signal into an accepted trade, or nil if the signal is
// rejected. Accepted trades are appended to the ledger's history.
func (e *Executor) Execute(sig market.Signal) *Trade {
	switch sig.Action {
	case market.Buy:
		return e.buy(sig)
	case market.Sell:
		return e.sell(sig)
	default:
		return nil
	}
}

func (e *Executor) buy(sig market.Signal) *Trade {
	if _, open := e.ledger.Positions[sig.Instrument]; open {
		return nil
	}

	cost := sig.Price*float64(sig.Quantity)*ContractMultiplier + e.fee
	if cost > e.ledger.Cash {
		return nil
	}

	e.ledger.Positions[sig.Instrument] = &Position{
		Instrument: sig.Instrument,
		Quantity:   sig.Quantity,
		EntryPrice: sig.Price,
		EntryTime:  sig.Time,
		MarkPrice:  sig.Price,
	}
	e.ledger.Cash -= cost

	trade := Trade{
		ID:         id.New(),
		Time:       sig.Time,
		Instrument: sig.Instrument,
		Action:     market.Buy,
		Price:      sig.Price,
		Quantity:   sig.Quantity,
		Fee:        e.fee,
	}
	e.ledger.Trades = append(e.ledger.Trades, trade)
	return &trade
}

// sell closes the whole open position for the signal's instrument. The entry
// fee is charged again symmetrically at exit, modeling round-trip commission,
// so the realized P&L carries the fee twice: once inside proceeds and once as
// the explicit entry-side subtraction.
func (e *Executor) sell(sig market.Signal) *Trade {
	pos, open := e.ledger.Positions[sig.Instrument]
	if !open {
		return nil
	}

	qty := pos.Quantity
	proceeds := sig.Price*float64(qty)*ContractMultiplier - e.fee
	entryCost := pos.EntryPrice * float64(qty) * ContractMultiplier
	realized := proceeds - entryCost - e.fee

	e.ledger.Cash += proceeds
	delete(e.ledger.Positions, sig.Instrument)

	trade := Trade{
		ID:         id.New(),
		Time:       sig.Time,
		Instrument: sig.Instrument,
		Action:     market.Sell,
		Price:      sig.Price,
		Quantity:   qty,
		Fee:        e.fee,
		RealizedPL: realized,
	}
	e.ledger.Trades = append(e.ledger.Trades, trade)
	return &trade
}

// CloseAll force-liquidates every open position at its last mark price,
// through the normal sell path. Instruments are closed in sorted order so
// the resulting trade sequence is deterministic.
func (e *Executor) CloseAll(t time.Time) []Trade {
	insts := make([]string, 0, len(e.ledger.Positions))
	for inst := range e.ledger.Positions {
		insts = append(insts, inst)
	}
	sort.Strings(insts)

	var closed []Trade
	for _, inst := range insts {
		pos := e.ledger.Positions[inst]
		trade := e.sell(market.Signal{
			Instrument: inst,
			Time:       t,
			Action:     market.Sell,
			Price:      pos.MarkPrice,
			Quantity:   pos.Quantity,
			Reason:     "end of replay",
		})
		if trade != nil {
			closed = append(closed, *trade)
		}
	}
	return closed
}
