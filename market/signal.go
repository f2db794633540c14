package market

import "time"

// Action is the side of a trading signal or executed trade.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Signal is a strategy decision for a single bar. A nil *Signal means hold.
// Quantity is a positive lot count; Price is the price the strategy saw when
// it made the decision (normally the bar close).
type Signal struct {
	Instrument string    `json:"instrument"`
	Time       time.Time `json:"time"`
	Action     Action    `json:"action"`
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
	Reason     string    `json:"reason,omitempty"`
}
