// Package stream is the in-process event channel between the replay engine
// and its listeners (journal, dashboard, CLI progress). The engine publishes;
// any number of subscribers, including none, may attach.
package stream

// EventType discriminates the payload carried by an Event.
type EventType string

const (
	EventBar      EventType = "bar"      // payload market.Bar
	EventTrade    EventType = "trade"    // payload sim.Trade
	EventEquity   EventType = "equity"   // payload sim.EquityPoint
	EventProgress EventType = "progress" // payload Progress
	EventResult   EventType = "result"   // payload *backtest.Result
	EventError    EventType = "error"    // payload RunError
)

// Event is the unit published through the bus.
type Event struct {
	Type    EventType
	Payload any
}

// Progress reports how far a replay has advanced.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// RunError reports a setup failure before any bar was processed.
type RunError struct {
	Message string `json:"message"`
}
