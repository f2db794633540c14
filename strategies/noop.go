package strategies

import "github.com/rustyeddy/replay/market"

// Noop never signals. Useful as a baseline and in tests.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) OnBar(market.Bar) *market.Signal { return nil }

func (Noop) Reset() {}
