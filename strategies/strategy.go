// Package strategies defines the Strategy interface the replay engine drives
// and the concrete strategies that ship with it.
package strategies

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/replay/market"
)

// Strategy turns a stream of bars into buy/sell decisions. OnBar returns nil
// when the strategy has no opinion for this bar (hold). Reset clears all
// internal state so the same instance can be reused across independent runs.
type Strategy interface {
	Name() string
	OnBar(bar market.Bar) *market.Signal
	Reset()
}

var registry = make(map[string]Strategy)

// Register adds a strategy to the global registry, keyed by its Name().
func Register(s Strategy) {
	registry[s.Name()] = s
}

// Get retrieves a registered strategy by name.
func Get(name string) (Strategy, bool) {
	s, ok := registry[name]
	return s, ok
}

// List returns the sorted names of all registered strategies.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName constructs a strategy from CLI-style parameters.
func ByName(name string, short, long int) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "sma-cross", "smacross":
		return NewSMACross(short, long)

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, sma-cross)", name)
	}
}
