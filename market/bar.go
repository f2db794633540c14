// Package market defines the core price and signal types shared by the
// replay engine, strategies and feeds.
package market

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Bar is one OHLCV sample for an instrument over a fixed time interval.
// Bars are immutable once produced; the engine only ever reads them.
type Bar struct {
	Instrument string    `json:"instrument"`
	Time       time.Time `json:"time"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     int64     `json:"volume"`
}

// SortBars orders bars by ascending timestamp. The sort is stable so bars
// from different instruments that share a timestamp keep their relative
// order.
func SortBars(bars []Bar) {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})
}

// ValidateBars checks that every bar carries an instrument, finite
// non-negative prices and volume, and that timestamps are non-decreasing
// within each instrument's sub-sequence.
func ValidateBars(bars []Bar) error {
	last := make(map[string]time.Time)

	for i, b := range bars {
		if b.Instrument == "" {
			return fmt.Errorf("bar %d: empty instrument", i)
		}
		if b.Time.IsZero() {
			return fmt.Errorf("bar %d (%s): zero timestamp", i, b.Instrument)
		}
		for _, px := range []float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(px) || math.IsInf(px, 0) || px < 0 {
				return fmt.Errorf("bar %d (%s): bad price %v", i, b.Instrument, px)
			}
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s): negative volume %d", i, b.Instrument, b.Volume)
		}
		if prev, ok := last[b.Instrument]; ok && b.Time.Before(prev) {
			return fmt.Errorf("bar %d (%s): timestamp %s before previous %s",
				i, b.Instrument, b.Time.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		last[b.Instrument] = b.Time
	}
	return nil
}

// Instruments returns the sorted set of instruments present in bars.
func Instruments(bars []Bar) []string {
	seen := make(map[string]struct{})
	for _, b := range bars {
		seen[b.Instrument] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for inst := range seen {
		out = append(out, inst)
	}
	sort.Strings(out)
	return out
}
