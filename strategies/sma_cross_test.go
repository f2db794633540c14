package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/replay/market"
)

func barsFromCloses(instrument string, closes []float64) []market.Bar {
	base := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Instrument: instrument,
			Time:       base.Add(time.Duration(i) * time.Minute),
			Open:       c,
			High:       c,
			Low:        c,
			Close:      c,
			Volume:     1000,
		}
	}
	return bars
}

func TestSMACrossConstruction(t *testing.T) {
	_, err := NewSMACross(0, 4)
	assert.Error(t, err)

	_, err = NewSMACross(4, 4)
	assert.Error(t, err)

	_, err = NewSMACross(5, 2)
	assert.Error(t, err)

	s, err := NewSMACross(2, 4)
	require.NoError(t, err)
	assert.Equal(t, "sma-cross", s.Name())
}

func TestSMACrossSignalSequence(t *testing.T) {
	s, err := NewSMACross(2, 4)
	require.NoError(t, err)

	closes := []float64{10, 10, 10, 10, 20, 20, 20, 20, 10, 10, 10, 10}
	bars := barsFromCloses("SPY", closes)

	var signals []*market.Signal
	var signalBars []int
	for i, bar := range bars {
		if sig := s.OnBar(bar); sig != nil {
			signals = append(signals, sig)
			signalBars = append(signalBars, i)
		}
	}

	// Exactly one BUY at the first bar where the short average exceeds the
	// long average, one SELL when it crosses back below, nothing else.
	require.Len(t, signals, 2)

	buy := signals[0]
	assert.Equal(t, market.Buy, buy.Action)
	assert.Equal(t, 4, signalBars[0])
	assert.Equal(t, "SPY", buy.Instrument)
	assert.Equal(t, 20.0, buy.Price)
	assert.Equal(t, 1, buy.Quantity)
	assert.Contains(t, buy.Reason, "crossed above")

	sell := signals[1]
	assert.Equal(t, market.Sell, sell.Action)
	assert.Equal(t, 8, signalBars[1])
	assert.Equal(t, 10.0, sell.Price)
	assert.Contains(t, sell.Reason, "crossed below")
}

func TestSMACrossWarmup(t *testing.T) {
	s, err := NewSMACross(2, 4)
	require.NoError(t, err)

	// Fewer than longPeriod samples: averages undefined, no signal even on
	// a strong move.
	bars := barsFromCloses("SPY", []float64{1, 100, 200})
	for _, bar := range bars {
		assert.Nil(t, s.OnBar(bar))
	}
}

func TestSMACrossHoldingFlagSuppression(t *testing.T) {
	s, err := NewSMACross(2, 4)
	require.NoError(t, err)

	// A down-cross with no prior up-cross must not sell: the strategy does
	// not believe it is holding.
	closes := []float64{20, 20, 20, 20, 10, 10, 10, 10}
	for _, bar := range barsFromCloses("SPY", closes) {
		assert.Nil(t, s.OnBar(bar))
	}
}

func TestSMACrossPerInstrumentState(t *testing.T) {
	s, err := NewSMACross(2, 4)
	require.NoError(t, err)

	up := barsFromCloses("SPY", []float64{10, 10, 10, 10, 20})
	flat := barsFromCloses("QQQ", []float64{10, 10, 10, 10, 10})

	var spySignals, qqqSignals int
	for i := range up {
		if s.OnBar(up[i]) != nil {
			spySignals++
		}
		if s.OnBar(flat[i]) != nil {
			qqqSignals++
		}
	}

	assert.Equal(t, 1, spySignals)
	assert.Equal(t, 0, qqqSignals)
}

func TestSMACrossReset(t *testing.T) {
	s, err := NewSMACross(2, 4)
	require.NoError(t, err)

	closes := []float64{10, 10, 10, 10, 20, 20}
	firstRun := 0
	for _, bar := range barsFromCloses("SPY", closes) {
		if s.OnBar(bar) != nil {
			firstRun++
		}
	}
	require.Equal(t, 1, firstRun)

	s.Reset()

	secondRun := 0
	for _, bar := range barsFromCloses("SPY", closes) {
		if s.OnBar(bar) != nil {
			secondRun++
		}
	}
	assert.Equal(t, firstRun, secondRun, "reset strategy should replay identically")
}

func TestByName(t *testing.T) {
	s, err := ByName("noop", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "noop", s.Name())

	s, err = ByName("SMA-Cross", 5, 20)
	require.NoError(t, err)
	assert.Equal(t, "sma-cross", s.Name())

	_, err = ByName("martingale", 0, 0)
	assert.Error(t, err)
}
