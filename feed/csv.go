// Package feed loads bar data into the engine: flat CSV files (optionally
// xz-compressed) and a rate-limited HTTP market-data client.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/replay/market"
)

var csvHeader = []string{"time", "instrument", "open", "high", "low", "close", "volume"}

// LoadBars reads bars from a CSV file:
//
//	time,instrument,open,high,low,close,volume
//
// where time is RFC3339 or RFC3339Nano. A header row is allowed and empty
// rows are skipped. Files ending in .xz are decompressed transparently.
// Bars are filtered to [from, to) when either bound is non-zero, then
// sorted by timestamp and validated.
func LoadBars(path string, from, to time.Time) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("feed: open xz %s: %w", path, err)
		}
		src = xr
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	var bars []market.Bar
	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row.
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		bar, ok, err := parseBarRow(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if !inRange(bar.Time, from, to) {
			continue
		}
		bars = append(bars, bar)
	}

	market.SortBars(bars)
	if err := market.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("feed: %s: %w", path, err)
	}
	return bars, nil
}

// WriteBars writes bars to a CSV file with a header row. Files ending in
// .xz are compressed.
func WriteBars(path string, bars []market.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var dst io.Writer = f
	var xw *xz.Writer
	if strings.HasSuffix(path, ".xz") {
		xw, err = xz.NewWriter(f)
		if err != nil {
			return fmt.Errorf("feed: create xz %s: %w", path, err)
		}
		dst = xw
	}

	w := csv.NewWriter(dst)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Time.UTC().Format(time.RFC3339),
			b.Instrument,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if xw != nil {
		return xw.Close()
	}
	return nil
}

func parseBarRow(row []string) (market.Bar, bool, error) {
	if len(row) < 7 {
		return market.Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Bar{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return market.Bar{}, false, fmt.Errorf("bad time %q: %w", ts, err)
		}
		t = t2
	}

	inst := strings.TrimSpace(row[1])
	if inst == "" {
		return market.Bar{}, false, nil
	}

	var px [4]float64
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("bad %s %q: %w", name, row[2+i], err)
		}
		px[i] = v
	}

	vol, err := strconv.ParseInt(strings.TrimSpace(row[6]), 10, 64)
	if err != nil {
		return market.Bar{}, false, fmt.Errorf("bad volume %q: %w", row[6], err)
	}

	return market.Bar{
		Instrument: inst,
		Time:       t,
		Open:       px[0],
		High:       px[1],
		Low:        px[2],
		Close:      px[3],
		Volume:     vol,
	}, true, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
