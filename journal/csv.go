package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/replay/backtest"
	"github.com/rustyeddy/replay/sim"
)

// CSVJournal writes trades and equity points to two CSV files. Run summaries
// have no natural CSV shape and are dropped; use SQLite when they matter.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"trade_id", "time", "instrument", "action", "price", "quantity", "fee", "realized_pl"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "equity"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

func (j *CSVJournal) RecordTrade(t sim.Trade) error {
	err := j.trades.Write([]string{
		t.ID,
		t.Time.Format(time.RFC3339),
		t.Instrument,
		string(t.Action),
		f(t.Price),
		strconv.Itoa(t.Quantity),
		f(t.Fee),
		f(t.RealizedPL),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(pt sim.EquityPoint) error {
	err := j.equity.Write([]string{
		pt.Time.Format(time.RFC3339),
		f(pt.Equity),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) RecordRun(*backtest.Result) error { return nil }

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
