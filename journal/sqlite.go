package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/replay/backtest"
	"github.com/rustyeddy/replay/market"
	"github.com/rustyeddy/replay/sim"
)

// SQLiteJournal persists run artifacts to a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t sim.Trade) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, time, instrument, action, price, quantity, fee, realized_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Time, t.Instrument, string(t.Action),
		t.Price, t.Quantity, t.Fee, t.RealizedPL,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(pt sim.EquityPoint) error {
	_, err := j.db.Exec(`INSERT INTO equity (time, equity) VALUES (?, ?)`,
		pt.Time, pt.Equity)
	return err
}

func (j *SQLiteJournal) RecordRun(r *backtest.Result) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, strategy, start, end, initial_capital, final_equity,
		 total_pl, total_pl_pct, total_trades, closed_trades, wins, losses,
		 win_rate, profit_factor, sharpe_ratio, max_drawdown, max_drawdown_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Strategy, r.Start, r.End, r.InitialCapital, r.FinalEquity,
		r.TotalPL, r.TotalPLPct, r.TotalTrades, r.ClosedTrades, r.Wins, r.Losses,
		r.WinRate, r.ProfitFactor, r.SharpeRatio, r.MaxDrawdown, r.MaxDrawdownPct,
	)
	return err
}

// ListTrades returns all recorded trades ordered by time.
func (j *SQLiteJournal) ListTrades() ([]sim.Trade, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, time, instrument, action, price, quantity, fee, realized_pl
		FROM trades ORDER BY time, trade_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []sim.Trade
	for rows.Next() {
		var t sim.Trade
		var action string
		if err := rows.Scan(&t.ID, &t.Time, &t.Instrument, &action,
			&t.Price, &t.Quantity, &t.Fee, &t.RealizedPL); err != nil {
			return nil, err
		}
		t.Action = market.Action(action)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
