package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	instrument TEXT NOT NULL,
	action TEXT NOT NULL,
	price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	fee REAL NOT NULL,
	realized_pl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	equity REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	start DATETIME NOT NULL,
	end DATETIME NOT NULL,
	initial_capital REAL NOT NULL,
	final_equity REAL NOT NULL,
	total_pl REAL NOT NULL,
	total_pl_pct REAL NOT NULL,
	total_trades INTEGER NOT NULL,
	closed_trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL NOT NULL,
	sharpe_ratio REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	max_drawdown_pct REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
`
