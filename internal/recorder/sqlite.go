package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists refresh history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS refreshes (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			quote_count   INTEGER,
			total_volume  INTEGER,
			active_stocks INTEGER,
			market_cap    REAL,
			chart_ticker  TEXT,
			chart_source  TEXT,
			candle_count  INTEGER,
			last_close    REAL,
			sma5          REAL,
			rsi14         REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refreshes_ts ON refreshes(timestamp)`,

		`CREATE TABLE IF NOT EXISTS quotes (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			refresh_id     INTEGER NOT NULL REFERENCES refreshes(id),
			symbol         TEXT NOT NULL,
			price          REAL,
			change         REAL,
			change_percent REAL,
			volume         INTEGER,
			high           REAL,
			low            REAL,
			source         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_symbol ON quotes(symbol, refresh_id)`,

		`CREATE TABLE IF NOT EXISTS candles (
			ticker       TEXT NOT NULL,
			window_start INTEGER NOT NULL,
			open         REAL,
			high         REAL,
			low          REAL,
			close        REAL,
			volume       INTEGER,
			transactions INTEGER,
			source       TEXT,
			PRIMARY KEY (ticker, window_start)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRefresh writes one refresh row, its quotes, and upserts its candles
// in a single transaction.
func (r *SQLiteRecorder) RecordRefresh(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	chart := snap.Chart
	res, err := tx.Exec(`INSERT INTO refreshes
		(timestamp, quote_count, total_volume, active_stocks, market_cap,
		 chart_ticker, chart_source, candle_count, last_close, sma5, rsi14)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		snap.Time.Unix(), len(snap.Quotes),
		snap.Stats.TotalVolume, snap.Stats.ActiveStocks, snap.Stats.MarketCap,
		chart.Ticker, chart.Source, len(snap.Candles), chart.LastClose, chart.SMA5, chart.RSI14,
	)
	if err != nil {
		return fmt.Errorf("insert refresh: %w", err)
	}
	refreshID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("refresh id: %w", err)
	}

	for _, q := range snap.Quotes {
		if _, err := tx.Exec(`INSERT INTO quotes
			(refresh_id, symbol, price, change, change_percent, volume, high, low, source)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			refreshID, q.Symbol, q.Price, q.Change, q.ChangePercent, q.Volume, q.High, q.Low, q.Source,
		); err != nil {
			return fmt.Errorf("insert quote %s: %w", q.Symbol, err)
		}
	}

	for _, c := range snap.Candles {
		if _, err := tx.Exec(`INSERT INTO candles
			(ticker, window_start, open, high, low, close, volume, transactions, source)
			VALUES (?,?,?,?,?,?,?,?,?)
			ON CONFLICT(ticker, window_start) DO UPDATE SET
				open=excluded.open, high=excluded.high, low=excluded.low, close=excluded.close,
				volume=excluded.volume, transactions=excluded.transactions, source=excluded.source`,
			c.Ticker, c.TimestampMillis, c.Open, c.High, c.Low, c.Close, c.Volume, c.Transactions, chart.Source,
		); err != nil {
			return fmt.Errorf("upsert candle %s@%d: %w", c.Ticker, c.TimestampMillis, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
