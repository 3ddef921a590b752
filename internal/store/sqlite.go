// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"stock-backtester/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Daily OHLCV bars
	CREATE TABLE IF NOT EXISTS daily_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		instrument TEXT NOT NULL,
		trade_date DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(instrument, trade_date)
	);
	CREATE INDEX IF NOT EXISTS idx_daily_data_lookup ON daily_data(instrument, trade_date);

	-- Stock pool (watchlist)
	CREATE TABLE IF NOT EXISTS stock_pool (
		instrument TEXT PRIMARY KEY,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveBars upserts a batch of bars in a single transaction.
func (s *SQLiteStore) SaveBars(ctx context.Context, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_data (instrument, trade_date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(instrument, trade_date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Instrument, b.Date.UTC(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("inserting bar %s %s: %w", b.Instrument, b.Date.Format("2006-01-02"), err)
		}
	}

	return tx.Commit()
}

// GetBars returns the bars for an instrument in [from, to], ordered by date.
func (s *SQLiteStore) GetBars(ctx context.Context, instrument string, from, to time.Time) ([]models.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_date, open, high, low, close, volume
		FROM daily_data
		WHERE instrument = ? AND trade_date BETWEEN ? AND ?
		ORDER BY trade_date ASC
	`, instrument, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying bars: %w", err)
	}
	defer rows.Close()

	var bars []models.Bar
	for rows.Next() {
		b := models.Bar{Instrument: instrument}
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scanning bar: %w", err)
		}
		bars = append(bars, b)
	}

	return bars, rows.Err()
}

// GetLastDate returns the most recent trade date across all instruments.
func (s *SQLiteStore) GetLastDate(ctx context.Context) (time.Time, error) {
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT MAX(trade_date) FROM daily_data`).Scan(&last)
	if err != nil {
		return time.Time{}, fmt.Errorf("querying last date: %w", err)
	}
	if !last.Valid {
		return time.Time{}, fmt.Errorf("no bar data stored")
	}
	return last.Time, nil
}

// ListInstruments returns all instruments with stored bars, sorted.
func (s *SQLiteStore) ListInstruments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT instrument FROM daily_data ORDER BY instrument`)
	if err != nil {
		return nil, fmt.Errorf("querying instruments: %w", err)
	}
	defer rows.Close()

	var instruments []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning instrument: %w", err)
		}
		instruments = append(instruments, id)
	}
	return instruments, rows.Err()
}

// AddToPool adds an instrument to the stock pool.
func (s *SQLiteStore) AddToPool(ctx context.Context, instrument string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO stock_pool (instrument) VALUES (?)
	`, instrument)
	return err
}

// RemoveFromPool removes an instrument from the stock pool.
func (s *SQLiteStore) RemoveFromPool(ctx context.Context, instrument string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM stock_pool WHERE instrument = ?`, instrument)
	return err
}

// GetPool returns the stock pool in insertion order.
func (s *SQLiteStore) GetPool(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT instrument FROM stock_pool ORDER BY added_at, instrument`)
	if err != nil {
		return nil, fmt.Errorf("querying stock pool: %w", err)
	}
	defer rows.Close()

	var pool []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning pool entry: %w", err)
		}
		pool = append(pool, id)
	}
	return pool, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
