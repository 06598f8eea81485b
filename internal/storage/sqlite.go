package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"options-dashboard/internal/backtest"
)

// SQLiteStorage implements Interface using SQLite. Full records are stored
// as JSON documents alongside queryable scalar columns.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at path and initializes
// the schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStorage{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS backtest_results (
		id TEXT PRIMARY KEY,
		strategy_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		document TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_backtest_results_created_at ON backtest_results(created_at);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		strategy_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		status TEXT NOT NULL,
		legs TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_created_at ON trades(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveBacktestResult appends a completed backtest result.
func (s *SQLiteStorage) SaveBacktestResult(ctx context.Context, result *backtest.Result) error {
	document, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding backtest result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO backtest_results (id, strategy_id, symbol, start_date, end_date, document, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.StrategyID, result.Symbol, result.StartDate, result.EndDate,
		string(document), result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting backtest result: %w", err)
	}
	return nil
}

// ListBacktestResults returns up to limit persisted results, newest first.
func (s *SQLiteStorage) ListBacktestResults(ctx context.Context, limit int) ([]backtest.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document FROM backtest_results ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying backtest results: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]backtest.Result, 0, limit)
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scanning backtest result: %w", err)
		}
		var result backtest.Result
		if err := json.Unmarshal([]byte(document), &result); err != nil {
			return nil, fmt.Errorf("decoding backtest result: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

// SaveTrade appends a trade submission record.
func (s *SQLiteStorage) SaveTrade(ctx context.Context, trade *Trade) error {
	legs, err := json.Marshal(trade.Legs)
	if err != nil {
		return fmt.Errorf("encoding trade legs: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trades (id, strategy_id, symbol, status, legs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.StrategyID, trade.Symbol, trade.Status, string(legs), trade.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting trade: %w", err)
	}
	return nil
}

// ListTrades returns up to limit persisted trades, newest first.
func (s *SQLiteStorage) ListTrades(ctx context.Context, limit int) ([]Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, strategy_id, symbol, status, legs, created_at
		 FROM trades ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying trades: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	trades := make([]Trade, 0, limit)
	for rows.Next() {
		var trade Trade
		var legs string
		if err := rows.Scan(&trade.ID, &trade.StrategyID, &trade.Symbol, &trade.Status, &legs, &trade.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning trade: %w", err)
		}
		if err := json.Unmarshal([]byte(legs), &trade.Legs); err != nil {
			return nil, fmt.Errorf("decoding trade legs: %w", err)
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
