// Package storage persists backtest results and submitted trades.
package storage

import (
	"context"
	"time"

	"options-dashboard/internal/analytics"
	"options-dashboard/internal/backtest"
)

// TradeStatusSimulated marks trades recorded by this service. No order is
// ever routed; every stored trade is a simulation record.
const TradeStatusSimulated = "simulated"

// Trade is a persisted strategy trade submission.
type Trade struct {
	ID         string                  `json:"id"`
	StrategyID string                  `json:"strategy_id"`
	Symbol     string                  `json:"symbol"`
	Legs       []analytics.StrategyLeg `json:"legs"`
	Status     string                  `json:"status"`
	CreatedAt  time.Time               `json:"created_at"`
}

// Interface defines the contract for result and trade persistence.
//
// Implementations must be safe for concurrent use - callers can assume all
// methods are goroutine-safe. Writes are single appends with no
// read-modify-write contention and no ordering requirement across requests.
type Interface interface {
	SaveBacktestResult(ctx context.Context, result *backtest.Result) error
	ListBacktestResults(ctx context.Context, limit int) ([]backtest.Result, error)

	SaveTrade(ctx context.Context, trade *Trade) error
	ListTrades(ctx context.Context, limit int) ([]Trade, error)

	Close() error
}

// NewStorage creates a new storage implementation (currently SQLite-based)
func NewStorage(path string) (Interface, error) {
	return NewSQLiteStorage(path)
}

// Ensure SQLiteStorage implements Interface
var _ Interface = (*SQLiteStorage)(nil)
