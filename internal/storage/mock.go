package storage

import (
	"context"
	"sync"

	"options-dashboard/internal/backtest"
)

// MockStorage implements Interface in memory for testing
type MockStorage struct {
	mu              sync.RWMutex
	results         []backtest.Result
	trades          []Trade
	saveResultErr   error
	saveTradeErr    error
	listResultsErr  error
	listTradesErr   error
	saveResultCalls int
	saveTradeCalls  int
}

// NewMockStorage creates a new mock storage for testing
func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

// FailSaveResult makes SaveBacktestResult return err.
func (m *MockStorage) FailSaveResult(err error) { m.saveResultErr = err }

// FailSaveTrade makes SaveTrade return err.
func (m *MockStorage) FailSaveTrade(err error) { m.saveTradeErr = err }

// FailListResults makes ListBacktestResults return err.
func (m *MockStorage) FailListResults(err error) { m.listResultsErr = err }

// FailListTrades makes ListTrades return err.
func (m *MockStorage) FailListTrades(err error) { m.listTradesErr = err }

// SaveResultCalls reports how many times SaveBacktestResult ran.
func (m *MockStorage) SaveResultCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveResultCalls
}

// SaveTradeCalls reports how many times SaveTrade ran.
func (m *MockStorage) SaveTradeCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveTradeCalls
}

func (m *MockStorage) SaveBacktestResult(_ context.Context, result *backtest.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveResultCalls++
	if m.saveResultErr != nil {
		return m.saveResultErr
	}
	// Prepend so listing is newest first, matching the SQLite ordering.
	m.results = append([]backtest.Result{*result}, m.results...)
	return nil
}

func (m *MockStorage) ListBacktestResults(_ context.Context, limit int) ([]backtest.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listResultsErr != nil {
		return nil, m.listResultsErr
	}
	if limit > len(m.results) {
		limit = len(m.results)
	}
	out := make([]backtest.Result, limit)
	copy(out, m.results[:limit])
	return out, nil
}

func (m *MockStorage) SaveTrade(_ context.Context, trade *Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveTradeCalls++
	if m.saveTradeErr != nil {
		return m.saveTradeErr
	}
	m.trades = append([]Trade{*trade}, m.trades...)
	return nil
}

func (m *MockStorage) ListTrades(_ context.Context, limit int) ([]Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listTradesErr != nil {
		return nil, m.listTradesErr
	}
	if limit > len(m.trades) {
		limit = len(m.trades)
	}
	out := make([]Trade, limit)
	copy(out, m.trades[:limit])
	return out, nil
}

func (m *MockStorage) Close() error { return nil }

// Ensure MockStorage implements Interface
var _ Interface = (*MockStorage)(nil)
