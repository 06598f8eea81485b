package marketdata

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// Provider defines the market data surface consumed by the API handlers.
//
// Implementations must be safe for concurrent use - handlers call these
// methods from many request goroutines at once.
type Provider interface {
	GetExpirations(ctx context.Context, symbol string) ([]string, error)
	GetOptionChain(ctx context.Context, symbol, expiration string) (*ChainResponse, error)
	GetQuotes(ctx context.Context, symbols []string) (*QuotesResponse, error)
	GetHistory(ctx context.Context, symbol, interval, startDate, endDate string) (*HistoryResponse, error)
}

// Ensure Client implements Provider at compile time.
var _ Provider = (*Client)(nil)

// CircuitBreakerProvider wraps a Provider with circuit breaker functionality
type CircuitBreakerProvider struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
}

// CircuitBreakerSettings configures circuit breaker behavior
type CircuitBreakerSettings struct {
	MaxRequests  uint32        // Max requests when half-open
	Interval     time.Duration // Reset counts interval
	Timeout      time.Duration // Open circuit duration
	MinRequests  uint32        // Min requests before tripping
	FailureRatio float64       // Failure ratio threshold
}

// NewCircuitBreakerProvider creates a CircuitBreakerProvider with sensible defaults
func NewCircuitBreakerProvider(provider Provider) *CircuitBreakerProvider {
	return NewCircuitBreakerProviderWithSettings(provider, CircuitBreakerSettings{
		MaxRequests:  3,                // Allow 3 requests when half-open
		Interval:     60 * time.Second, // Reset counts every minute
		Timeout:      30 * time.Second, // Open circuit for 30 seconds
		MinRequests:  5,                // Minimum requests before tripping
		FailureRatio: 0.6,              // Trip if 60% failure rate
	})
}

// NewCircuitBreakerProviderWithSettings creates a CircuitBreakerProvider with custom settings
func NewCircuitBreakerProviderWithSettings(provider Provider, settings CircuitBreakerSettings) *CircuitBreakerProvider {
	gbSettings := gobreaker.Settings{
		Name:        "MarketDataCircuitBreaker",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 || counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s state changed from %s to %s", name, from, to)
		},
	}

	return &CircuitBreakerProvider{
		provider: provider,
		breaker:  gobreaker.NewCircuitBreaker(gbSettings),
	}
}

// execCircuitBreaker is a generic helper for circuit breaker wrapper methods
func execCircuitBreaker[T any](
	breaker *gobreaker.CircuitBreaker,
	provider Provider,
	fn func(Provider) (T, error),
) (T, error) {
	var zero T
	res, err := breaker.Execute(func() (interface{}, error) { return fn(provider) })
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	v, ok := res.(T)
	if !ok {
		return zero, errors.New("circuit breaker: type assertion failed")
	}
	return v, nil
}

// GetExpirations wraps the underlying provider call with circuit breaker
func (c *CircuitBreakerProvider) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	return execCircuitBreaker(c.breaker, c.provider, func(p Provider) ([]string, error) {
		return p.GetExpirations(ctx, symbol)
	})
}

// GetOptionChain wraps the underlying provider call with circuit breaker
func (c *CircuitBreakerProvider) GetOptionChain(ctx context.Context, symbol, expiration string) (*ChainResponse, error) {
	return execCircuitBreaker(c.breaker, c.provider, func(p Provider) (*ChainResponse, error) {
		return p.GetOptionChain(ctx, symbol, expiration)
	})
}

// GetQuotes wraps the underlying provider call with circuit breaker
func (c *CircuitBreakerProvider) GetQuotes(ctx context.Context, symbols []string) (*QuotesResponse, error) {
	return execCircuitBreaker(c.breaker, c.provider, func(p Provider) (*QuotesResponse, error) {
		return p.GetQuotes(ctx, symbols)
	})
}

// GetHistory wraps the underlying provider call with circuit breaker
func (c *CircuitBreakerProvider) GetHistory(ctx context.Context, symbol, interval, startDate, endDate string) (*HistoryResponse, error) {
	return execCircuitBreaker(c.breaker, c.provider, func(p Provider) (*HistoryResponse, error) {
		return p.GetHistory(ctx, symbol, interval, startDate, endDate)
	})
}

// Ensure CircuitBreakerProvider implements Provider at compile time.
var _ Provider = (*CircuitBreakerProvider)(nil)
