package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-dashboard/internal/marketdata"
)

// constantBars returns n daily bars with the same close.
func constantBars(n int, close float64) []marketdata.DailyBar {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]marketdata.DailyBar, n)
	for i := range bars {
		bars[i] = marketdata.DailyBar{
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Close: close,
		}
	}
	return bars
}

func mustLookup(t *testing.T, id string) Template {
	t.Helper()
	tpl, err := Lookup(id)
	require.NoError(t, err)
	return tpl
}

func TestRunNoHistoricalData(t *testing.T) {
	_, err := Run(mustLookup(t, "covered-call"), "SPY", "2026-01-01", "2026-06-30", 10000, nil)
	assert.ErrorIs(t, err, ErrNoHistoricalData)
}

func TestRunPopulatesResult(t *testing.T) {
	bars := constantBars(40, 100)

	result, err := Run(mustLookup(t, "straddle"), "SPY", "2026-01-01", "2026-02-09", 10000, bars)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "straddle", result.StrategyID)
	assert.Equal(t, "Straddle", result.StrategyName)
	assert.Equal(t, "SPY", result.Symbol)
	assert.Equal(t, "2026-01-01", result.StartDate)
	assert.Equal(t, "2026-02-09", result.EndDate)
	assert.Equal(t, 10000.0, result.InitialCapital)
	assert.False(t, result.CreatedAt.IsZero())

	require.Len(t, result.PriceHistory, 40)
	assert.Equal(t, bars[0].Date, result.PriceHistory[0].Date)
	assert.Equal(t, 100.0, result.PriceHistory[0].Price)
}

func TestRunCoveredCall(t *testing.T) {
	// 61 flat bars at 100: buy 100 shares, collect premiums on days 30 and 60.
	bars := constantBars(61, 100)

	result, err := Run(mustLookup(t, "covered-call"), "SPY", "", "", 10000, bars)
	require.NoError(t, err)

	// Each premium cycle pays close * 2% * shares = 200.
	require.Len(t, result.TradeHistory, 2)
	assert.Equal(t, "Sell Call", result.TradeHistory[0].Action)
	assert.InDelta(t, 200, result.TradeHistory[0].Premium, 1e-9)

	// Final: 400 cash + 100 shares * 100.
	assert.InDelta(t, 10400, result.FinalCapital, 1e-9)
}

func TestRunCoveredCallRisingSeries(t *testing.T) {
	// Steadily rising closes: stock appreciation plus premiums must beat the
	// starting capital.
	bars := constantBars(61, 0)
	for i := range bars {
		bars[i].Close = 100 + float64(i)*0.5
	}

	result, err := Run(mustLookup(t, "covered-call"), "SPY", "", "", 10000, bars)
	require.NoError(t, err)
	assert.Greater(t, result.FinalCapital, 10000.0)
}

func TestRunCoveredCallBuysMaxAffordableShares(t *testing.T) {
	// 10000 / 333 = 30 whole shares, 10 cash left over.
	bars := constantBars(5, 333)

	result, err := Run(mustLookup(t, "covered-call"), "SPY", "", "", 10000, bars)
	require.NoError(t, err)

	// No premium cycle inside 5 bars; final is leftover cash plus stock value.
	assert.Empty(t, result.TradeHistory)
	assert.InDelta(t, 10+30*333, result.FinalCapital, 1e-9)
}

func TestRunIronCondorWins(t *testing.T) {
	// Flat prices: every 30-day window stays inside the +/-5% band.
	bars := constantBars(61, 100)

	result, err := Run(mustLookup(t, "iron-condor"), "SPY", "", "", 10000, bars)
	require.NoError(t, err)

	// Windows starting at bars 0 and 30 complete; 3% compounds twice.
	require.Len(t, result.TradeHistory, 2)
	assert.Equal(t, "Iron Condor Cycle", result.TradeHistory[0].Action)
	assert.InDelta(t, 300, result.TradeHistory[0].Profit, 1e-9)
	assert.InDelta(t, 10000*1.03*1.03, result.FinalCapital, 1e-9)
}

func TestRunIronCondorLoses(t *testing.T) {
	// A 10% move breaches the band: one losing cycle of -5%.
	bars := constantBars(31, 100)
	bars[30].Close = 110

	result, err := Run(mustLookup(t, "iron-condor"), "SPY", "", "", 10000, bars)
	require.NoError(t, err)

	require.Len(t, result.TradeHistory, 1)
	assert.InDelta(t, -500, result.TradeHistory[0].Profit, 1e-9)
	assert.InDelta(t, 9500, result.FinalCapital, 1e-9)
}

func TestRunIronCondorTooFewBars(t *testing.T) {
	// No complete 30-day window: capital unchanged, no trades.
	bars := constantBars(20, 100)

	result, err := Run(mustLookup(t, "iron-condor"), "SPY", "", "", 10000, bars)
	require.NoError(t, err)

	assert.Empty(t, result.TradeHistory)
	assert.Equal(t, 10000.0, result.FinalCapital)
}

func TestRunDirectional(t *testing.T) {
	bars := constantBars(10, 100)
	bars[9].Close = 110

	tests := []struct {
		strategyID string
		wantFinal  float64
	}{
		{"straddle", 11000},         // bias 1.0
		{"bull-call-spread", 11200}, // bias 1.2
		{"bear-put-spread", 10800},  // bias 0.8
	}

	for _, tt := range tests {
		t.Run(tt.strategyID, func(t *testing.T) {
			result, err := Run(mustLookup(t, tt.strategyID), "SPY", "", "", 10000, bars)
			require.NoError(t, err)

			assert.InDelta(t, tt.wantFinal, result.FinalCapital, 1e-9)

			require.Len(t, result.TradeHistory, 2)
			assert.Equal(t, "Entry", result.TradeHistory[0].Action)
			assert.Equal(t, 100.0, result.TradeHistory[0].Price)
			assert.Equal(t, "Exit", result.TradeHistory[1].Action)
			assert.Equal(t, 110.0, result.TradeHistory[1].Price)
		})
	}
}

func TestRunDirectionalZeroFirstClose(t *testing.T) {
	bars := constantBars(5, 0)
	bars[4].Close = 50

	result, err := Run(mustLookup(t, "straddle"), "SPY", "", "", 10000, bars)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, result.FinalCapital)
}
