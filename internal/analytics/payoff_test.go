package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePayoffLongCall(t *testing.T) {
	result, err := ComputePayoff(PayoffRequest{
		StrategyType:    "long-call",
		UnderlyingPrice: 100,
		Legs: []StrategyLeg{
			{OptionType: OptionTypeCall, Strike: 100, Quantity: 1, Price: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "long-call", result.StrategyType)
	assert.InDelta(t, 200, result.InitialCost, 1e-9)
	require.Len(t, result.PnLCurve, 50)

	// Default range spans 80..120 inclusive.
	assert.InDelta(t, 80, result.PnLCurve[0].Price, 1e-9)
	assert.InDelta(t, 120, result.PnLCurve[49].Price, 1e-9)

	// Below the strike the loss is the premium paid.
	assert.InDelta(t, -200, result.PnLCurve[0].PnL, 1e-9)
	assert.InDelta(t, -200, result.MaxLoss, 1e-9)

	// At the top of the range: (120-100)*100 - 200.
	assert.InDelta(t, 1800, result.PnLCurve[49].PnL, 1e-9)
	assert.InDelta(t, 1800, result.MaxProfit, 1e-9)

	// The payoff is linear above the strike, so interpolation recovers the
	// breakeven exactly: strike + premium.
	require.Len(t, result.BreakevenPoints, 1)
	assert.InDelta(t, 102, result.BreakevenPoints[0], 1e-9)

	// Sampled curve approximates pnl(100)=-200 and pnl(110)=800 within one
	// step of slope (step ~0.82, slope 100/unit above the strike).
	step := result.PnLCurve[1].Price - result.PnLCurve[0].Price
	assert.InDelta(t, -200, pnlNearest(result.PnLCurve, 100), step*100)
	assert.InDelta(t, 800, pnlNearest(result.PnLCurve, 110), step*100)
}

// pnlNearest returns the curve PnL at the sample closest to price.
func pnlNearest(curve []PnLPoint, price float64) float64 {
	best := curve[0]
	for _, pt := range curve[1:] {
		if math.Abs(pt.Price-price) < math.Abs(best.Price-price) {
			best = pt
		}
	}
	return best.PnL
}

func TestComputePayoffShortPut(t *testing.T) {
	result, err := ComputePayoff(PayoffRequest{
		StrategyType:    "short-put",
		UnderlyingPrice: 100,
		Legs: []StrategyLeg{
			{OptionType: OptionTypePut, Strike: 100, Quantity: -1, Price: 3},
		},
	})
	require.NoError(t, err)

	// Credit received up front.
	assert.InDelta(t, -300, result.InitialCost, 1e-9)
	assert.InDelta(t, 300, result.MaxProfit, 1e-9)

	require.Len(t, result.BreakevenPoints, 1)
	assert.InDelta(t, 97, result.BreakevenPoints[0], 1e-9)
}

func TestComputePayoffVerticalSpread(t *testing.T) {
	// Bull call spread 100/110 for a 4.00 net debit.
	result, err := ComputePayoff(PayoffRequest{
		StrategyType:    "bull-call-spread",
		UnderlyingPrice: 105,
		Legs: []StrategyLeg{
			{OptionType: OptionTypeCall, Strike: 100, Quantity: 1, Price: 7},
			{OptionType: OptionTypeCall, Strike: 110, Quantity: -1, Price: 3},
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 400, result.InitialCost, 1e-9)
	// Width minus debit, capped above the short strike.
	assert.InDelta(t, 600, result.MaxProfit, 1e-9)
	assert.InDelta(t, -400, result.MaxLoss, 1e-9)
	require.Len(t, result.BreakevenPoints, 1)
	assert.InDelta(t, 104, result.BreakevenPoints[0], 1e-9)
}

func TestComputePayoffCustomPriceRange(t *testing.T) {
	result, err := ComputePayoff(PayoffRequest{
		StrategyType:    "long-call",
		UnderlyingPrice: 100,
		PriceRangePct:   10,
		Legs: []StrategyLeg{
			{OptionType: OptionTypeCall, Strike: 100, Quantity: 1, Price: 2},
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 90, result.PnLCurve[0].Price, 1e-9)
	assert.InDelta(t, 110, result.PnLCurve[49].Price, 1e-9)
}

func TestComputePayoffIdempotent(t *testing.T) {
	req := PayoffRequest{
		StrategyType:    "straddle",
		UnderlyingPrice: 100,
		Legs: []StrategyLeg{
			{OptionType: OptionTypeCall, Strike: 100, Quantity: 1, Price: 3},
			{OptionType: OptionTypePut, Strike: 100, Quantity: 1, Price: 3},
		},
	}

	first, err := ComputePayoff(req)
	require.NoError(t, err)
	second, err := ComputePayoff(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputePayoffFlatZeroCurve(t *testing.T) {
	// A zero-quantity leg yields an identically zero curve. Flat segments
	// must not produce breakevens or NaN from the interpolation.
	result, err := ComputePayoff(PayoffRequest{
		StrategyType:    "degenerate",
		UnderlyingPrice: 100,
		Legs: []StrategyLeg{
			{OptionType: OptionTypeCall, Strike: 100, Quantity: 0, Price: 0},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, result.BreakevenPoints)
	for _, pt := range result.PnLCurve {
		assert.False(t, math.IsNaN(pt.PnL))
		assert.Zero(t, pt.PnL)
	}
}

func TestComputePayoffValidation(t *testing.T) {
	leg := StrategyLeg{OptionType: OptionTypeCall, Strike: 100, Quantity: 1, Price: 2}

	tests := []struct {
		name string
		req  PayoffRequest
	}{
		{"missing strategy type", PayoffRequest{UnderlyingPrice: 100, Legs: []StrategyLeg{leg}}},
		{"zero underlying", PayoffRequest{StrategyType: "x", Legs: []StrategyLeg{leg}}},
		{"negative underlying", PayoffRequest{StrategyType: "x", UnderlyingPrice: -5, Legs: []StrategyLeg{leg}}},
		{"no legs", PayoffRequest{StrategyType: "x", UnderlyingPrice: 100}},
		{"bad option type", PayoffRequest{StrategyType: "x", UnderlyingPrice: 100,
			Legs: []StrategyLeg{{OptionType: "future", Strike: 100, Quantity: 1}}}},
		{"negative strike", PayoffRequest{StrategyType: "x", UnderlyingPrice: 100,
			Legs: []StrategyLeg{{OptionType: OptionTypeCall, Strike: -1, Quantity: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputePayoff(tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}
