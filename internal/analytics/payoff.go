package analytics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRequest is returned when a payoff request is missing required
// fields or carries out-of-range values.
var ErrInvalidRequest = errors.New("invalid request")

const (
	// defaultPriceRangePct spans the sampled price domain at +/-20% of spot.
	defaultPriceRangePct = 20.0
	// pricePoints is the fixed sample count of the P&L curve. Breakeven
	// recovery is linear interpolation between samples, so accuracy is
	// bounded by the resulting step size.
	pricePoints = 50
)

// StrategyLeg is one option position within a multi-leg strategy. Quantity
// is signed: positive for long, negative for short. Price is the per-share
// entry premium.
type StrategyLeg struct {
	OptionType string  `json:"option_type"`
	Strike     float64 `json:"strike"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// PayoffRequest describes a strategy P&L computation. Leg order is preserved
// for reporting but irrelevant to the math.
type PayoffRequest struct {
	StrategyType    string        `json:"strategy_type"`
	UnderlyingPrice float64       `json:"underlying_price"`
	Legs            []StrategyLeg `json:"legs"`
	PriceRangePct   float64       `json:"price_range_pct"`
}

// PnLPoint is one sample of the payoff curve.
type PnLPoint struct {
	Price float64 `json:"price"`
	PnL   float64 `json:"pnl"`
}

// PayoffResult is the computed payoff curve plus derived scalars. Computed
// fresh per request, never persisted.
type PayoffResult struct {
	StrategyType    string     `json:"strategy_type"`
	UnderlyingPrice float64    `json:"underlying_price"`
	PnLCurve        []PnLPoint `json:"pnl_curve"`
	MaxProfit       float64    `json:"max_profit"`
	MaxLoss         float64    `json:"max_loss"`
	BreakevenPoints []float64  `json:"breakeven_points"`
	InitialCost     float64    `json:"initial_cost"`
}

// ComputePayoff samples the expiry P&L of a multi-leg strategy over a price
// domain of pricePoints equally spaced samples spanning
// underlying x (1 +/- range/100), and derives max profit, max loss, and
// interpolated breakeven prices.
func ComputePayoff(req PayoffRequest) (*PayoffResult, error) {
	if req.StrategyType == "" {
		return nil, fmt.Errorf("%w: strategy_type is required", ErrInvalidRequest)
	}
	if req.UnderlyingPrice <= 0 {
		return nil, fmt.Errorf("%w: underlying_price must be > 0", ErrInvalidRequest)
	}
	if len(req.Legs) == 0 {
		return nil, fmt.Errorf("%w: at least one leg is required", ErrInvalidRequest)
	}
	for i, leg := range req.Legs {
		if leg.OptionType != OptionTypeCall && leg.OptionType != OptionTypePut {
			return nil, fmt.Errorf("%w: legs[%d].option_type must be 'call' or 'put'", ErrInvalidRequest, i)
		}
		if leg.Strike < 0 {
			return nil, fmt.Errorf("%w: legs[%d].strike must be >= 0", ErrInvalidRequest, i)
		}
	}

	rangePct := req.PriceRangePct
	if rangePct <= 0 {
		rangePct = defaultPriceRangePct
	}

	// Net premium paid (positive) or received (negative), per-contract scaled.
	var initialCost float64
	for _, leg := range req.Legs {
		initialCost += leg.Price * float64(leg.Quantity) * ContractMultiplier
	}

	minPrice := req.UnderlyingPrice * (1 - rangePct/100)
	maxPrice := req.UnderlyingPrice * (1 + rangePct/100)
	step := (maxPrice - minPrice) / float64(pricePoints-1)

	curve := make([]PnLPoint, pricePoints)
	maxProfit := math.Inf(-1)
	maxLoss := math.Inf(1)
	for i := 0; i < pricePoints; i++ {
		price := minPrice + step*float64(i)
		pnl := -initialCost
		for _, leg := range req.Legs {
			pnl += intrinsicValue(leg.OptionType, leg.Strike, price) * float64(leg.Quantity) * ContractMultiplier
		}
		curve[i] = PnLPoint{Price: price, PnL: pnl}
		maxProfit = math.Max(maxProfit, pnl)
		maxLoss = math.Min(maxLoss, pnl)
	}

	return &PayoffResult{
		StrategyType:    req.StrategyType,
		UnderlyingPrice: req.UnderlyingPrice,
		PnLCurve:        curve,
		MaxProfit:       maxProfit,
		MaxLoss:         maxLoss,
		BreakevenPoints: findBreakevens(curve),
		InitialCost:     initialCost,
	}, nil
}

// intrinsicValue is the option value at expiry.
func intrinsicValue(optionType string, strike, underlying float64) float64 {
	switch optionType {
	case OptionTypeCall:
		return math.Max(0, underlying-strike)
	case OptionTypePut:
		return math.Max(0, strike-underlying)
	}
	return 0
}

// findBreakevens scans adjacent sample pairs for zero crossings (or touches)
// and linearly interpolates the root. Flat segments are skipped: with
// pnl2 == pnl1 the interpolation denominator is zero, and curve sampling is
// an approximation rather than exact root-finding.
func findBreakevens(curve []PnLPoint) []float64 {
	breakevens := make([]float64, 0, 2)
	for i := 1; i < len(curve); i++ {
		pnl1, pnl2 := curve[i-1].PnL, curve[i].PnL
		crosses := (pnl1 <= 0 && pnl2 >= 0) || (pnl1 >= 0 && pnl2 <= 0)
		if !crosses || pnl2 == pnl1 {
			continue
		}
		p1, p2 := curve[i-1].Price, curve[i].Price
		breakevens = append(breakevens, p1+(p2-p1)*(-pnl1)/(pnl2-pnl1))
	}
	return breakevens
}
