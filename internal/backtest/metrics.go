package backtest

import (
	"math"

	"options-dashboard/internal/marketdata"
)

const (
	// riskFreeRatePct is subtracted from the annualized return in the Sharpe
	// numerator.
	riskFreeRatePct = 2.0
	// tradingDaysPerYear scales the daily return stdev in the Sharpe
	// denominator.
	tradingDaysPerYear = 252
)

// computeMetrics derives the performance summary common to all simulation
// branches.
//
// The Sharpe ratio mixes an annualized-percent numerator with a daily-return
// stdev denominator; that unit mismatch is a deliberate approximation
// carried over from the product's definition, not a corrected financial
// formula.
func computeMetrics(initialCapital, finalCapital float64, bars []marketdata.DailyBar) Metrics {
	var m Metrics

	if initialCapital != 0 {
		m.TotalReturnPct = (finalCapital - initialCapital) / initialCapital * 100
	}
	if len(bars) > 0 {
		m.AnnualizedReturnPct = m.TotalReturnPct * (365 / float64(len(bars)))
	}

	daily := dailyReturns(bars)
	if sd := stdev(daily); sd > 0 {
		m.SharpeRatio = (m.AnnualizedReturnPct - riskFreeRatePct) / (sd * math.Sqrt(tradingDaysPerYear))
	}
	m.MaxDrawdownPct = maxDrawdownPct(daily)

	return m
}

// dailyReturns is the simple percent-change series of closes.
func dailyReturns(bars []marketdata.DailyBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, bars[i].Close/prev-1)
	}
	return returns
}

// stdev is the sample standard deviation.
func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}

// maxDrawdownPct is the worst peak-to-trough decline of the cumulative
// return series, as a negative percentage (0 when the series never declines).
// The peak is measured from the first cumulative value, so a series that
// only falls from day one has no drawdown: the first day is its own peak.
func maxDrawdownPct(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cumulative := 1 + returns[0]
	runningMax := cumulative
	minDrawdown := 0.0
	for _, r := range returns[1:] {
		cumulative *= 1 + r
		if cumulative > runningMax {
			runningMax = cumulative
		}
		drawdown := cumulative/runningMax - 1
		if drawdown < minDrawdown {
			minDrawdown = drawdown
		}
	}

	return minDrawdown * 100
}
