package backtest

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"options-dashboard/internal/marketdata"
)

// ErrNoHistoricalData is returned when the backtest period yields no bars.
var ErrNoHistoricalData = errors.New("no historical data available for backtest period")

const (
	// premiumCycleDays spaces the covered call and iron condor cycles.
	premiumCycleDays = 30
	// coveredCallPremiumPct is the synthetic monthly premium rate.
	coveredCallPremiumPct = 0.02
	// condorRangePct is the price move threshold for a winning condor cycle.
	condorRangePct = 5.0
	// condorWinPct / condorLossPct compound against current capital per cycle.
	condorWinPct  = 0.03
	condorLossPct = 0.05
)

// TradeEvent is one ledger entry. Populated fields depend on the simulation
// branch that produced it.
type TradeEvent struct {
	Date       string  `json:"date"`
	Action     string  `json:"action"`
	Price      float64 `json:"price,omitempty"`
	Premium    float64 `json:"premium,omitempty"`
	EntryPrice float64 `json:"entry_price,omitempty"`
	ExitPrice  float64 `json:"exit_price,omitempty"`
	Profit     float64 `json:"profit,omitempty"`
	Capital    float64 `json:"capital"`
}

// PricePoint is one day of the price history snapshot embedded in a result.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Metrics summarizes backtest performance.
type Metrics struct {
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
}

// Result is a completed backtest. It is persisted after computation.
type Result struct {
	ID             string       `json:"id"`
	StrategyID     string       `json:"strategy_id"`
	StrategyName   string       `json:"strategy_name"`
	Symbol         string       `json:"symbol"`
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	InitialCapital float64      `json:"initial_capital"`
	FinalCapital   float64      `json:"final_capital"`
	TradeHistory   []TradeEvent `json:"trade_history"`
	Metrics        Metrics      `json:"metrics"`
	PriceHistory   []PricePoint `json:"price_history"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Run simulates a strategy template over a daily close series. The
// simulation branch is selected by the template Kind; post-processing
// metrics are common to all branches.
func Run(tpl Template, symbol, startDate, endDate string, initialCapital float64, bars []marketdata.DailyBar) (*Result, error) {
	if len(bars) == 0 {
		return nil, ErrNoHistoricalData
	}

	var finalCapital float64
	var ledger []TradeEvent

	switch tpl.Kind {
	case KindCoveredCall:
		finalCapital, ledger = runCoveredCall(initialCapital, bars)
	case KindIronCondor:
		finalCapital, ledger = runIronCondor(initialCapital, bars)
	default:
		finalCapital, ledger = runDirectional(initialCapital, tpl.Bias, bars)
	}

	priceHistory := make([]PricePoint, len(bars))
	for i, bar := range bars {
		priceHistory[i] = PricePoint{Date: bar.Date, Price: bar.Close}
	}

	return &Result{
		ID:             uuid.New().String(),
		StrategyID:     tpl.ID,
		StrategyName:   tpl.Name,
		Symbol:         symbol,
		StartDate:      startDate,
		EndDate:        endDate,
		InitialCapital: initialCapital,
		FinalCapital:   finalCapital,
		TradeHistory:   ledger,
		Metrics:        computeMetrics(initialCapital, finalCapital, bars),
		PriceHistory:   priceHistory,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// runCoveredCall buys the maximum affordable whole shares at the first close
// and collects a synthetic 2% premium on the day's close every 30th bar.
// Final capital is remaining cash plus the stock's closing value.
func runCoveredCall(capital float64, bars []marketdata.DailyBar) (float64, []TradeEvent) {
	var ledger []TradeEvent

	buyPrice := bars[0].Close
	var shares int
	if buyPrice > 0 {
		shares = int(capital / buyPrice)
	}
	cash := capital - buyPrice*float64(shares)

	for i := 1; i < len(bars); i++ {
		if i%premiumCycleDays != 0 {
			continue
		}
		premium := bars[i].Close * coveredCallPremiumPct * float64(shares)
		cash += premium
		ledger = append(ledger, TradeEvent{
			Date:    bars[i].Date,
			Action:  "Sell Call",
			Price:   bars[i].Close,
			Premium: premium,
			Capital: cash + bars[i].Close*float64(shares),
		})
	}

	return cash + bars[len(bars)-1].Close*float64(shares), ledger
}

// runIronCondor walks non-overlapping 30-day windows, winning 3% of current
// capital when the window's move stays inside +/-5% and losing 5% otherwise.
// Gains and losses compound.
func runIronCondor(capital float64, bars []marketdata.DailyBar) (float64, []TradeEvent) {
	var ledger []TradeEvent

	for i := 0; i+premiumCycleDays < len(bars); i += premiumCycleDays {
		entryPrice := bars[i].Close
		exitPrice := bars[i+premiumCycleDays].Close
		if entryPrice == 0 {
			continue
		}

		changePct := (exitPrice - entryPrice) / entryPrice * 100

		var profit float64
		if math.Abs(changePct) < condorRangePct {
			profit = capital * condorWinPct
		} else {
			profit = -capital * condorLossPct
		}
		capital += profit

		ledger = append(ledger, TradeEvent{
			Date:       bars[i+premiumCycleDays].Date,
			Action:     "Iron Condor Cycle",
			EntryPrice: entryPrice,
			ExitPrice:  exitPrice,
			Profit:     profit,
			Capital:    capital,
		})
	}

	return capital, ledger
}

// runDirectional applies the buy-and-hold return from first to last close,
// scaled by the template bias multiplier.
func runDirectional(capital, bias float64, bars []marketdata.DailyBar) (float64, []TradeEvent) {
	buyPrice := bars[0].Close
	sellPrice := bars[len(bars)-1].Close

	var pnl float64
	if buyPrice > 0 {
		pnl = capital * (sellPrice - buyPrice) / buyPrice * bias
	}
	finalCapital := capital + pnl

	ledger := []TradeEvent{
		{Date: bars[0].Date, Action: "Entry", Price: buyPrice, Capital: capital},
		{Date: bars[len(bars)-1].Date, Action: "Exit", Price: sellPrice, Capital: finalCapital},
	}

	return finalCapital, ledger
}
