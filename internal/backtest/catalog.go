// Package backtest provides the strategy template catalog and the
// simplified, template-driven backtest runner.
package backtest

import "errors"

// ErrStrategyNotFound is returned when looking up an unknown template id.
var ErrStrategyNotFound = errors.New("strategy not found")

// Kind selects the simulation branch for a template. Dispatch is explicit
// rather than matched on strategy names, so near-matching names cannot fall
// through to the wrong branch.
type Kind int

const (
	// KindDirectional simulates buy-and-hold scaled by the template bias.
	KindDirectional Kind = iota
	// KindCoveredCall simulates stock ownership with monthly premium collection.
	KindCoveredCall
	// KindIronCondor simulates non-overlapping 30-day range-bound cycles.
	KindIronCondor
)

// Template describes one canned options strategy. Kind and Bias drive the
// backtest simulation and are not part of the catalog JSON.
type Template struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
	Kind        Kind                   `json:"-"`
	Bias        float64                `json:"-"` // directional return multiplier; 1.0 = neutral
}

// Catalog returns the fixed set of strategy templates in presentation order.
func Catalog() []Template {
	return templates
}

// Lookup returns the template with the given id.
func Lookup(id string) (Template, error) {
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, ErrStrategyNotFound
}

var templates = []Template{
	{
		ID:          "covered-call",
		Name:        "Covered Call",
		Description: "A strategy where you own the underlying stock and sell call options against it to generate income.",
		Parameters: map[string]interface{}{
			"stock_allocation":   100,
			"option_strike_pct":  5, // % OTM
			"days_to_expiration": 30,
		},
		Kind: KindCoveredCall,
		Bias: 1.0,
	},
	{
		ID:          "cash-secured-put",
		Name:        "Cash-Secured Put",
		Description: "A strategy where you sell a put option and set aside enough cash to buy the stock if the option is exercised.",
		Parameters: map[string]interface{}{
			"cash_allocation":    100,
			"option_strike_pct":  -5, // % OTM
			"days_to_expiration": 30,
		},
		Kind: KindDirectional,
		Bias: 1.0,
	},
	{
		ID:          "iron-condor",
		Name:        "Iron Condor",
		Description: "A neutral options strategy that profits from low volatility and time decay.",
		Parameters: map[string]interface{}{
			"call_spread_width":  10,
			"put_spread_width":   10,
			"call_wing_otm_pct":  10,
			"put_wing_otm_pct":   10,
			"days_to_expiration": 30,
		},
		Kind: KindIronCondor,
		Bias: 1.0,
	},
	{
		ID:          "bull-call-spread",
		Name:        "Bull Call Spread",
		Description: "A bullish, defined risk strategy that profits from a rise in the underlying asset's price.",
		Parameters: map[string]interface{}{
			"width":              5,
			"lower_strike_pct":   0, // ATM
			"days_to_expiration": 30,
		},
		Kind: KindDirectional,
		Bias: 1.2, // bullish strategies perform better in uptrends
	},
	{
		ID:          "bear-put-spread",
		Name:        "Bear Put Spread",
		Description: "A bearish, defined risk strategy that profits from a fall in the underlying asset's price.",
		Parameters: map[string]interface{}{
			"width":              5,
			"upper_strike_pct":   0, // ATM
			"days_to_expiration": 30,
		},
		Kind: KindDirectional,
		Bias: 0.8, // bearish strategies perform worse in uptrends
	},
	{
		ID:          "calendar-spread",
		Name:        "Calendar Spread",
		Description: "A strategy that involves selling short-term options and buying longer-term options at the same strike price.",
		Parameters: map[string]interface{}{
			"strike_pct":               0, // ATM
			"short_days_to_expiration": 30,
			"long_days_to_expiration":  60,
		},
		Kind: KindDirectional,
		Bias: 1.0,
	},
	{
		ID:          "butterfly-spread",
		Name:        "Butterfly Spread",
		Description: "A neutral strategy with limited risk and profit potential, created with three strikes.",
		Parameters: map[string]interface{}{
			"width":              5,
			"center_strike_pct":  0, // ATM
			"days_to_expiration": 30,
		},
		Kind: KindDirectional,
		Bias: 1.0,
	},
	{
		ID:          "straddle",
		Name:        "Straddle",
		Description: "Buying calls and puts at the same strike price to profit from high volatility.",
		Parameters: map[string]interface{}{
			"strike_pct":         0, // ATM
			"days_to_expiration": 30,
		},
		Kind: KindDirectional,
		Bias: 1.0,
	},
	{
		ID:          "strangle",
		Name:        "Strangle",
		Description: "Buying OTM calls and puts to profit from high volatility at a lower cost than a straddle.",
		Parameters: map[string]interface{}{
			"call_strike_pct":    5,  // % OTM
			"put_strike_pct":     -5, // % OTM
			"days_to_expiration": 30,
		},
		Kind: KindDirectional,
		Bias: 1.0,
	},
	{
		ID:          "diagonal-spread",
		Name:        "Diagonal Spread",
		Description: "A strategy similar to a calendar spread but with different strike prices.",
		Parameters: map[string]interface{}{
			"strike_diff_pct":          5,
			"short_days_to_expiration": 30,
			"long_days_to_expiration":  60,
		},
		Kind: KindDirectional,
		Bias: 1.0,
	},
}
