package analytics

import "sort"

// ContractMultiplier converts per-share option values to per-contract
// notional (100 shares per contract).
const ContractMultiplier = 100

// ExposureResult holds per-strike aggregated exposure in ascending strike
// order plus the grand total. Strikes and Values are parallel slices; Total
// always equals the exact sum of Values.
type ExposureResult struct {
	Strikes []float64 `json:"strikes"`
	Values  []float64 `json:"values"`
	Total   float64   `json:"total"`
}

// GEX aggregates gamma exposure by strike. Per contract:
// gamma x open_interest x 100, signed +1 for calls and -1 for puts (dealer
// hedging convention: calls and puts carry opposing directional gamma).
func GEX(contracts []Contract) ExposureResult {
	return aggregate(contracts, func(c Contract) float64 {
		sign := 1.0
		if c.OptionType == OptionTypePut {
			sign = -1.0
		}
		return c.Gamma * float64(c.OpenInterest) * ContractMultiplier * sign
	})
}

// DEX aggregates delta exposure by strike. Per contract:
// delta x open_interest x 100. No sign flip: put deltas are already negative
// by convention.
func DEX(contracts []Contract) ExposureResult {
	return aggregate(contracts, func(c Contract) float64 {
		return c.Delta * float64(c.OpenInterest) * ContractMultiplier
	})
}

// aggregate groups per-contract values by strike and sums within each group.
// Output is sorted ascending by strike for determinism.
func aggregate(contracts []Contract, value func(Contract) float64) ExposureResult {
	byStrike := make(map[float64]float64, len(contracts))
	for _, c := range contracts {
		byStrike[c.Strike] += value(c)
	}

	strikes := make([]float64, 0, len(byStrike))
	for strike := range byStrike {
		strikes = append(strikes, strike)
	}
	sort.Float64s(strikes)

	result := ExposureResult{
		Strikes: strikes,
		Values:  make([]float64, len(strikes)),
	}
	for i, strike := range strikes {
		result.Values[i] = byStrike[strike]
		result.Total += byStrike[strike]
	}

	return result
}
