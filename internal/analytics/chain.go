// Package analytics implements the option chain analytics: chain
// normalization, gamma/delta exposure aggregation, and strategy payoff
// curves. All functions are pure and safe for concurrent use.
package analytics

import (
	"errors"

	"options-dashboard/internal/marketdata"
)

// ErrNoValidContracts is returned when a chain has no options carrying greeks.
var ErrNoValidContracts = errors.New("no valid options with greeks found")

// Option type constants as reported by the upstream chain payload.
const (
	OptionTypeCall = "call"
	OptionTypePut  = "put"
)

// Contract is a normalized per-option snapshot used by the exposure
// aggregator. It is constructed per request and discarded after aggregation.
type Contract struct {
	Strike       float64
	OptionType   string
	Gamma        float64
	Delta        float64
	OpenInterest int64
	Volume       int64
}

// Normalize filters a raw option chain down to contracts that carry a greeks
// object. Entries without greeks cannot contribute to exposure and are
// silently dropped; individual greek fields absent from the payload decode
// to 0. Returns ErrNoValidContracts when nothing survives the filter.
func Normalize(chain *marketdata.ChainResponse) ([]Contract, error) {
	if chain == nil {
		return nil, ErrNoValidContracts
	}

	options := chain.Contracts()
	contracts := make([]Contract, 0, len(options))
	for _, opt := range options {
		if opt.Greeks == nil {
			continue
		}
		contracts = append(contracts, Contract{
			Strike:       opt.Strike,
			OptionType:   opt.OptionType,
			Gamma:        opt.Greeks.Gamma,
			Delta:        opt.Greeks.Delta,
			OpenInterest: opt.OpenInterest,
			Volume:       opt.Volume,
		})
	}

	if len(contracts) == 0 {
		return nil, ErrNoValidContracts
	}

	return contracts, nil
}
