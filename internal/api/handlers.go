package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"options-dashboard/internal/analytics"
	"options-dashboard/internal/backtest"
	"options-dashboard/internal/storage"
)

const defaultInitialCapital = 10000

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Options Analytics API",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// resolveExpiration returns the requested expiration, or the nearest
// available one when the request omits it.
func (s *Server) resolveExpiration(r *http.Request, symbol string) (string, error) {
	if expiration := r.URL.Query().Get("expiration"); expiration != "" {
		return expiration, nil
	}

	expirations, err := s.provider.GetExpirations(r.Context(), symbol)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(expirations) == 0 {
		return "", ErrNoExpirations
	}
	return expirations[0], nil
}

func (s *Server) handleOptionsChain(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	expiration, err := s.resolveExpiration(r, symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}

	chain, err := s.provider.GetOptionChain(r.Context(), symbol, expiration)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", ErrUpstream, err))
		return
	}

	s.writeJSON(w, http.StatusOK, chain)
}

func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	q := r.URL.Query()

	history, err := s.provider.GetHistory(r.Context(), symbol, q.Get("interval"), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", ErrUpstream, err))
		return
	}

	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")
	symbols := make([]string, 0, 4)
	for _, sym := range strings.Split(raw, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		s.writeError(w, fmt.Errorf("%w: symbols query parameter is required", analytics.ErrInvalidRequest))
		return
	}

	quotes, err := s.provider.GetQuotes(r.Context(), symbols)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", ErrUpstream, err))
		return
	}

	s.writeJSON(w, http.StatusOK, quotes)
}

type gexResponse struct {
	Symbol     string    `json:"symbol"`
	Expiration string    `json:"expiration"`
	Strikes    []float64 `json:"strikes"`
	GexValues  []float64 `json:"gex_values"`
	TotalGex   float64   `json:"total_gex"`
}

type dexResponse struct {
	Symbol     string    `json:"symbol"`
	Expiration string    `json:"expiration"`
	Strikes    []float64 `json:"strikes"`
	DexValues  []float64 `json:"dex_values"`
	TotalDex   float64   `json:"total_dex"`
}

// normalizedChain fetches the chain for an exposure analysis and filters it
// to contracts carrying greeks.
func (s *Server) normalizedChain(r *http.Request, symbol string) ([]analytics.Contract, string, error) {
	expiration, err := s.resolveExpiration(r, symbol)
	if err != nil {
		return nil, "", err
	}

	chain, err := s.provider.GetOptionChain(r.Context(), symbol, expiration)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	contracts, err := analytics.Normalize(chain)
	if err != nil {
		return nil, "", err
	}
	return contracts, expiration, nil
}

func (s *Server) handleGEX(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	contracts, expiration, err := s.normalizedChain(r, symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}

	exposure := analytics.GEX(contracts)
	s.writeJSON(w, http.StatusOK, gexResponse{
		Symbol:     symbol,
		Expiration: expiration,
		Strikes:    exposure.Strikes,
		GexValues:  exposure.Values,
		TotalGex:   exposure.Total,
	})
}

func (s *Server) handleDEX(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	contracts, expiration, err := s.normalizedChain(r, symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}

	exposure := analytics.DEX(contracts)
	s.writeJSON(w, http.StatusOK, dexResponse{
		Symbol:     symbol,
		Expiration: expiration,
		Strikes:    exposure.Strikes,
		DexValues:  exposure.Values,
		TotalDex:   exposure.Total,
	})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, backtest.Catalog())
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	strategyID := chi.URLParam(r, "strategyID")
	q := r.URL.Query()

	symbol := q.Get("symbol")
	if symbol == "" {
		s.writeError(w, fmt.Errorf("%w: symbol query parameter is required", analytics.ErrInvalidRequest))
		return
	}

	initialCapital := float64(defaultInitialCapital)
	if raw := q.Get("initial_capital"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			s.writeError(w, fmt.Errorf("%w: initial_capital must be a positive number", analytics.ErrInvalidRequest))
			return
		}
		initialCapital = parsed
	}

	template, err := backtest.Lookup(strategyID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	startDate, endDate := q.Get("start_date"), q.Get("end_date")
	history, err := s.provider.GetHistory(r.Context(), symbol, "daily", startDate, endDate)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", ErrUpstream, err))
		return
	}

	result, err := backtest.Run(template, symbol, startDate, endDate, initialCapital, history.Days())
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.storage.SaveBacktestResult(r.Context(), result); err != nil {
		s.writeError(w, fmt.Errorf("saving backtest result: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBacktestResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.storage.ListBacktestResults(r.Context(), maxListResults)
	if err != nil {
		s.writeError(w, fmt.Errorf("listing backtest results: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleCalculatePnL(w http.ResponseWriter, r *http.Request) {
	var req analytics.PayoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: malformed JSON body", analytics.ErrInvalidRequest))
		return
	}

	result, err := analytics.ComputePayoff(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

type submitTradeRequest struct {
	StrategyID string                  `json:"strategy_id"`
	Symbol     string                  `json:"symbol"`
	Legs       []analytics.StrategyLeg `json:"legs"`
}

func (s *Server) handleSubmitTrade(w http.ResponseWriter, r *http.Request) {
	var req submitTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: malformed JSON body", analytics.ErrInvalidRequest))
		return
	}
	if req.StrategyID == "" || req.Symbol == "" || len(req.Legs) == 0 {
		s.writeError(w, fmt.Errorf("%w: strategy_id, symbol, and legs are required", analytics.ErrInvalidRequest))
		return
	}

	trade := &storage.Trade{
		ID:         uuid.New().String(),
		StrategyID: req.StrategyID,
		Symbol:     req.Symbol,
		Legs:       req.Legs,
		Status:     storage.TradeStatusSimulated,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.storage.SaveTrade(r.Context(), trade); err != nil {
		s.writeError(w, fmt.Errorf("saving trade: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.storage.ListTrades(r.Context(), maxListResults)
	if err != nil {
		s.writeError(w, fmt.Errorf("listing trades: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, trades)
}
