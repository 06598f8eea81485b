package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"options-dashboard/internal/analytics"
	"options-dashboard/internal/backtest"
)

// ErrUpstream wraps market data provider failures so they map to 502.
var ErrUpstream = errors.New("upstream market data request failed")

// ErrNoExpirations is returned when a symbol has no option expirations.
var ErrNoExpirations = errors.New("no expirations found for symbol")

// errorResponse is the uniform error body for every failure.
type errorResponse struct {
	Error string `json:"error"`
}

// statusForError derives the HTTP status from the error kind. One
// discipline everywhere: validation 400, unknown strategy 404, empty or
// malformed upstream data 422, upstream fetch failure 502, anything
// unexpected 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, analytics.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, backtest.ErrStrategyNotFound):
		return http.StatusNotFound
	case errors.Is(err, analytics.ErrNoValidContracts),
		errors.Is(err, backtest.ErrNoHistoricalData),
		errors.Is(err, ErrNoExpirations):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
	} else {
		s.logger.WithError(err).Debug("request rejected")
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}
