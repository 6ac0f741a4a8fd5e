package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	thresholderrors "arbiter/contexts/dispute-resolution/threshold-policy/domain/errors"
	thresholdhttp "arbiter/contexts/dispute-resolution/threshold-policy/transport/http"
)

func (s *Server) handleGetThresholds(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Thresholds.Handler.GetThresholdsHandler(r.Context())
	if err != nil {
		writeThresholdDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdateTiers godoc
// @Summary Replace the verdict threshold tier table
// @Tags thresholds
// @Param X-Admin-Id header string true "Acting administrator"
// @Router /api/v1/thresholds/tiers [put]
func (s *Server) handleUpdateTiers(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Admin-Id") == "" {
		writeThresholdError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}
	var req thresholdhttp.UpdateTiersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeThresholdError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Thresholds.Handler.UpdateTiersHandler(r.Context(), req)
	if err != nil {
		writeThresholdDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInvalidateThresholdCache(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Admin-Id") == "" {
		writeThresholdError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}
	s.modules.Thresholds.Handler.InvalidateCacheHandler(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func writeThresholdError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, thresholdhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeThresholdDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, thresholderrors.ErrInvalidTierTable):
		writeThresholdError(w, http.StatusBadRequest, "invalid_tier_table", err.Error())
	case errors.Is(err, thresholderrors.ErrNoMatchingTier):
		writeThresholdError(w, http.StatusInternalServerError, "no_matching_tier", err.Error())
	case errors.Is(err, thresholderrors.ErrTiersUnavailable):
		writeThresholdError(w, http.StatusServiceUnavailable, "tiers_unavailable", err.Error())
	default:
		writeThresholdError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
