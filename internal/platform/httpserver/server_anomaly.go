package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	anomalyerrors "arbiter/contexts/trust-safety/anomaly-detection/domain/errors"
	anomalyhttp "arbiter/contexts/trust-safety/anomaly-detection/transport/http"
)

// handleListCorrelationFlags godoc
// @Summary List advisory vote-correlation flags for moderator review
// @Tags anomaly
// @Param X-Moderator-Id header string true "Reviewing moderator"
// @Router /api/v1/anomaly/correlation-flags [get]
func (s *Server) handleListCorrelationFlags(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Moderator-Id") == "" {
		writeAnomalyError(w, http.StatusUnauthorized, "missing_moderator", "X-Moderator-Id header is required")
		return
	}
	limit := 0
	if limitRaw := r.URL.Query().Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil || parsed <= 0 {
			writeAnomalyError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	resp, err := s.modules.Anomaly.Handler.ListCorrelationFlagsHandler(r.Context(), limit)
	if err != nil {
		writeAnomalyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAnomalyError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, anomalyhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAnomalyDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, anomalyerrors.ErrSelfComparison):
		writeAnomalyError(w, http.StatusBadRequest, "self_comparison", err.Error())
	case errors.Is(err, anomalyerrors.ErrInvalidRequest):
		writeAnomalyError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeAnomalyError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
