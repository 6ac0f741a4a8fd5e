package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	frauderrors "arbiter/contexts/trust-safety/fraud-engine/domain/errors"
	fraudhttp "arbiter/contexts/trust-safety/fraud-engine/transport/http"
)

// handleReportFraudEvent godoc
// @Summary Append a fraud signal for an agent
// @Tags fraud
// @Router /api/v1/fraud/events [post]
func (s *Server) handleReportFraudEvent(w http.ResponseWriter, r *http.Request) {
	var req fraudhttp.ReportFraudEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFraudError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Fraud.Handler.ReportFraudEventHandler(r.Context(), req)
	if err != nil {
		writeFraudDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRecordFingerprint(w http.ResponseWriter, r *http.Request) {
	var req fraudhttp.RecordFingerprintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFraudError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Fraud.Handler.RecordFingerprintHandler(r.Context(), req)
	if err != nil {
		writeFraudDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleFraudAgentStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Fraud.Handler.AgentStatusHandler(r.Context(), r.PathValue("agent_id"))
	if err != nil {
		writeFraudDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUnbanAgent godoc
// @Summary Lift a ban and optionally reset the fraud score
// @Tags fraud
// @Param X-Admin-Id header string true "Acting administrator"
// @Router /api/v1/fraud/agents/{agent_id}/unban [post]
func (s *Server) handleUnbanAgent(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Admin-Id") == "" {
		writeFraudError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}
	var req fraudhttp.UnbanAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFraudError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Fraud.Handler.UnbanAgentHandler(r.Context(), r.PathValue("agent_id"), req)
	if err != nil {
		writeFraudDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeFraudError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, fraudhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeFraudDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, frauderrors.ErrAgentNotFound):
		writeFraudError(w, http.StatusNotFound, "agent_not_found", err.Error())
	case errors.Is(err, frauderrors.ErrUnknownEventType):
		writeFraudError(w, http.StatusBadRequest, "unknown_event_type", err.Error())
	case errors.Is(err, frauderrors.ErrAgentNotBanned):
		writeFraudError(w, http.StatusConflict, "agent_not_banned", err.Error())
	case errors.Is(err, frauderrors.ErrNegativeScore):
		writeFraudError(w, http.StatusBadRequest, "negative_score", err.Error())
	case errors.Is(err, frauderrors.ErrConflict):
		writeFraudError(w, http.StatusConflict, "fraud_conflict", err.Error())
	case errors.Is(err, frauderrors.ErrInvalidRequest):
		writeFraudError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeFraudError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
