package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	auditerrors "arbiter/contexts/community-trust/audit-session-service/domain/errors"
	audithttp "arbiter/contexts/community-trust/audit-session-service/transport/http"
)

// handleStartAuditSession godoc
// @Summary Open a time-boxed master audit session
// @Tags audit-sessions
// @Router /api/v1/audit-sessions [post]
func (s *Server) handleStartAuditSession(w http.ResponseWriter, r *http.Request) {
	var req audithttp.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuditError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Audit.Handler.StartSessionHandler(r.Context(), req)
	if err != nil {
		writeAuditDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAuditSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Audit.Handler.GetSessionHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeAuditDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteAuditSession(w http.ResponseWriter, r *http.Request) {
	var req audithttp.CompleteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuditError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Audit.Handler.CompleteSessionHandler(r.Context(), r.PathValue("session_id"), req)
	if err != nil {
		writeAuditDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAuditError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, audithttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAuditDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auditerrors.ErrSessionNotFound):
		writeAuditError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, auditerrors.ErrSessionTerminal):
		writeAuditError(w, http.StatusConflict, "session_terminal", err.Error())
	case errors.Is(err, auditerrors.ErrNoQuestions):
		writeAuditError(w, http.StatusBadRequest, "no_questions", err.Error())
	case errors.Is(err, auditerrors.ErrInvalidRequest):
		writeAuditError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeAuditError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
