package httpserver

import (
	"errors"
	"net/http"

	integrityerrors "arbiter/contexts/community-trust/integrity-service/domain/errors"
	integrityhttp "arbiter/contexts/community-trust/integrity-service/transport/http"
)

// handleGetIntegrity godoc
// @Summary Read an agent's displayed integrity score
// @Tags integrity
// @Param X-Moderator-Id header string false "Moderators can read ghost-mode scores"
// @Router /api/v1/agents/{agent_id}/integrity [get]
func (s *Server) handleGetIntegrity(w http.ResponseWriter, r *http.Request) {
	includeHidden := r.Header.Get("X-Moderator-Id") != ""
	resp, err := s.modules.Integrity.Handler.GetIntegrityHandler(r.Context(), r.PathValue("agent_id"), includeHidden)
	if err != nil {
		writeIntegrityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeIntegrityError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, integrityhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeIntegrityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, integrityerrors.ErrAgentNotFound):
		writeIntegrityError(w, http.StatusNotFound, "agent_not_found", err.Error())
	// Ghost-mode scores read as absent to the public, not as forbidden.
	case errors.Is(err, integrityerrors.ErrScoreHidden):
		writeIntegrityError(w, http.StatusNotFound, "score_hidden", err.Error())
	case errors.Is(err, integrityerrors.ErrInvalidRequest):
		writeIntegrityError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeIntegrityError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
