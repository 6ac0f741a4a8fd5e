package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	verdicterrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	verdicthttp "arbiter/contexts/dispute-resolution/verdict-engine/transport/http"
)

// handleCreateDilemma godoc
// @Summary Open a new dilemma for community judgment
// @Tags dilemmas
// @Param X-Agent-Id header string true "Submitting agent"
// @Router /api/v1/dilemmas [post]
func (s *Server) handleCreateDilemma(w http.ResponseWriter, r *http.Request) {
	agentID := r.Header.Get("X-Agent-Id")
	if agentID == "" {
		writeVerdictError(w, http.StatusUnauthorized, "missing_agent", "X-Agent-Id header is required")
		return
	}
	var req verdicthttp.CreateDilemmaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVerdictError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Verdicts.Handler.CreateDilemmaHandler(r.Context(), agentID, req)
	if err != nil {
		writeVerdictDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetDilemma(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Verdicts.Handler.GetDilemmaHandler(r.Context(), r.PathValue("dilemma_id"))
	if err != nil {
		writeVerdictDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCastVote godoc
// @Summary Cast or change a blind verdict vote
// @Tags dilemmas
// @Param X-Agent-Id header string true "Voting agent"
// @Param Idempotency-Key header string true "Client idempotency key"
// @Router /api/v1/dilemmas/{dilemma_id}/votes [post]
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	agentID := r.Header.Get("X-Agent-Id")
	if agentID == "" {
		writeVerdictError(w, http.StatusUnauthorized, "missing_agent", "X-Agent-Id header is required")
		return
	}
	idempotencyKey := r.Header.Get("Idempotency-Key")
	var req verdicthttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVerdictError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Verdicts.Handler.CastVoteHandler(r.Context(), r.PathValue("dilemma_id"), agentID, idempotencyKey, req)
	if err != nil {
		writeVerdictDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed || resp.WasUpdate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleFinalizeDilemma(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Admin-Id") == "" {
		writeVerdictError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}
	resp, err := s.modules.Verdicts.Handler.FinalizeDilemmaHandler(r.Context(), r.PathValue("dilemma_id"))
	if err != nil {
		writeVerdictDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteWeight(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Verdicts.Handler.VoteWeightHandler(r.Context(), r.PathValue("agent_id"))
	if err != nil {
		writeVerdictDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeVerdictError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, verdicthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeVerdictDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, verdicterrors.ErrDilemmaNotFound):
		writeVerdictError(w, http.StatusNotFound, "dilemma_not_found", err.Error())
	case errors.Is(err, verdicterrors.ErrVoteNotFound):
		writeVerdictError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, verdicterrors.ErrVoterNotFound):
		writeVerdictError(w, http.StatusNotFound, "voter_not_found", err.Error())
	case errors.Is(err, verdicterrors.ErrDilemmaNotActive):
		writeVerdictError(w, http.StatusConflict, "dilemma_not_active", err.Error())
	case errors.Is(err, verdicterrors.ErrDilemmaClosed):
		writeVerdictError(w, http.StatusConflict, "dilemma_closed", err.Error())
	case errors.Is(err, verdicterrors.ErrVotingWindowClosed):
		writeVerdictError(w, http.StatusConflict, "voting_window_closed", err.Error())
	case errors.Is(err, verdicterrors.ErrIdempotencyConflict):
		writeVerdictError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, verdicterrors.ErrConflict):
		writeVerdictError(w, http.StatusConflict, "verdict_conflict", err.Error())
	case errors.Is(err, verdicterrors.ErrSelfJudgment):
		writeVerdictError(w, http.StatusForbidden, "self_judgment", err.Error())
	case errors.Is(err, verdicterrors.ErrVoterBanned):
		writeVerdictError(w, http.StatusForbidden, "voter_banned", err.Error())
	case errors.Is(err, verdicterrors.ErrInvalidChoice):
		writeVerdictError(w, http.StatusBadRequest, "invalid_choice", err.Error())
	case errors.Is(err, verdicterrors.ErrIdempotencyKeyRequired):
		writeVerdictError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, verdicterrors.ErrInvalidVoteInput):
		writeVerdictError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeVerdictError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
