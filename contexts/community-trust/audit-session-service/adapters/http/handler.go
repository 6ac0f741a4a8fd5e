package httpadapter

import (
	"context"
	"log/slog"

	"arbiter/contexts/community-trust/audit-session-service/application"
	"arbiter/contexts/community-trust/audit-session-service/domain/entities"
	httptransport "arbiter/contexts/community-trust/audit-session-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) StartSessionHandler(
	ctx context.Context,
	req httptransport.StartSessionRequest,
) (httptransport.SessionResponse, error) {
	questions := make([]entities.Question, 0, len(req.Questions))
	for _, item := range req.Questions {
		questions = append(questions, entities.Question{
			QuestionID:  item.QuestionID,
			Prompt:      item.Prompt,
			Choices:     item.Choices,
			AnswerIndex: item.AnswerIndex,
		})
	}
	session, err := h.Service.StartSession(ctx, req.AgentID, questions)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return toResponse(session), nil
}

func (h Handler) CompleteSessionHandler(
	ctx context.Context,
	sessionID string,
	req httptransport.CompleteSessionRequest,
) (httptransport.SessionResponse, error) {
	session, err := h.Service.CompleteSession(ctx, sessionID, req.Answers)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return toResponse(session), nil
}

func (h Handler) GetSessionHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.Service.GetSession(ctx, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return toResponse(session), nil
}

func toResponse(session entities.AuditSession) httptransport.SessionResponse {
	resp := httptransport.SessionResponse{Status: "success"}
	resp.Data.SessionID = session.SessionID
	resp.Data.AgentID = session.AgentID
	resp.Data.State = string(session.Status)
	resp.Data.Score = session.Score
	resp.Data.Passed = session.Passed
	resp.Data.ExpiresAt = session.ExpiresAt
	resp.Data.Questions = make([]httptransport.QuestionDTO, 0, len(session.Questions))
	for _, question := range session.Questions {
		resp.Data.Questions = append(resp.Data.Questions, httptransport.QuestionDTO{
			QuestionID: question.QuestionID,
			Prompt:     question.Prompt,
			Choices:    question.Choices,
		})
	}
	return resp
}
