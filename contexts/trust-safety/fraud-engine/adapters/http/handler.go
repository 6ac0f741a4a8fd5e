package httpadapter

import (
	"context"
	"log/slog"

	"arbiter/contexts/trust-safety/fraud-engine/application"
	"arbiter/contexts/trust-safety/fraud-engine/domain/entities"
	httptransport "arbiter/contexts/trust-safety/fraud-engine/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ReportFraudEventHandler(
	ctx context.Context,
	req httptransport.ReportFraudEventRequest,
) (httptransport.ReportFraudEventResponse, error) {
	assessment, err := h.Service.AddFraudEvent(
		ctx,
		req.AgentID,
		entities.FraudEventType(req.EventType),
		req.Metadata,
	)
	if err != nil {
		return httptransport.ReportFraudEventResponse{}, err
	}

	resp := httptransport.ReportFraudEventResponse{Status: "success"}
	resp.Data.AgentID = assessment.AgentID
	resp.Data.EventType = string(assessment.EventType)
	resp.Data.ScoreDelta = assessment.ScoreDelta
	resp.Data.PreviousScore = assessment.PreviousScore
	resp.Data.NewScore = assessment.NewScore
	resp.Data.Banned = assessment.Banned
	resp.Data.NewlyBanned = assessment.NewlyBanned
	return resp, nil
}

func (h Handler) RecordFingerprintHandler(
	ctx context.Context,
	req httptransport.RecordFingerprintRequest,
) (httptransport.RecordFingerprintResponse, error) {
	if err := h.Service.RecordFingerprint(ctx, req.AgentID, req.FingerprintHash); err != nil {
		return httptransport.RecordFingerprintResponse{}, err
	}
	return httptransport.RecordFingerprintResponse{Status: "success"}, nil
}

func (h Handler) UnbanAgentHandler(
	ctx context.Context,
	agentID string,
	req httptransport.UnbanAgentRequest,
) (httptransport.AgentStatusResponse, error) {
	if _, err := h.Service.UnbanAgent(ctx, agentID, req.ResetScore); err != nil {
		return httptransport.AgentStatusResponse{}, err
	}
	return h.AgentStatusHandler(ctx, agentID)
}

func (h Handler) AgentStatusHandler(ctx context.Context, agentID string) (httptransport.AgentStatusResponse, error) {
	agent, events, err := h.Service.AgentStatus(ctx, agentID, 20)
	if err != nil {
		return httptransport.AgentStatusResponse{}, err
	}

	resp := httptransport.AgentStatusResponse{Status: "success"}
	resp.Data.AgentID = agent.AgentID
	resp.Data.FraudScore = agent.FraudScore
	resp.Data.Banned = agent.Banned
	resp.Data.BanReason = agent.BanReason
	resp.Data.BannedAt = agent.BannedAt
	resp.Data.VisibilityMode = string(agent.VisibilityMode)
	resp.Data.RecentEvents = make([]httptransport.FraudEventDTO, 0, len(events))
	for _, event := range events {
		resp.Data.RecentEvents = append(resp.Data.RecentEvents, httptransport.FraudEventDTO{
			EventID:       event.EventID,
			EventType:     string(event.EventType),
			ScoreDelta:    event.ScoreDelta,
			PreviousScore: event.PreviousScore,
			NewScore:      event.NewScore,
			Metadata:      event.Metadata,
			OccurredAt:    event.OccurredAt,
		})
	}
	return resp, nil
}
