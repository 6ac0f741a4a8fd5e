package httpadapter

import (
	"context"
	"log/slog"

	"arbiter/contexts/community-trust/integrity-service/application"
	httptransport "arbiter/contexts/community-trust/integrity-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// GetIntegrityHandler resolves an agent's score. includeHidden comes from
// the transport layer's moderator check and lets internal callers read
// ghost-mode agents.
func (h Handler) GetIntegrityHandler(ctx context.Context, agentID string, includeHidden bool) (httptransport.IntegrityResponse, error) {
	score, err := h.Service.GetIntegrity(ctx, agentID, includeHidden)
	if err != nil {
		return httptransport.IntegrityResponse{}, err
	}

	resp := httptransport.IntegrityResponse{Status: "success"}
	resp.Data.AgentID = score.AgentID
	resp.Data.RawScore = score.RawScore
	resp.Data.DisplayScore = score.DisplayScore
	resp.Data.Confidence = string(score.Confidence)
	resp.Data.Trend = string(score.Trend)
	resp.Data.EligibleDilemmas = score.EligibleDilemmas
	resp.Data.ComputedAt = score.ComputedAt
	return resp, nil
}
