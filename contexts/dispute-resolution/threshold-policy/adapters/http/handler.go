package httpadapter

import (
	"context"
	"log/slog"

	"arbiter/contexts/dispute-resolution/threshold-policy/application"
	"arbiter/contexts/dispute-resolution/threshold-policy/domain/entities"
	httptransport "arbiter/contexts/dispute-resolution/threshold-policy/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetThresholdsHandler(ctx context.Context) (httptransport.ThresholdsResponse, error) {
	thresholds, err := h.Service.CurrentThresholds(ctx)
	if err != nil {
		return httptransport.ThresholdsResponse{}, err
	}

	resp := httptransport.ThresholdsResponse{Status: "success"}
	resp.Data.Tier = thresholds.Tier
	resp.Data.MinVotesForVerdict = thresholds.MinVotesForVerdict
	resp.Data.VotingWindowDays = thresholds.VotingWindowDays
	resp.Data.ClearVerdictPct = thresholds.ClearVerdictPct
	resp.Data.Population = thresholds.Population
	resp.Data.Source = thresholds.Source
	return resp, nil
}

func (h Handler) UpdateTiersHandler(
	ctx context.Context,
	req httptransport.UpdateTiersRequest,
) (httptransport.UpdateTiersResponse, error) {
	tiers := make([]entities.ThresholdTier, 0, len(req.Tiers))
	for _, item := range req.Tiers {
		tiers = append(tiers, entities.ThresholdTier{
			Name:               item.Name,
			MinAgents:          item.MinAgents,
			MaxAgents:          item.MaxAgents,
			MinVotesForVerdict: item.MinVotesForVerdict,
			VotingWindowDays:   item.VotingWindowDays,
			ClearVerdictPct:    item.ClearVerdictPct,
		})
	}
	if err := h.Service.UpdateTiers(ctx, tiers); err != nil {
		return httptransport.UpdateTiersResponse{}, err
	}

	resp := httptransport.UpdateTiersResponse{Status: "success"}
	resp.Data.TierCount = len(tiers)
	return resp, nil
}

func (h Handler) InvalidateCacheHandler(_ context.Context) {
	h.Service.InvalidateCache()
}
