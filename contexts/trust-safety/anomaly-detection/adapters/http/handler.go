package httpadapter

import (
	"context"
	"log/slog"

	"arbiter/contexts/trust-safety/anomaly-detection/application"
	httptransport "arbiter/contexts/trust-safety/anomaly-detection/transport/http"
)

type Handler struct {
	Correlation application.CorrelationDetector
	Logger      *slog.Logger
}

func (h Handler) ListCorrelationFlagsHandler(ctx context.Context, limit int) (httptransport.CorrelationFlagsResponse, error) {
	flags, err := h.Correlation.ListFlags(ctx, limit)
	if err != nil {
		return httptransport.CorrelationFlagsResponse{}, err
	}

	resp := httptransport.CorrelationFlagsResponse{Status: "success"}
	resp.Data.Flags = make([]httptransport.CorrelationFlagDTO, 0, len(flags))
	for _, flag := range flags {
		resp.Data.Flags = append(resp.Data.Flags, httptransport.CorrelationFlagDTO{
			FlagID:             flag.FlagID,
			AgentIDA:           flag.AgentIDA,
			AgentIDB:           flag.AgentIDB,
			CorrelationScore:   flag.CorrelationScore,
			SharedDilemmaCount: flag.SharedDilemmaCount,
			IdenticalVoteCount: flag.IdenticalVoteCount,
			FlaggedAt:          flag.FlaggedAt,
		})
	}
	return resp, nil
}
