package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"arbiter/contexts/dispute-resolution/verdict-engine/application/commands"
	"arbiter/contexts/dispute-resolution/verdict-engine/application/queries"
	httptransport "arbiter/contexts/dispute-resolution/verdict-engine/transport/http"
)

type Handler struct {
	Dilemmas commands.DilemmaUseCase
	Votes    commands.VoteUseCase
	Finalize commands.FinalizeUseCase
	Queries  queries.DilemmaQueryUseCase
	Logger   *slog.Logger
}

func (h Handler) CreateDilemmaHandler(
	ctx context.Context,
	submitterID string,
	req httptransport.CreateDilemmaRequest,
) (httptransport.DilemmaResponse, error) {
	dilemma, err := h.Dilemmas.CreateDilemma(ctx, commands.CreateDilemmaCommand{
		SubmitterID: submitterID,
		Category:    req.Category,
		Hidden:      req.Hidden,
	})
	if err != nil {
		return httptransport.DilemmaResponse{}, err
	}
	return httptransport.DilemmaResponse{
		DilemmaID:   dilemma.DilemmaID,
		SubmitterID: dilemma.SubmitterID,
		Category:    string(dilemma.Category),
		Status:      string(dilemma.Status),
		Hidden:      dilemma.Hidden,
		ClosesAt:    dilemma.ClosesAt.Format(time.RFC3339),
	}, nil
}

func (h Handler) GetDilemmaHandler(ctx context.Context, dilemmaID string) (httptransport.DilemmaResponse, error) {
	view, err := h.Queries.GetDilemma(ctx, dilemmaID)
	if err != nil {
		return httptransport.DilemmaResponse{}, err
	}
	resp := httptransport.DilemmaResponse{
		DilemmaID:     view.Dilemma.DilemmaID,
		SubmitterID:   view.Dilemma.SubmitterID,
		Category:      string(view.Dilemma.Category),
		Status:        string(view.Dilemma.Status),
		Hidden:        view.Dilemma.Hidden,
		ClosesAt:      view.Dilemma.ClosesAt.Format(time.RFC3339),
		FinalVerdict:  view.Dilemma.FinalVerdict,
		VerdictDetail: view.Dilemma.VerdictDetail,
		TotalVotes:    view.TotalVotes,
		TotalWeight:   view.TotalWeight,
	}
	for _, tally := range view.Tallies {
		resp.Tallies = append(resp.Tallies, httptransport.TallyDTO{
			Choice:        tally.Choice,
			VoteCount:     tally.VoteCount,
			WeightedTotal: tally.WeightedTotal,
			WeightedPct:   tally.WeightedPct,
		})
	}
	return resp, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	dilemmaID string,
	voterID string,
	idempotencyKey string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		DilemmaID:      dilemmaID,
		VoterID:        voterID,
		Choice:         req.Choice,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		VoteID:    result.Vote.VoteID,
		DilemmaID: result.Vote.DilemmaID,
		VoterID:   result.Vote.VoterID,
		Choice:    result.Vote.Choice,
		Weight:    result.Vote.Weight,
		Replayed:  result.Replayed,
		WasUpdate: result.WasUpdate,
	}, nil
}

func (h Handler) VoteWeightHandler(ctx context.Context, voterID string) (httptransport.VoteWeightResponse, error) {
	breakdown, err := h.Queries.VoteWeight(ctx, voterID)
	if err != nil {
		return httptransport.VoteWeightResponse{}, err
	}
	return httptransport.VoteWeightResponse{
		VoterID:            breakdown.VoterID,
		BaseFactor:         breakdown.BaseFactor,
		AgeFactor:          breakdown.AgeFactor,
		VerificationFactor: breakdown.VerificationFactor,
		ConsistencyFactor:  breakdown.ConsistencyFactor,
		FraudPenalty:       breakdown.FraudPenalty,
		Weight:             breakdown.Weight,
	}, nil
}

func (h Handler) FinalizeDilemmaHandler(ctx context.Context, dilemmaID string) (httptransport.FinalizeResponse, error) {
	result, err := h.Finalize.FinalizeDilemma(ctx, dilemmaID)
	if err != nil {
		return httptransport.FinalizeResponse{}, err
	}
	return httptransport.FinalizeResponse{
		DilemmaID:     result.DilemmaID,
		FinalVerdict:  result.FinalVerdict,
		VerdictDetail: result.VerdictDetail,
		TotalVotes:    result.TotalVotes,
		TotalWeight:   result.TotalWeight,
	}, nil
}
