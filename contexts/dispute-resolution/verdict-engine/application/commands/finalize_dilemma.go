package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "arbiter/contexts/dispute-resolution/verdict-engine/application"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

// FinalizeResult is the outcome of closing one dilemma.
type FinalizeResult struct {
	DilemmaID     string
	FinalVerdict  string
	VerdictDetail string
	TotalVotes    int64
	TotalWeight   float64
}

// FinalizeUseCase closes dilemmas and derives the final verdict from the
// weighted tallies. Percentages are weighted, never head counts.
type FinalizeUseCase struct {
	Dilemmas   ports.DilemmaRepository
	Tallies    ports.TallyRepository
	Thresholds ports.ThresholdSource
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// FinalizeDilemma computes the verdict for an active dilemma and closes
// it. A bucket must carry at least the clear-verdict share of the total
// weight to win; otherwise the outcome is a split.
func (uc FinalizeUseCase) FinalizeDilemma(ctx context.Context, dilemmaID string) (FinalizeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	dilemmaID = strings.TrimSpace(dilemmaID)
	if dilemmaID == "" {
		return FinalizeResult{}, domainerrors.ErrInvalidVoteInput
	}

	dilemma, err := uc.Dilemmas.GetDilemma(ctx, dilemmaID)
	if err != nil {
		return FinalizeResult{}, err
	}
	if dilemma.Status == entities.StatusClosed {
		return FinalizeResult{}, domainerrors.ErrDilemmaClosed
	}
	if dilemma.Status != entities.StatusActive {
		return FinalizeResult{}, domainerrors.ErrDilemmaNotActive
	}

	thresholds, err := uc.Thresholds.CurrentThresholds(ctx)
	if err != nil {
		return FinalizeResult{}, err
	}
	tallies, err := uc.Tallies.ListTallies(ctx, dilemmaID)
	if err != nil {
		return FinalizeResult{}, err
	}

	verdict, detail, totalVotes, totalWeight := deriveVerdict(tallies, thresholds.ClearVerdictPct)

	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	if err := uc.Dilemmas.CloseDilemma(ctx, dilemmaID, verdict, detail, now); err != nil {
		return FinalizeResult{}, err
	}
	if uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return FinalizeResult{}, err
		}
		envelope := newVerdictEnvelope(eventID, "dilemma.finalized", dilemmaID, now, map[string]any{
			"dilemma_id":     dilemmaID,
			"final_verdict":  verdict,
			"verdict_detail": detail,
			"total_votes":    totalVotes,
			"total_weight":   totalWeight,
		})
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return FinalizeResult{}, err
		}
	}

	logger.Info("dilemma finalized",
		"event", "verdict_dilemma_finalized",
		"module", "dispute-resolution/verdict-engine",
		"layer", "application",
		"dilemma_id", dilemmaID,
		"final_verdict", verdict,
		"total_votes", totalVotes,
		"total_weight", totalWeight,
	)
	return FinalizeResult{
		DilemmaID:     dilemmaID,
		FinalVerdict:  verdict,
		VerdictDetail: detail,
		TotalVotes:    totalVotes,
		TotalWeight:   totalWeight,
	}, nil
}

// deriveVerdict picks the winning bucket by weighted share. Ties and
// near-misses fall to a split with the leading share named so readers
// can see how close the community came.
func deriveVerdict(tallies []entities.Tally, clearVerdictPct float64) (string, string, int64, float64) {
	var totalVotes int64
	var totalWeight float64
	for _, tally := range tallies {
		totalVotes += tally.VoteCount
		totalWeight += tally.WeightedTotal
	}
	if totalVotes == 0 || totalWeight <= 0 {
		return entities.VerdictSplit, "no votes cast before the voting window closed", 0, 0
	}

	sorted := make([]entities.Tally, len(tallies))
	copy(sorted, tallies)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].WeightedTotal != sorted[j].WeightedTotal {
			return sorted[i].WeightedTotal > sorted[j].WeightedTotal
		}
		return sorted[i].Choice < sorted[j].Choice
	})

	leader := sorted[0]
	leaderPct := 100 * leader.WeightedTotal / totalWeight
	if leaderPct >= clearVerdictPct {
		detail := fmt.Sprintf("%s carried %.1f%% of the weighted vote (threshold %.1f%%)",
			leader.Choice, leaderPct, clearVerdictPct)
		return leader.Choice, detail, totalVotes, totalWeight
	}
	detail := fmt.Sprintf("no consensus: leading choice %s reached %.1f%% of the weighted vote, under the %.1f%% threshold",
		leader.Choice, leaderPct, clearVerdictPct)
	return entities.VerdictSplit, detail, totalVotes, totalWeight
}
