package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	application "arbiter/contexts/dispute-resolution/verdict-engine/application"
	"arbiter/contexts/dispute-resolution/verdict-engine/application/commands"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

// FinalizationSweepTask closes every active dilemma that has either run
// out its voting window or already gathered the minimum vote count.
type FinalizationSweepTask struct {
	Dilemmas   ports.DilemmaRepository
	Tallies    ports.TallyRepository
	Thresholds ports.ThresholdSource
	Finalize   commands.FinalizeUseCase
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (t FinalizationSweepTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	logger.Info("finalization sweep started",
		"event", "verdict_finalization_sweep_started",
		"module", "dispute-resolution/verdict-engine",
		"layer", "worker",
	)

	thresholds, err := t.Thresholds.CurrentThresholds(ctx)
	if err != nil {
		logger.Error("finalization sweep threshold lookup failed",
			"event", "verdict_finalization_sweep_thresholds_failed",
			"module", "dispute-resolution/verdict-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	active, err := t.Dilemmas.ListActiveDilemmas(ctx)
	if err != nil {
		logger.Error("finalization sweep listing failed",
			"event", "verdict_finalization_sweep_list_failed",
			"module", "dispute-resolution/verdict-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if t.Clock != nil {
		now = t.Clock.Now().UTC()
	}

	finalized := 0
	failed := 0
	for _, dilemma := range active {
		due, err := t.dueForFinalization(ctx, dilemma, thresholds, now)
		if err != nil {
			failed++
			logger.Error("finalization sweep tally lookup failed",
				"event", "verdict_finalization_sweep_tally_failed",
				"module", "dispute-resolution/verdict-engine",
				"layer", "worker",
				"dilemma_id", dilemma.DilemmaID,
				"error", err.Error(),
			)
			continue
		}
		if !due {
			continue
		}
		if _, err := t.Finalize.FinalizeDilemma(ctx, dilemma.DilemmaID); err != nil {
			failed++
			logger.Error("finalization sweep close failed",
				"event", "verdict_finalization_sweep_close_failed",
				"module", "dispute-resolution/verdict-engine",
				"layer", "worker",
				"dilemma_id", dilemma.DilemmaID,
				"error", err.Error(),
			)
			continue
		}
		finalized++
	}

	logger.Info("finalization sweep completed",
		"event", "verdict_finalization_sweep_completed",
		"module", "dispute-resolution/verdict-engine",
		"layer", "worker",
		"active_count", len(active),
		"finalized_count", finalized,
		"failed_count", failed,
	)
	if failed > 0 {
		return fmt.Errorf("finalization sweep failed for %d of %d dilemmas", failed, len(active))
	}
	return nil
}

// dueForFinalization is true once the window has elapsed, or earlier when
// the dilemma already carries the minimum vote count for its tier.
func (t FinalizationSweepTask) dueForFinalization(
	ctx context.Context,
	dilemma entities.Dilemma,
	thresholds ports.VerdictThresholds,
	now time.Time,
) (bool, error) {
	if now.After(dilemma.ClosesAt) {
		return true, nil
	}
	tallies, err := t.Tallies.ListTallies(ctx, dilemma.DilemmaID)
	if err != nil {
		return false, err
	}
	var totalVotes int64
	for _, tally := range tallies {
		totalVotes += tally.VoteCount
	}
	return totalVotes >= int64(thresholds.MinVotesForVerdict), nil
}
