package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	application "arbiter/contexts/dispute-resolution/verdict-engine/application"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

// TallyResyncTask rebuilds the denormalized tallies of every active
// dilemma from the vote ledger, repairing drift from partial writes.
type TallyResyncTask struct {
	Dilemmas ports.DilemmaRepository
	Votes    ports.VoteRepository
	Tallies  ports.TallyRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (t TallyResyncTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	logger.Info("tally resync started",
		"event", "verdict_tally_resync_started",
		"module", "dispute-resolution/verdict-engine",
		"layer", "worker",
	)

	active, err := t.Dilemmas.ListActiveDilemmas(ctx)
	if err != nil {
		logger.Error("tally resync listing failed",
			"event", "verdict_tally_resync_list_failed",
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

	failed := 0
	for _, dilemma := range active {
		if err := t.resyncDilemma(ctx, dilemma.DilemmaID, now); err != nil {
			failed++
			logger.Error("tally resync failed for dilemma",
				"event", "verdict_tally_resync_dilemma_failed",
				"module", "dispute-resolution/verdict-engine",
				"layer", "worker",
				"dilemma_id", dilemma.DilemmaID,
				"error", err.Error(),
			)
		}
	}

	logger.Info("tally resync completed",
		"event", "verdict_tally_resync_completed",
		"module", "dispute-resolution/verdict-engine",
		"layer", "worker",
		"active_count", len(active),
		"failed_count", failed,
	)
	if failed > 0 {
		return fmt.Errorf("tally resync failed for %d of %d dilemmas", failed, len(active))
	}
	return nil
}

func (t TallyResyncTask) resyncDilemma(ctx context.Context, dilemmaID string, now time.Time) error {
	votes, err := t.Votes.ListVotesByDilemma(ctx, dilemmaID)
	if err != nil {
		return err
	}
	byChoice := make(map[string]entities.Tally)
	for _, vote := range votes {
		tally := byChoice[vote.Choice]
		tally.DilemmaID = dilemmaID
		tally.Choice = vote.Choice
		tally.VoteCount++
		tally.WeightedTotal += vote.Weight
		tally.UpdatedAt = now
		byChoice[vote.Choice] = tally
	}
	tallies := make([]entities.Tally, 0, len(byChoice))
	for _, tally := range byChoice {
		tallies = append(tallies, tally)
	}
	return t.Tallies.ReplaceTallies(ctx, dilemmaID, tallies, now)
}
