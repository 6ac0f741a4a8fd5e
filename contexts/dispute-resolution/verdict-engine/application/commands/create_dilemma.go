package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "arbiter/contexts/dispute-resolution/verdict-engine/application"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

type CreateDilemmaCommand struct {
	SubmitterID string
	Category    string
	Hidden      bool
}

// DilemmaUseCase opens new dilemmas with a voting window sized from the
// current population-tier thresholds.
type DilemmaUseCase struct {
	Dilemmas   ports.DilemmaRepository
	Thresholds ports.ThresholdSource
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc DilemmaUseCase) CreateDilemma(ctx context.Context, cmd CreateDilemmaCommand) (entities.Dilemma, error) {
	logger := application.ResolveLogger(uc.Logger)
	submitterID := strings.TrimSpace(cmd.SubmitterID)
	if submitterID == "" {
		return entities.Dilemma{}, domainerrors.ErrInvalidVoteInput
	}
	category := entities.DilemmaCategory(strings.TrimSpace(string(cmd.Category)))
	if category == "" {
		category = entities.CategoryStandard
	}
	if category != entities.CategoryStandard && category != entities.CategoryRelationship {
		return entities.Dilemma{}, domainerrors.ErrInvalidVoteInput
	}

	thresholds, err := uc.Thresholds.CurrentThresholds(ctx)
	if err != nil {
		return entities.Dilemma{}, err
	}
	dilemmaID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Dilemma{}, err
	}

	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	dilemma := entities.Dilemma{
		DilemmaID:   dilemmaID,
		SubmitterID: submitterID,
		Category:    category,
		Status:      entities.StatusActive,
		Hidden:      cmd.Hidden,
		ClosesAt:    now.Add(time.Duration(thresholds.VotingWindowDays) * 24 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Dilemmas.CreateDilemma(ctx, dilemma); err != nil {
		return entities.Dilemma{}, err
	}
	if uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Dilemma{}, err
		}
		envelope := newVerdictEnvelope(eventID, "dilemma.opened", dilemma.DilemmaID, now, map[string]any{
			"dilemma_id":   dilemma.DilemmaID,
			"submitter_id": dilemma.SubmitterID,
			"category":     string(dilemma.Category),
			"closes_at":    dilemma.ClosesAt.Format(time.RFC3339),
		})
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return entities.Dilemma{}, err
		}
	}

	logger.Info("dilemma opened",
		"event", "verdict_dilemma_opened",
		"module", "dispute-resolution/verdict-engine",
		"layer", "application",
		"dilemma_id", dilemma.DilemmaID,
		"submitter_id", submitterID,
		"category", string(category),
		"closes_at", dilemma.ClosesAt,
	)
	return dilemma, nil
}
