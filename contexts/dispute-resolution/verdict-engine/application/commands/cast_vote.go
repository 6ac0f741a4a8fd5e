package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "arbiter/contexts/dispute-resolution/verdict-engine/application"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

// CastVoteCommand is the write-model input for casting or changing a
// verdict vote.
type CastVoteCommand struct {
	DilemmaID      string
	VoterID        string
	Choice         string
	IdempotencyKey string
}

// CastVoteResult returns final vote state plus replay/update markers the
// transport layer maps to API semantics.
type CastVoteResult struct {
	Vote      entities.Vote
	Breakdown entities.WeightBreakdown
	Replayed  bool
	WasUpdate bool
}

// VoteUseCase orchestrates vote writes: idempotent replay, eligibility
// checks, cast-time weight snapshot, tally upkeep, and outbox emission.
type VoteUseCase struct {
	Dilemmas       ports.DilemmaRepository
	Votes          ports.VoteRepository
	Tallies        ports.TallyRepository
	Agents         ports.AgentDirectory
	Weight         application.WeightCalculator
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// CastVote creates or updates the voter's single vote on a dilemma. The
// method is replay-safe via idempotency key + request hash validation.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	dilemmaID := strings.TrimSpace(cmd.DilemmaID)
	voterID := strings.TrimSpace(cmd.VoterID)
	choice := strings.TrimSpace(cmd.Choice)
	if dilemmaID == "" || voterID == "" || choice == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return CastVoteResult{}, domainerrors.ErrIdempotencyKeyRequired
	}

	now := uc.now()
	requestHash := hashCastVoteCommand(cmd)
	if record, found, err := uc.Idempotency.Get(ctx, cmd.IdempotencyKey, now); err != nil {
		logger.Error("vote cast idempotency lookup failed",
			"event", "verdict_vote_cast_idempotency_lookup_failed",
			"module", "dispute-resolution/verdict-engine",
			"layer", "application",
			"dilemma_id", dilemmaID,
			"voter_id", voterID,
			"error", err.Error(),
		)
		return CastVoteResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			logger.Warn("vote cast idempotency conflict",
				"event", "verdict_vote_cast_idempotency_conflict",
				"module", "dispute-resolution/verdict-engine",
				"layer", "application",
				"dilemma_id", dilemmaID,
				"voter_id", voterID,
			)
			return CastVoteResult{}, domainerrors.ErrIdempotencyConflict
		}
		vote, err := uc.Votes.GetVote(ctx, record.VoteID)
		if err != nil {
			return CastVoteResult{}, err
		}
		logger.Info("vote cast replayed",
			"event", "verdict_vote_cast_replayed",
			"module", "dispute-resolution/verdict-engine",
			"layer", "application",
			"vote_id", vote.VoteID,
			"dilemma_id", dilemmaID,
			"voter_id", voterID,
		)
		return CastVoteResult{Vote: vote, Replayed: true}, nil
	}

	dilemma, err := uc.Dilemmas.GetDilemma(ctx, dilemmaID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if dilemma.Status != entities.StatusActive {
		return CastVoteResult{}, domainerrors.ErrDilemmaNotActive
	}
	if now.After(dilemma.ClosesAt) {
		return CastVoteResult{}, domainerrors.ErrVotingWindowClosed
	}
	if !entities.ValidChoice(dilemma.Category, choice) {
		return CastVoteResult{}, domainerrors.ErrInvalidChoice
	}
	if strings.EqualFold(strings.TrimSpace(dilemma.SubmitterID), voterID) {
		return CastVoteResult{}, domainerrors.ErrSelfJudgment
	}

	profile, err := uc.Agents.GetVoterProfile(ctx, voterID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if profile.Banned {
		return CastVoteResult{}, domainerrors.ErrVoterBanned
	}
	breakdown, err := uc.Weight.CalculateWeight(ctx, voterID)
	if err != nil {
		return CastVoteResult{}, err
	}

	existing, found, err := uc.Votes.GetVoteByIdentity(ctx, dilemmaID, voterID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if found {
		previousChoice := existing.Choice
		previousWeight := existing.Weight
		existing.Choice = choice
		existing.Weight = breakdown.Weight
		existing.UpdatedAt = now
		if err := uc.Votes.SaveVote(ctx, existing); err != nil {
			return CastVoteResult{}, err
		}
		if err := uc.Tallies.AdjustTally(ctx, dilemmaID, previousChoice, -1, -previousWeight, now); err != nil {
			return CastVoteResult{}, err
		}
		if err := uc.Tallies.AdjustTally(ctx, dilemmaID, choice, 1, breakdown.Weight, now); err != nil {
			return CastVoteResult{}, err
		}
		if err := uc.appendVoteEvent(ctx, "vote.changed", existing, now, map[string]any{
			"previous_choice": previousChoice,
		}); err != nil {
			return CastVoteResult{}, err
		}
		if err := uc.putIdempotency(ctx, cmd.IdempotencyKey, requestHash, existing.VoteID, now); err != nil {
			return CastVoteResult{}, err
		}
		logger.Info("vote changed",
			"event", "verdict_vote_changed",
			"module", "dispute-resolution/verdict-engine",
			"layer", "application",
			"vote_id", existing.VoteID,
			"dilemma_id", dilemmaID,
			"voter_id", voterID,
			"choice", choice,
			"weight", existing.Weight,
		)
		return CastVoteResult{Vote: existing, Breakdown: breakdown, WasUpdate: true}, nil
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	vote := entities.Vote{
		VoteID:    voteID,
		DilemmaID: dilemmaID,
		VoterID:   voterID,
		Choice:    choice,
		Weight:    breakdown.Weight,
		CastAt:    now,
		UpdatedAt: now,
	}
	if err := uc.Votes.SaveVote(ctx, vote); err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.Tallies.AdjustTally(ctx, dilemmaID, choice, 1, vote.Weight, now); err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.appendVoteEvent(ctx, "vote.cast", vote, now, nil); err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.putIdempotency(ctx, cmd.IdempotencyKey, requestHash, vote.VoteID, now); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "verdict_vote_cast",
		"module", "dispute-resolution/verdict-engine",
		"layer", "application",
		"vote_id", vote.VoteID,
		"dilemma_id", dilemmaID,
		"voter_id", voterID,
		"choice", choice,
		"weight", vote.Weight,
	)
	return CastVoteResult{Vote: vote, Breakdown: breakdown}, nil
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc VoteUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return uc.IdempotencyTTL
}

func (uc VoteUseCase) putIdempotency(ctx context.Context, key, requestHash, voteID string, now time.Time) error {
	return uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         strings.TrimSpace(key),
		RequestHash: requestHash,
		VoteID:      voteID,
		ExpiresAt:   now.Add(uc.resolveIdempotencyTTL()),
	})
}

func (uc VoteUseCase) appendVoteEvent(
	ctx context.Context,
	eventType string,
	vote entities.Vote,
	occurredAt time.Time,
	metadata map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as
	// no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"vote_id":     vote.VoteID,
		"dilemma_id":  vote.DilemmaID,
		"voter_id":    vote.VoterID,
		"choice":      vote.Choice,
		"weight":      vote.Weight,
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	for key, value := range metadata {
		payload[key] = value
	}
	return uc.Outbox.AppendOutbox(ctx, newVerdictEnvelope(eventID, eventType, vote.DilemmaID, occurredAt, payload))
}

func hashCastVoteCommand(cmd CastVoteCommand) string {
	payload := map[string]string{
		"dilemma_id": strings.TrimSpace(cmd.DilemmaID),
		"voter_id":   strings.TrimSpace(cmd.VoterID),
		"choice":     strings.TrimSpace(cmd.Choice),
		"op":         "cast_vote",
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
