package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"arbiter/contexts/trust-safety/fraud-engine/domain/entities"
	domainerrors "arbiter/contexts/trust-safety/fraud-engine/domain/errors"
	"arbiter/contexts/trust-safety/fraud-engine/ports"
)

// FraudAssessment is the outcome of one reported signal.
type FraudAssessment struct {
	AgentID       string
	EventType     entities.FraudEventType
	ScoreDelta    int64
	PreviousScore int64
	NewScore      int64
	Banned        bool
	NewlyBanned   bool
}

// Service accumulates fraud signals per agent. Scores only ever rise
// automatically; lowering one is an explicit administrative act.
type Service struct {
	Agents       ports.AgentRepository
	Events       ports.FraudEventRepository
	Fingerprints ports.FingerprintRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

// AddFraudEvent applies the fixed delta for the event type, appends the
// immutable audit row, and atomically bans the agent if the new score
// reaches the ceiling. Calling again on an already-banned agent records the
// event but does not re-ban.
func (s Service) AddFraudEvent(
	ctx context.Context,
	agentID string,
	eventType entities.FraudEventType,
	metadata map[string]any,
) (FraudAssessment, error) {
	logger := ResolveLogger(s.Logger)
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return FraudAssessment{}, domainerrors.ErrInvalidRequest
	}
	delta, known := entities.DeltaFor(eventType)
	if !known {
		logger.Warn("fraud event type rejected",
			"event", "fraud_event_type_rejected",
			"module", "trust-safety/fraud-engine",
			"layer", "application",
			"agent_id", agentID,
			"event_type", string(eventType),
		)
		return FraudAssessment{}, domainerrors.ErrUnknownEventType
	}

	now := s.now()
	banReason := fmt.Sprintf("fraud score ceiling reached via %s", eventType)
	update, err := s.Agents.ApplyFraudDelta(ctx, agentID, delta, banReason, now)
	if err != nil {
		return FraudAssessment{}, err
	}

	if err := s.appendEvent(ctx, entities.FraudEvent{
		AgentID:       agentID,
		EventType:     eventType,
		ScoreDelta:    delta,
		PreviousScore: update.PreviousScore,
		NewScore:      update.NewScore,
		Metadata:      metadata,
		OccurredAt:    now,
	}); err != nil {
		return FraudAssessment{}, err
	}

	if update.NewlyBanned {
		logger.Warn("agent auto-banned at fraud ceiling",
			"event", "fraud_agent_auto_banned",
			"module", "trust-safety/fraud-engine",
			"layer", "application",
			"agent_id", agentID,
			"event_type", string(eventType),
			"new_score", update.NewScore,
		)
	} else {
		logger.Info("fraud event recorded",
			"event", "fraud_event_recorded",
			"module", "trust-safety/fraud-engine",
			"layer", "application",
			"agent_id", agentID,
			"event_type", string(eventType),
			"score_delta", delta,
			"new_score", update.NewScore,
		)
	}

	return FraudAssessment{
		AgentID:       agentID,
		EventType:     eventType,
		ScoreDelta:    delta,
		PreviousScore: update.PreviousScore,
		NewScore:      update.NewScore,
		Banned:        update.Banned,
		NewlyBanned:   update.NewlyBanned,
	}, nil
}

// UnbanAgent lifts a suspension and resets the fraud score. This is the only
// operation that decreases a score, and it leaves a manual_reset audit row.
func (s Service) UnbanAgent(ctx context.Context, agentID string, resetScore int64) (entities.Agent, error) {
	logger := ResolveLogger(s.Logger)
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return entities.Agent{}, domainerrors.ErrInvalidRequest
	}
	if resetScore < 0 {
		return entities.Agent{}, domainerrors.ErrNegativeScore
	}

	agent, err := s.Agents.GetAgent(ctx, agentID)
	if err != nil {
		return entities.Agent{}, err
	}
	if !agent.Banned {
		return entities.Agent{}, domainerrors.ErrAgentNotBanned
	}

	now := s.now()
	update, err := s.Agents.ResetFraudState(ctx, agentID, resetScore, now)
	if err != nil {
		return entities.Agent{}, err
	}

	if err := s.appendEvent(ctx, entities.FraudEvent{
		AgentID:       agentID,
		EventType:     entities.EventManualReset,
		ScoreDelta:    update.NewScore - update.PreviousScore,
		PreviousScore: update.PreviousScore,
		NewScore:      update.NewScore,
		Metadata:      map[string]any{"reset_score": resetScore},
		OccurredAt:    now,
	}); err != nil {
		return entities.Agent{}, err
	}

	logger.Info("agent unbanned",
		"event", "fraud_agent_unbanned",
		"module", "trust-safety/fraud-engine",
		"layer", "application",
		"agent_id", agentID,
		"reset_score", resetScore,
	)
	return s.Agents.GetAgent(ctx, agentID)
}

// RecordFingerprint stores a device observation and raises a
// duplicate_device signal when the same hash is already bound to a
// different agent.
func (s Service) RecordFingerprint(ctx context.Context, agentID string, fingerprintHash string) error {
	agentID = strings.TrimSpace(agentID)
	fingerprintHash = strings.TrimSpace(fingerprintHash)
	if agentID == "" || fingerprintHash == "" {
		return domainerrors.ErrInvalidRequest
	}

	owners, err := s.Fingerprints.ListAgentsByHash(ctx, fingerprintHash)
	if err != nil {
		return err
	}

	fingerprintID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	if err := s.Fingerprints.SaveFingerprint(ctx, entities.DeviceFingerprint{
		FingerprintID:   fingerprintID,
		AgentID:         agentID,
		FingerprintHash: fingerprintHash,
		SeenAt:          s.now(),
	}); err != nil {
		return err
	}

	for _, owner := range owners {
		if strings.EqualFold(owner, agentID) {
			return nil
		}
	}
	if len(owners) == 0 {
		return nil
	}

	_, err = s.AddFraudEvent(ctx, agentID, entities.EventDuplicateDevice, map[string]any{
		"fingerprint_hash":  fingerprintHash,
		"prior_owner_count": len(owners),
	})
	return err
}

// EnforceBanCeiling bans any agent found at or over the ceiling without the
// banned flag set. This is a defense-in-depth sweep; the inline path in
// AddFraudEvent is the primary gate.
func (s Service) EnforceBanCeiling(ctx context.Context) (int, error) {
	logger := ResolveLogger(s.Logger)
	candidates, err := s.Agents.ListBanCandidates(ctx)
	if err != nil {
		return 0, err
	}

	banned := 0
	now := s.now()
	for _, agent := range candidates {
		update, err := s.Agents.ApplyFraudDelta(ctx, agent.AgentID, 0, "fraud score ceiling enforced by sweep", now)
		if err != nil {
			return banned, err
		}
		if !update.NewlyBanned {
			continue
		}
		if err := s.appendEvent(ctx, entities.FraudEvent{
			AgentID:       agent.AgentID,
			EventType:     entities.EventCeilingEnforced,
			ScoreDelta:    0,
			PreviousScore: update.PreviousScore,
			NewScore:      update.NewScore,
			OccurredAt:    now,
		}); err != nil {
			return banned, err
		}
		banned++
		logger.Warn("ban ceiling enforced",
			"event", "fraud_ban_ceiling_enforced",
			"module", "trust-safety/fraud-engine",
			"layer", "application",
			"agent_id", agent.AgentID,
			"fraud_score", update.NewScore,
		)
	}
	return banned, nil
}

// AgentStatus returns the agent row plus its recent audit trail.
func (s Service) AgentStatus(ctx context.Context, agentID string, eventLimit int) (entities.Agent, []entities.FraudEvent, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return entities.Agent{}, nil, domainerrors.ErrInvalidRequest
	}
	agent, err := s.Agents.GetAgent(ctx, agentID)
	if err != nil {
		return entities.Agent{}, nil, err
	}
	if eventLimit <= 0 {
		eventLimit = 20
	}
	events, err := s.Events.ListEventsByAgent(ctx, agentID, eventLimit)
	if err != nil {
		return entities.Agent{}, nil, err
	}
	return agent, events, nil
}

func (s Service) appendEvent(ctx context.Context, event entities.FraudEvent) error {
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	event.EventID = eventID
	return s.Events.AppendEvent(ctx, event)
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
