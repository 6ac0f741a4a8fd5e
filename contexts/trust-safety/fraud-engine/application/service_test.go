package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"arbiter/contexts/trust-safety/fraud-engine/adapters/memory"
	"arbiter/contexts/trust-safety/fraud-engine/application"
	"arbiter/contexts/trust-safety/fraud-engine/domain/entities"
	domainerrors "arbiter/contexts/trust-safety/fraud-engine/domain/errors"
)

// fixedClock steps one second per read so audit rows get distinct
// timestamps.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newService(t *testing.T) (application.Service, *memory.Store, *fixedClock) {
	t.Helper()
	store := memory.NewStore()
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	service := application.Service{
		Agents:       store,
		Events:       store,
		Fingerprints: store,
		Clock:        clock,
		IDGen:        store,
	}
	return service, store, clock
}

func seedAgent(store *memory.Store, agentID string) {
	store.PutAgent(entities.Agent{
		AgentID:          agentID,
		CreatedAt:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		SubscriptionTier: entities.TierFree,
		VisibilityMode:   entities.VisibilityPublic,
	})
}

func TestAddFraudEventAccumulatesAndAutoBans(t *testing.T) {
	service, store, _ := newService(t)
	seedAgent(store, "agent-1")
	ctx := context.Background()

	first, err := service.AddFraudEvent(ctx, "agent-1", entities.EventVotePatternMatch, nil)
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	if first.NewScore != 30 || first.Banned {
		t.Fatalf("expected score 30 unbanned, got score %d banned=%v", first.NewScore, first.Banned)
	}

	second, err := service.AddFraudEvent(ctx, "agent-1", entities.EventVotePatternMatch, nil)
	if err != nil {
		t.Fatalf("second event: %v", err)
	}
	if second.NewScore != 60 || second.Banned {
		t.Fatalf("expected score 60 unbanned, got score %d banned=%v", second.NewScore, second.Banned)
	}

	third, err := service.AddFraudEvent(ctx, "agent-1", entities.EventDuplicateDevice, nil)
	if err != nil {
		t.Fatalf("third event: %v", err)
	}
	if third.NewScore != 80 || !third.Banned || !third.NewlyBanned {
		t.Fatalf("expected auto-ban at 80, got %+v", third)
	}

	agent, err := store.GetAgent(ctx, "agent-1")
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if !agent.Banned || agent.BannedAt == nil || agent.BanReason == "" {
		t.Fatalf("ban fields not persisted: %+v", agent)
	}
}

func TestAddFraudEventOnBannedAgentRecordsWithoutReban(t *testing.T) {
	service, store, _ := newService(t)
	seedAgent(store, "agent-1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := service.AddFraudEvent(ctx, "agent-1", entities.EventVotePatternMatch, nil); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}

	result, err := service.AddFraudEvent(ctx, "agent-1", entities.EventRapidVote, nil)
	if err != nil {
		t.Fatalf("event on banned agent: %v", err)
	}
	if !result.Banned || result.NewlyBanned {
		t.Fatalf("expected banned but not newly banned, got %+v", result)
	}
	if result.NewScore != 95 {
		t.Fatalf("score must keep accumulating past the ceiling, got %d", result.NewScore)
	}

	_, events, err := service.AgentStatus(ctx, "agent-1", 50)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 audit rows, got %d", len(events))
	}
}

func TestAddFraudEventRejectsUnknownType(t *testing.T) {
	service, store, _ := newService(t)
	seedAgent(store, "agent-1")

	_, err := service.AddFraudEvent(context.Background(), "agent-1", "made_up_signal", nil)
	if !errors.Is(err, domainerrors.ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}

	_, events, err := service.AgentStatus(context.Background(), "agent-1", 10)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("rejected event must not leave an audit row, got %d", len(events))
	}
}

func TestAddFraudEventUnknownAgent(t *testing.T) {
	service, _, _ := newService(t)

	_, err := service.AddFraudEvent(context.Background(), "ghost", entities.EventRapidVote, nil)
	if !errors.Is(err, domainerrors.ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestUnbanAgentResetsScoreWithAuditRow(t *testing.T) {
	service, store, _ := newService(t)
	seedAgent(store, "agent-1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := service.AddFraudEvent(ctx, "agent-1", entities.EventVotePatternMatch, nil); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}

	agent, err := service.UnbanAgent(ctx, "agent-1", 0)
	if err != nil {
		t.Fatalf("unban: %v", err)
	}
	if agent.Banned || agent.FraudScore != 0 || agent.BannedAt != nil {
		t.Fatalf("unban did not reset state: %+v", agent)
	}

	_, events, err := service.AgentStatus(ctx, "agent-1", 10)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if events[0].EventType != entities.EventManualReset {
		t.Fatalf("most recent audit row must be manual_reset, got %s", events[0].EventType)
	}
	if events[0].ScoreDelta != -90 {
		t.Fatalf("manual_reset delta must record the drop, got %d", events[0].ScoreDelta)
	}
}

func TestUnbanAgentRequiresBannedState(t *testing.T) {
	service, store, _ := newService(t)
	seedAgent(store, "agent-1")

	_, err := service.UnbanAgent(context.Background(), "agent-1", 0)
	if !errors.Is(err, domainerrors.ErrAgentNotBanned) {
		t.Fatalf("expected ErrAgentNotBanned, got %v", err)
	}

	_, err = service.UnbanAgent(context.Background(), "agent-1", -5)
	if !errors.Is(err, domainerrors.ErrNegativeScore) {
		t.Fatalf("expected ErrNegativeScore, got %v", err)
	}
}

func TestRecordFingerprintFlagsSharedDevice(t *testing.T) {
	service, store, _ := newService(t)
	seedAgent(store, "agent-1")
	seedAgent(store, "agent-2")
	ctx := context.Background()

	if err := service.RecordFingerprint(ctx, "agent-1", "hash-abc"); err != nil {
		t.Fatalf("first observation: %v", err)
	}
	agent, _ := store.GetAgent(ctx, "agent-1")
	if agent.FraudScore != 0 {
		t.Fatalf("first observation must not score, got %d", agent.FraudScore)
	}

	// Same agent on the same device is not a signal.
	if err := service.RecordFingerprint(ctx, "agent-1", "hash-abc"); err != nil {
		t.Fatalf("repeat observation: %v", err)
	}
	agent, _ = store.GetAgent(ctx, "agent-1")
	if agent.FraudScore != 0 {
		t.Fatalf("repeat observation must not score, got %d", agent.FraudScore)
	}

	if err := service.RecordFingerprint(ctx, "agent-2", "hash-abc"); err != nil {
		t.Fatalf("shared device observation: %v", err)
	}
	agent, _ = store.GetAgent(ctx, "agent-2")
	if agent.FraudScore != 20 {
		t.Fatalf("shared device must apply duplicate_device delta, got %d", agent.FraudScore)
	}
}

func TestEnforceBanCeilingSweep(t *testing.T) {
	service, store, clock := newService(t)
	seedAgent(store, "agent-low")
	store.PutAgent(entities.Agent{
		AgentID:          "agent-over",
		CreatedAt:        clock.now.AddDate(0, -2, 0),
		SubscriptionTier: entities.TierFree,
		VisibilityMode:   entities.VisibilityPublic,
		FraudScore:       85,
	})
	ctx := context.Background()

	banned, err := service.EnforceBanCeiling(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if banned != 1 {
		t.Fatalf("expected exactly one ban, got %d", banned)
	}

	agent, _ := store.GetAgent(ctx, "agent-over")
	if !agent.Banned {
		t.Fatalf("agent over ceiling must be banned")
	}
	low, _ := store.GetAgent(ctx, "agent-low")
	if low.Banned {
		t.Fatalf("agent under ceiling must stay active")
	}

	// Second sweep finds no candidates.
	banned, err = service.EnforceBanCeiling(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if banned != 0 {
		t.Fatalf("sweep must be idempotent, got %d", banned)
	}
}
