package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"arbiter/contexts/dispute-resolution/verdict-engine/adapters/memory"
	application "arbiter/contexts/dispute-resolution/verdict-engine/application"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newVoteFixture(t *testing.T) (VoteUseCase, *memory.Store, time.Time) {
	t.Helper()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	clock := fixedClock{now: now}
	uc := VoteUseCase{
		Dilemmas: store,
		Votes:    store,
		Tallies:  store,
		Agents:   store,
		Weight: application.WeightCalculator{
			Agents: store,
			Votes:  store,
			Clock:  clock,
		},
		Idempotency: store,
		Outbox:      store,
		Clock:       clock,
		IDGen:       store,
	}

	if err := store.CreateDilemma(context.Background(), entities.Dilemma{
		DilemmaID:   "dilemma-001",
		SubmitterID: "agent-submitter",
		Category:    entities.CategoryStandard,
		Status:      entities.StatusActive,
		ClosesAt:    now.Add(72 * time.Hour),
		CreatedAt:   now.Add(-24 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateDilemma: %v", err)
	}
	// Brand-new standard account: every factor lands on exactly 0.5x.
	store.PutVoterProfile(ports.VoterProfile{
		AgentID:   "agent-voter",
		CreatedAt: now,
	})
	store.PutVoterProfile(ports.VoterProfile{
		AgentID:   "agent-submitter",
		CreatedAt: now.Add(-365 * 24 * time.Hour),
	})
	return uc, store, now
}

func TestCastVoteRecordsWeightedVote(t *testing.T) {
	uc, store, _ := newVoteFixture(t)

	result, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID:      "dilemma-001",
		VoterID:        "agent-voter",
		Choice:         entities.ChoiceNotAtFault,
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if result.Replayed || result.WasUpdate {
		t.Fatalf("fresh cast marked replayed=%v update=%v", result.Replayed, result.WasUpdate)
	}
	if result.Vote.Weight != 0.5 {
		t.Fatalf("vote weight = %v, want 0.5 for a new account", result.Vote.Weight)
	}

	tallies, err := store.ListTallies(context.Background(), "dilemma-001")
	if err != nil {
		t.Fatalf("ListTallies: %v", err)
	}
	if len(tallies) != 1 {
		t.Fatalf("tally buckets = %d, want 1", len(tallies))
	}
	if tallies[0].Choice != entities.ChoiceNotAtFault || tallies[0].VoteCount != 1 || tallies[0].WeightedTotal != 0.5 {
		t.Fatalf("tally = %+v, want not_at_fault count 1 weight 0.5", tallies[0])
	}

	outbox := store.OutboxRecords()
	if len(outbox) != 1 || outbox[0].EventType != "vote.cast" {
		t.Fatalf("outbox = %+v, want one vote.cast record", outbox)
	}
}

func TestCastVoteReplaysSameRequest(t *testing.T) {
	uc, store, _ := newVoteFixture(t)
	cmd := CastVoteCommand{
		DilemmaID:      "dilemma-001",
		VoterID:        "agent-voter",
		Choice:         entities.ChoiceAtFault,
		IdempotencyKey: "key-replay",
	}

	first, err := uc.CastVote(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first CastVote: %v", err)
	}
	second, err := uc.CastVote(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second CastVote: %v", err)
	}
	if !second.Replayed {
		t.Fatal("second cast with the same key should replay")
	}
	if second.Vote.VoteID != first.Vote.VoteID {
		t.Fatalf("replay vote id = %s, want %s", second.Vote.VoteID, first.Vote.VoteID)
	}

	tallies, err := store.ListTallies(context.Background(), "dilemma-001")
	if err != nil {
		t.Fatalf("ListTallies: %v", err)
	}
	if len(tallies) != 1 || tallies[0].VoteCount != 1 {
		t.Fatalf("tallies after replay = %+v, want single bucket with one vote", tallies)
	}
}

func TestCastVoteRejectsReusedKeyWithDifferentRequest(t *testing.T) {
	uc, _, _ := newVoteFixture(t)

	if _, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID:      "dilemma-001",
		VoterID:        "agent-voter",
		Choice:         entities.ChoiceAtFault,
		IdempotencyKey: "key-conflict",
	}); err != nil {
		t.Fatalf("first CastVote: %v", err)
	}
	_, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID:      "dilemma-001",
		VoterID:        "agent-voter",
		Choice:         entities.ChoiceNotAtFault,
		IdempotencyKey: "key-conflict",
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("err = %v, want ErrIdempotencyConflict", err)
	}
}

func TestChangedVoteMovesTallyWeight(t *testing.T) {
	uc, store, _ := newVoteFixture(t)

	if _, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID:      "dilemma-001",
		VoterID:        "agent-voter",
		Choice:         entities.ChoiceAtFault,
		IdempotencyKey: "key-first",
	}); err != nil {
		t.Fatalf("first CastVote: %v", err)
	}
	result, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID:      "dilemma-001",
		VoterID:        "agent-voter",
		Choice:         entities.ChoiceNotAtFault,
		IdempotencyKey: "key-second",
	})
	if err != nil {
		t.Fatalf("second CastVote: %v", err)
	}
	if !result.WasUpdate {
		t.Fatal("changed vote should be marked as an update")
	}

	tallies, err := store.ListTallies(context.Background(), "dilemma-001")
	if err != nil {
		t.Fatalf("ListTallies: %v", err)
	}
	byChoice := make(map[string]entities.Tally, len(tallies))
	for _, tally := range tallies {
		byChoice[tally.Choice] = tally
	}
	if old := byChoice[entities.ChoiceAtFault]; old.VoteCount != 0 || old.WeightedTotal != 0 {
		t.Fatalf("old bucket = %+v, want drained to zero", old)
	}
	if current := byChoice[entities.ChoiceNotAtFault]; current.VoteCount != 1 || current.WeightedTotal != 0.5 {
		t.Fatalf("new bucket = %+v, want count 1 weight 0.5", current)
	}

	votes, err := store.ListVotesByDilemma(context.Background(), "dilemma-001")
	if err != nil {
		t.Fatalf("ListVotesByDilemma: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("vote rows = %d, want one row per voter per dilemma", len(votes))
	}
}

func TestCastVoteRejectsSubmitter(t *testing.T) {
	uc, _, _ := newVoteFixture(t)
	_, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID:      "dilemma-001",
		VoterID:        "agent-submitter",
		Choice:         entities.ChoiceNotAtFault,
		IdempotencyKey: "key-self",
	})
	if !errors.Is(err, domainerrors.ErrSelfJudgment) {
		t.Fatalf("err = %v, want ErrSelfJudgment", err)
	}
}

func TestCastVoteRejectsBannedVoter(t *testing.T) {
	uc, store, now := newVoteFixture(t)
	store.PutVoterProfile(ports.VoterProfile{
		AgentID:   "agent-banned",
		CreatedAt: now.Add(-30 * 24 * time.Hour),
		Banned:    true,
	})
	_, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID:      "dilemma-001",
		VoterID:        "agent-banned",
		Choice:         entities.ChoiceNotAtFault,
		IdempotencyKey: "key-banned",
	})
	if !errors.Is(err, domainerrors.ErrVoterBanned) {
		t.Fatalf("err = %v, want ErrVoterBanned", err)
	}
}

func TestCastVoteRejectsClosedWindow(t *testing.T) {
	uc, store, now := newVoteFixture(t)
	if err := store.CreateDilemma(context.Background(), entities.Dilemma{
		DilemmaID:   "dilemma-stale",
		SubmitterID: "agent-submitter",
		Category:    entities.CategoryStandard,
		Status:      entities.StatusActive,
		ClosesAt:    now.Add(-time.Hour),
		CreatedAt:   now.Add(-8 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateDilemma: %v", err)
	}
	_, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID:      "dilemma-stale",
		VoterID:        "agent-voter",
		Choice:         entities.ChoiceNotAtFault,
		IdempotencyKey: "key-stale",
	})
	if !errors.Is(err, domainerrors.ErrVotingWindowClosed) {
		t.Fatalf("err = %v, want ErrVotingWindowClosed", err)
	}
}

func TestCastVoteRejectsChoiceOutsideCategory(t *testing.T) {
	uc, _, _ := newVoteFixture(t)
	_, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID:      "dilemma-001",
		VoterID:        "agent-voter",
		Choice:         entities.ChoiceBothAtFault,
		IdempotencyKey: "key-choice",
	})
	if !errors.Is(err, domainerrors.ErrInvalidChoice) {
		t.Fatalf("err = %v, want ErrInvalidChoice for both_at_fault on a standard dilemma", err)
	}
}

func TestCastVoteRequiresIdempotencyKey(t *testing.T) {
	uc, _, _ := newVoteFixture(t)
	_, err := uc.CastVote(context.Background(), CastVoteCommand{
		DilemmaID: "dilemma-001",
		VoterID:   "agent-voter",
		Choice:    entities.ChoiceNotAtFault,
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("err = %v, want ErrIdempotencyKeyRequired", err)
	}
}
