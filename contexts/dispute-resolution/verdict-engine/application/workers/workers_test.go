package workers

import (
	"context"
	"testing"
	"time"

	"arbiter/contexts/dispute-resolution/verdict-engine/adapters/memory"
	"arbiter/contexts/dispute-resolution/verdict-engine/application/commands"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newSweepFixture(t *testing.T) (FinalizationSweepTask, *memory.Store, time.Time) {
	t.Helper()
	now := time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.SetThresholds(ports.VerdictThresholds{
		MinVotesForVerdict: 3,
		VotingWindowDays:   7,
		ClearVerdictPct:    55,
	})
	clock := fixedClock{now: now}
	task := FinalizationSweepTask{
		Dilemmas:   store,
		Tallies:    store,
		Thresholds: store,
		Finalize: commands.FinalizeUseCase{
			Dilemmas:   store,
			Tallies:    store,
			Thresholds: store,
			Outbox:     store,
			Clock:      clock,
			IDGen:      store,
		},
		Clock: clock,
	}
	return task, store, now
}

func TestFinalizationSweepClosesPastDueDilemmas(t *testing.T) {
	task, store, now := newSweepFixture(t)
	ctx := context.Background()
	if err := store.CreateDilemma(ctx, entities.Dilemma{
		DilemmaID:   "dilemma-due",
		SubmitterID: "agent-a",
		Category:    entities.CategoryStandard,
		Status:      entities.StatusActive,
		ClosesAt:    now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("CreateDilemma: %v", err)
	}
	if err := store.CreateDilemma(ctx, entities.Dilemma{
		DilemmaID:   "dilemma-fresh",
		SubmitterID: "agent-b",
		Category:    entities.CategoryStandard,
		Status:      entities.StatusActive,
		ClosesAt:    now.Add(48 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateDilemma: %v", err)
	}

	if err := task.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	due, err := store.GetDilemma(ctx, "dilemma-due")
	if err != nil {
		t.Fatalf("GetDilemma due: %v", err)
	}
	if due.Status != entities.StatusClosed || due.FinalVerdict != entities.VerdictSplit {
		t.Fatalf("past-due dilemma = %+v, want closed as a split", due)
	}
	fresh, err := store.GetDilemma(ctx, "dilemma-fresh")
	if err != nil {
		t.Fatalf("GetDilemma fresh: %v", err)
	}
	if fresh.Status != entities.StatusActive {
		t.Fatalf("fresh dilemma status = %s, want still active", fresh.Status)
	}
}

func TestFinalizationSweepClosesEarlyAtMinimumVotes(t *testing.T) {
	task, store, now := newSweepFixture(t)
	ctx := context.Background()
	if err := store.CreateDilemma(ctx, entities.Dilemma{
		DilemmaID:   "dilemma-early",
		SubmitterID: "agent-a",
		Category:    entities.CategoryStandard,
		Status:      entities.StatusActive,
		ClosesAt:    now.Add(48 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateDilemma: %v", err)
	}
	if err := store.AdjustTally(ctx, "dilemma-early", entities.ChoiceNotAtFault, 3, 4.5, now); err != nil {
		t.Fatalf("AdjustTally: %v", err)
	}

	if err := task.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	dilemma, err := store.GetDilemma(ctx, "dilemma-early")
	if err != nil {
		t.Fatalf("GetDilemma: %v", err)
	}
	if dilemma.Status != entities.StatusClosed || dilemma.FinalVerdict != entities.ChoiceNotAtFault {
		t.Fatalf("dilemma = %+v, want closed with a unanimous verdict", dilemma)
	}
}

func TestTallyResyncRebuildsFromVoteLedger(t *testing.T) {
	now := time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.CreateDilemma(ctx, entities.Dilemma{
		DilemmaID:   "dilemma-drift",
		SubmitterID: "agent-a",
		Category:    entities.CategoryStandard,
		Status:      entities.StatusActive,
		ClosesAt:    now.Add(48 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateDilemma: %v", err)
	}
	votes := []entities.Vote{
		{VoteID: "vote-1", DilemmaID: "dilemma-drift", VoterID: "agent-x", Choice: entities.ChoiceNotAtFault, Weight: 1.5, CastAt: now},
		{VoteID: "vote-2", DilemmaID: "dilemma-drift", VoterID: "agent-y", Choice: entities.ChoiceNotAtFault, Weight: 0.5, CastAt: now},
		{VoteID: "vote-3", DilemmaID: "dilemma-drift", VoterID: "agent-z", Choice: entities.ChoiceAtFault, Weight: 2.0, CastAt: now},
	}
	for _, vote := range votes {
		if err := store.SaveVote(ctx, vote); err != nil {
			t.Fatalf("SaveVote: %v", err)
		}
	}
	// Drifted aggregate that the resync must repair.
	if err := store.AdjustTally(ctx, "dilemma-drift", entities.ChoiceNotAtFault, 7, 99, now); err != nil {
		t.Fatalf("AdjustTally: %v", err)
	}

	task := TallyResyncTask{
		Dilemmas: store,
		Votes:    store,
		Tallies:  store,
		Clock:    fixedClock{now: now},
	}
	if err := task.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	tallies, err := store.ListTallies(ctx, "dilemma-drift")
	if err != nil {
		t.Fatalf("ListTallies: %v", err)
	}
	byChoice := make(map[string]entities.Tally, len(tallies))
	for _, tally := range tallies {
		byChoice[tally.Choice] = tally
	}
	if tally := byChoice[entities.ChoiceNotAtFault]; tally.VoteCount != 2 || tally.WeightedTotal != 2.0 {
		t.Fatalf("not_at_fault tally = %+v, want count 2 weight 2.0", tally)
	}
	if tally := byChoice[entities.ChoiceAtFault]; tally.VoteCount != 1 || tally.WeightedTotal != 2.0 {
		t.Fatalf("at_fault tally = %+v, want count 1 weight 2.0", tally)
	}
}

func TestIdempotencyPurgeDropsExpiredRecords(t *testing.T) {
	now := time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.Put(ctx, ports.IdempotencyRecord{
		Key:       "key-live",
		VoteID:    "vote-live",
		ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Put live: %v", err)
	}
	if err := store.Put(ctx, ports.IdempotencyRecord{
		Key:       "key-stale",
		VoteID:    "vote-stale",
		ExpiresAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("Put stale: %v", err)
	}

	task := IdempotencyPurgeTask{
		Idempotency: store,
		Clock:       fixedClock{now: now},
	}
	if err := task.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if _, found, err := store.Get(ctx, "key-live", now); err != nil || !found {
		t.Fatalf("live record found=%v err=%v, want it kept", found, err)
	}
	if _, found, err := store.Get(ctx, "key-stale", now); err != nil || found {
		t.Fatalf("stale record found=%v err=%v, want it purged", found, err)
	}
}
