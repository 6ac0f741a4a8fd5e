package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"arbiter/contexts/dispute-resolution/verdict-engine/adapters/memory"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

func newFinalizeFixture(t *testing.T) (FinalizeUseCase, *memory.Store, time.Time) {
	t.Helper()
	now := time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.SetThresholds(ports.VerdictThresholds{
		MinVotesForVerdict: 10,
		VotingWindowDays:   7,
		ClearVerdictPct:    55,
	})
	uc := FinalizeUseCase{
		Dilemmas:   store,
		Tallies:    store,
		Thresholds: store,
		Outbox:     store,
		Clock:      fixedClock{now: now},
		IDGen:      store,
	}
	if err := store.CreateDilemma(context.Background(), entities.Dilemma{
		DilemmaID:   "dilemma-final",
		SubmitterID: "agent-submitter",
		Category:    entities.CategoryStandard,
		Status:      entities.StatusActive,
		ClosesAt:    now.Add(-time.Hour),
		CreatedAt:   now.Add(-8 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateDilemma: %v", err)
	}
	return uc, store, now
}

func seedTally(t *testing.T, store *memory.Store, dilemmaID, choice string, count int64, weight float64, now time.Time) {
	t.Helper()
	if err := store.AdjustTally(context.Background(), dilemmaID, choice, count, weight, now); err != nil {
		t.Fatalf("AdjustTally: %v", err)
	}
}

func TestFinalizeDeclaresClearVerdict(t *testing.T) {
	uc, store, now := newFinalizeFixture(t)
	seedTally(t, store, "dilemma-final", entities.ChoiceNotAtFault, 3, 120, now)
	seedTally(t, store, "dilemma-final", entities.ChoiceAtFault, 1, 30, now)

	result, err := uc.FinalizeDilemma(context.Background(), "dilemma-final")
	if err != nil {
		t.Fatalf("FinalizeDilemma: %v", err)
	}
	if result.FinalVerdict != entities.ChoiceNotAtFault {
		t.Fatalf("verdict = %s, want not_at_fault", result.FinalVerdict)
	}
	if !strings.Contains(result.VerdictDetail, "80.0%") {
		t.Fatalf("detail = %q, want the 80.0%% weighted share named", result.VerdictDetail)
	}

	dilemma, err := store.GetDilemma(context.Background(), "dilemma-final")
	if err != nil {
		t.Fatalf("GetDilemma: %v", err)
	}
	if dilemma.Status != entities.StatusClosed || dilemma.FinalVerdict != entities.ChoiceNotAtFault {
		t.Fatalf("dilemma = %+v, want closed with verdict persisted", dilemma)
	}

	outbox := store.OutboxRecords()
	if len(outbox) != 1 || outbox[0].EventType != "dilemma.finalized" {
		t.Fatalf("outbox = %+v, want one dilemma.finalized record", outbox)
	}
}

func TestFinalizeSplitsUnderThreshold(t *testing.T) {
	uc, store, now := newFinalizeFixture(t)
	seedTally(t, store, "dilemma-final", entities.ChoiceNotAtFault, 5, 55, now)
	seedTally(t, store, "dilemma-final", entities.ChoiceAtFault, 5, 50, now)

	result, err := uc.FinalizeDilemma(context.Background(), "dilemma-final")
	if err != nil {
		t.Fatalf("FinalizeDilemma: %v", err)
	}
	if result.FinalVerdict != entities.VerdictSplit {
		t.Fatalf("verdict = %s, want split", result.FinalVerdict)
	}
	if !strings.Contains(result.VerdictDetail, "52.4%") || !strings.Contains(result.VerdictDetail, "55.0%") {
		t.Fatalf("detail = %q, want leading share and threshold named", result.VerdictDetail)
	}
}

func TestFinalizeWithNoVotesSplits(t *testing.T) {
	uc, _, _ := newFinalizeFixture(t)

	result, err := uc.FinalizeDilemma(context.Background(), "dilemma-final")
	if err != nil {
		t.Fatalf("FinalizeDilemma: %v", err)
	}
	if result.FinalVerdict != entities.VerdictSplit {
		t.Fatalf("verdict = %s, want split", result.FinalVerdict)
	}
	if !strings.Contains(result.VerdictDetail, "no votes cast") {
		t.Fatalf("detail = %q, want the empty ballot named", result.VerdictDetail)
	}
}

func TestFinalizeRejectsClosedDilemma(t *testing.T) {
	uc, _, _ := newFinalizeFixture(t)
	if _, err := uc.FinalizeDilemma(context.Background(), "dilemma-final"); err != nil {
		t.Fatalf("first FinalizeDilemma: %v", err)
	}
	_, err := uc.FinalizeDilemma(context.Background(), "dilemma-final")
	if !errors.Is(err, domainerrors.ErrDilemmaClosed) {
		t.Fatalf("err = %v, want ErrDilemmaClosed", err)
	}
}

func TestFinalizeRelationshipDilemmaAcrossFourBuckets(t *testing.T) {
	uc, store, now := newFinalizeFixture(t)
	if err := store.CreateDilemma(context.Background(), entities.Dilemma{
		DilemmaID:   "dilemma-rel",
		SubmitterID: "agent-submitter",
		Category:    entities.CategoryRelationship,
		Status:      entities.StatusActive,
		ClosesAt:    now.Add(-time.Hour),
		CreatedAt:   now.Add(-8 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateDilemma: %v", err)
	}
	seedTally(t, store, "dilemma-rel", entities.ChoiceNotAtFault, 2, 10, now)
	seedTally(t, store, "dilemma-rel", entities.ChoiceAtFault, 1, 5, now)
	seedTally(t, store, "dilemma-rel", entities.ChoiceBothAtFault, 6, 60, now)
	seedTally(t, store, "dilemma-rel", entities.ChoiceNeitherAtFault, 3, 25, now)

	result, err := uc.FinalizeDilemma(context.Background(), "dilemma-rel")
	if err != nil {
		t.Fatalf("FinalizeDilemma: %v", err)
	}
	if result.FinalVerdict != entities.ChoiceBothAtFault {
		t.Fatalf("verdict = %s, want both_at_fault at 60%% of the weight", result.FinalVerdict)
	}
	if result.TotalVotes != 12 || result.TotalWeight != 100 {
		t.Fatalf("totals = %d/%v, want 12 votes weighing 100", result.TotalVotes, result.TotalWeight)
	}
}
