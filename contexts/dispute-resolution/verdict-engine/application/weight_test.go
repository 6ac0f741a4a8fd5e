package application

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"arbiter/contexts/dispute-resolution/verdict-engine/adapters/memory"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func closeTo(got, want, tolerance float64) bool {
	return math.Abs(got-want) <= tolerance
}

func newWeightFixture(t *testing.T) (WeightCalculator, *memory.Store, time.Time) {
	t.Helper()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	calc := WeightCalculator{
		Agents: store,
		Votes:  store,
		Clock:  fixedClock{now: now},
	}
	return calc, store, now
}

func TestNewAccountStartsAtHalfWeight(t *testing.T) {
	calc, store, now := newWeightFixture(t)
	store.PutVoterProfile(ports.VoterProfile{
		AgentID:   "agent-new",
		CreatedAt: now,
	})

	breakdown, err := calc.CalculateWeight(context.Background(), "agent-new")
	if err != nil {
		t.Fatalf("CalculateWeight: %v", err)
	}
	if breakdown.AgeFactor != 0.5 {
		t.Fatalf("age factor = %v, want 0.5", breakdown.AgeFactor)
	}
	if breakdown.Weight != 0.5 {
		t.Fatalf("weight = %v, want 0.5", breakdown.Weight)
	}
}

func TestIncognitoVerifiedMatureAccount(t *testing.T) {
	calc, store, now := newWeightFixture(t)
	store.PutVoterProfile(ports.VoterProfile{
		AgentID:          "agent-premium",
		CreatedAt:        now.Add(-90 * 24 * time.Hour),
		EmailVerified:    true,
		PhoneVerified:    true,
		SubscriptionTier: "incognito",
	})

	breakdown, err := calc.CalculateWeight(context.Background(), "agent-premium")
	if err != nil {
		t.Fatalf("CalculateWeight: %v", err)
	}
	if breakdown.BaseFactor != 1.2 {
		t.Fatalf("base factor = %v, want 1.2", breakdown.BaseFactor)
	}
	if breakdown.AgeFactor != 1.5 {
		t.Fatalf("age factor = %v, want 1.5", breakdown.AgeFactor)
	}
	if breakdown.VerificationFactor != 2.0 {
		t.Fatalf("verification factor = %v, want 2.0", breakdown.VerificationFactor)
	}
	if !closeTo(breakdown.Weight, 3.6, 0.001) {
		t.Fatalf("weight = %v, want ~3.6", breakdown.Weight)
	}
}

func TestFraudPenaltyScalesAndZeroesAtCeiling(t *testing.T) {
	calc, store, now := newWeightFixture(t)
	store.PutVoterProfile(ports.VoterProfile{
		AgentID:    "agent-suspect",
		CreatedAt:  now.Add(-365 * 24 * time.Hour),
		FraudScore: 50,
	})
	store.PutVoterProfile(ports.VoterProfile{
		AgentID:    "agent-ceiling",
		CreatedAt:  now.Add(-365 * 24 * time.Hour),
		FraudScore: 80,
	})

	suspect, err := calc.CalculateWeight(context.Background(), "agent-suspect")
	if err != nil {
		t.Fatalf("CalculateWeight suspect: %v", err)
	}
	if suspect.FraudPenalty != 0.75 {
		t.Fatalf("fraud penalty = %v, want 0.75", suspect.FraudPenalty)
	}

	ceiling, err := calc.CalculateWeight(context.Background(), "agent-ceiling")
	if err != nil {
		t.Fatalf("CalculateWeight ceiling: %v", err)
	}
	if ceiling.FraudPenalty != 0 || ceiling.Weight != 0 {
		t.Fatalf("ceiling penalty/weight = %v/%v, want 0/0", ceiling.FraudPenalty, ceiling.Weight)
	}
}

func TestConsistencyStaysNeutralUnderSample(t *testing.T) {
	calc, store, now := newWeightFixture(t)
	store.PutVoterProfile(ports.VoterProfile{
		AgentID:   "agent-thin",
		CreatedAt: now.Add(-200 * 24 * time.Hour),
	})
	seedJudgedHistory(t, store, "agent-thin", now, 9, 9)

	breakdown, err := calc.CalculateWeight(context.Background(), "agent-thin")
	if err != nil {
		t.Fatalf("CalculateWeight: %v", err)
	}
	if breakdown.ConsistencyFactor != 1.0 {
		t.Fatalf("consistency factor = %v, want neutral 1.0 under 10 judged votes", breakdown.ConsistencyFactor)
	}
}

func TestConsistencyRewardsMajorityAlignment(t *testing.T) {
	calc, store, now := newWeightFixture(t)
	store.PutVoterProfile(ports.VoterProfile{
		AgentID:   "agent-aligned",
		CreatedAt: now.Add(-200 * 24 * time.Hour),
	})
	seedJudgedHistory(t, store, "agent-aligned", now, 10, 8)

	breakdown, err := calc.CalculateWeight(context.Background(), "agent-aligned")
	if err != nil {
		t.Fatalf("CalculateWeight: %v", err)
	}
	if !closeTo(breakdown.ConsistencyFactor, 1.3, 0.001) {
		t.Fatalf("consistency factor = %v, want ~1.3 at 80%% alignment", breakdown.ConsistencyFactor)
	}
}

// seedJudgedHistory creates closed dilemmas with clear verdicts and one
// vote per dilemma by the voter, matching the verdict for the first
// `matches` of them.
func seedJudgedHistory(t *testing.T, store *memory.Store, voterID string, now time.Time, total, matches int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < total; i++ {
		dilemmaID := fmt.Sprintf("dilemma-judged-%03d", i)
		if err := store.CreateDilemma(ctx, entities.Dilemma{
			DilemmaID:    dilemmaID,
			SubmitterID:  "agent-submitter",
			Category:     entities.CategoryStandard,
			Status:       entities.StatusClosed,
			FinalVerdict: entities.ChoiceNotAtFault,
			CreatedAt:    now.Add(-time.Duration(total-i) * 48 * time.Hour),
		}); err != nil {
			t.Fatalf("CreateDilemma: %v", err)
		}
		choice := entities.ChoiceNotAtFault
		if i >= matches {
			choice = entities.ChoiceAtFault
		}
		if err := store.SaveVote(ctx, entities.Vote{
			VoteID:    fmt.Sprintf("vote-judged-%03d", i),
			DilemmaID: dilemmaID,
			VoterID:   voterID,
			Choice:    choice,
			Weight:    1.0,
			CastAt:    now.Add(-time.Duration(total-i) * 24 * time.Hour),
		}); err != nil {
			t.Fatalf("SaveVote: %v", err)
		}
	}
}
