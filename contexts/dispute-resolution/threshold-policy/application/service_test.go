package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"arbiter/contexts/dispute-resolution/threshold-policy/adapters/memory"
	"arbiter/contexts/dispute-resolution/threshold-policy/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/threshold-policy/domain/errors"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time        { return c.now }
func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(store *memory.Store, clock *stepClock) Service {
	return Service{
		Tiers:      store,
		Population: store,
		Cache:      memory.NewCache(),
		Clock:      clock,
		CacheTTL:   time.Hour,
	}
}

func TestCurrentThresholdsSelectsMatchingTier(t *testing.T) {
	store := memory.NewStore()
	store.SetPopulation(2500)
	clock := &stepClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	service := newTestService(store, clock)

	thresholds, err := service.CurrentThresholds(context.Background())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if thresholds.Tier != "growth" {
		t.Fatalf("expected growth tier for population 2500, got %s", thresholds.Tier)
	}
	if thresholds.MinVotesForVerdict != 10 {
		t.Fatalf("expected 10 min votes, got %d", thresholds.MinVotesForVerdict)
	}
	if thresholds.Source != entities.ThresholdSourceTierTable {
		t.Fatalf("expected tier_table source, got %s", thresholds.Source)
	}
}

func TestCurrentThresholdsCachesUntilTTL(t *testing.T) {
	store := memory.NewStore()
	store.SetPopulation(500)
	clock := &stepClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	service := newTestService(store, clock)

	if _, err := service.CurrentThresholds(context.Background()); err != nil {
		t.Fatalf("warm lookup failed: %v", err)
	}

	// A population change is invisible until the cache expires.
	store.SetPopulation(50000)
	clock.Advance(30 * time.Minute)
	cached, err := service.CurrentThresholds(context.Background())
	if err != nil {
		t.Fatalf("cached lookup failed: %v", err)
	}
	if cached.Tier != "seed" {
		t.Fatalf("expected cached seed tier, got %s", cached.Tier)
	}
	if cached.Source != entities.ThresholdSourceCache {
		t.Fatalf("expected cache source, got %s", cached.Source)
	}

	clock.Advance(31 * time.Minute)
	fresh, err := service.CurrentThresholds(context.Background())
	if err != nil {
		t.Fatalf("post-TTL lookup failed: %v", err)
	}
	if fresh.Tier != "established" {
		t.Fatalf("expected established tier after TTL expiry, got %s", fresh.Tier)
	}
}

func TestCurrentThresholdsInvalidateForcesReread(t *testing.T) {
	store := memory.NewStore()
	store.SetPopulation(500)
	clock := &stepClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	service := newTestService(store, clock)

	if _, err := service.CurrentThresholds(context.Background()); err != nil {
		t.Fatalf("warm lookup failed: %v", err)
	}
	store.SetPopulation(50000)
	service.InvalidateCache()

	fresh, err := service.CurrentThresholds(context.Background())
	if err != nil {
		t.Fatalf("lookup after invalidate failed: %v", err)
	}
	if fresh.Tier != "established" {
		t.Fatalf("expected established tier after invalidate, got %s", fresh.Tier)
	}
}

func TestCurrentThresholdsFallsBackWhenTiersUnavailable(t *testing.T) {
	store := memory.NewStore()
	store.SetPopulation(500)
	store.FailTierReads(true)
	clock := &stepClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	service := newTestService(store, clock)

	thresholds, err := service.CurrentThresholds(context.Background())
	if err != nil {
		t.Fatalf("fallback path must not error, got %v", err)
	}
	if thresholds.Source != entities.ThresholdSourceFallback {
		t.Fatalf("expected fallback source, got %s", thresholds.Source)
	}
	if thresholds.MinVotesForVerdict != 10 || thresholds.VotingWindowDays != 7 {
		t.Fatalf("unexpected fallback tier values: %+v", thresholds)
	}
}

func TestShouldFinalize(t *testing.T) {
	store := memory.NewStore()
	store.SetPopulation(500) // seed tier: 5 votes, 7 day window
	clock := &stepClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	service := newTestService(store, clock)

	openWindow := clock.now.Add(24 * time.Hour)
	done, err := service.ShouldFinalize(context.Background(), 2, openWindow)
	if err != nil {
		t.Fatalf("should finalize failed: %v", err)
	}
	if done {
		t.Fatalf("expected open dilemma with 2 votes to stay open")
	}

	done, err = service.ShouldFinalize(context.Background(), 5, openWindow)
	if err != nil {
		t.Fatalf("should finalize failed: %v", err)
	}
	if !done {
		t.Fatalf("expected dilemma at vote minimum to finalize")
	}

	expired := clock.now.Add(-time.Minute)
	done, err = service.ShouldFinalize(context.Background(), 0, expired)
	if err != nil {
		t.Fatalf("should finalize failed: %v", err)
	}
	if !done {
		t.Fatalf("expected dilemma past its window to finalize even with 0 votes")
	}
}

func TestUpdateTiersRejectsGappedTable(t *testing.T) {
	store := memory.NewStore()
	clock := &stepClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	service := newTestService(store, clock)

	max := int64(999)
	gapped := []entities.ThresholdTier{
		{Name: "a", MinAgents: 0, MaxAgents: &max, MinVotesForVerdict: 5, VotingWindowDays: 7, ClearVerdictPct: 60},
		{Name: "b", MinAgents: 2000, MinVotesForVerdict: 10, VotingWindowDays: 5, ClearVerdictPct: 55},
	}
	if err := service.UpdateTiers(context.Background(), gapped); !errors.Is(err, domainerrors.ErrInvalidTierTable) {
		t.Fatalf("expected invalid tier table error, got %v", err)
	}
}
