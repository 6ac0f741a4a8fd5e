package application_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"arbiter/contexts/community-trust/integrity-service/adapters/memory"
	"arbiter/contexts/community-trust/integrity-service/application"
	"arbiter/contexts/community-trust/integrity-service/application/workers"
	"arbiter/contexts/community-trust/integrity-service/domain/entities"
	domainerrors "arbiter/contexts/community-trust/integrity-service/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func newService() (application.Service, *memory.Store, *fixedClock) {
	store := memory.NewStore()
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	service := application.Service{
		Dilemmas: store,
		Agents:   store,
		Scores:   store,
		Clock:    clock,
	}
	return service, store, clock
}

func seedJudged(store *memory.Store, agentID string, submittedAt time.Time, favorablePct float64, votes int64) {
	store.AddJudgedDilemma(agentID, entities.JudgedDilemma{
		DilemmaID:    fmt.Sprintf("dilemma-%s-%d", agentID, submittedAt.Unix()),
		SubmittedAt:  submittedAt,
		FavorablePct: favorablePct,
		VoteCount:    votes,
	})
}

func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 0.001
}

func TestZeroDilemmasYieldsNeutralPrior(t *testing.T) {
	service, store, _ := newService()
	store.PutProfile(entities.AgentProfile{AgentID: "agent-1", VisibilityMode: entities.VisibilityPublic})

	score, err := service.CalculateIntegrityScore(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if score.RawScore != 50 || score.DisplayScore != 50 {
		t.Fatalf("empty history must be neutral 50, got raw=%f display=%f", score.RawScore, score.DisplayScore)
	}
	if score.Confidence != entities.ConfidenceLow || score.Trend != entities.TrendStable {
		t.Fatalf("expected low/stable, got %s/%s", score.Confidence, score.Trend)
	}
}

func TestLowConfidenceShrinkage(t *testing.T) {
	service, store, clock := newService()
	// One fresh, fully participated, fully favorable dilemma.
	seedJudged(store, "agent-1", clock.now.Add(-time.Hour), 100, 20)

	score, err := service.CalculateIntegrityScore(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !closeTo(score.RawScore, 100) {
		t.Fatalf("expected raw 100, got %f", score.RawScore)
	}
	if !closeTo(score.DisplayScore, 85) {
		t.Fatalf("low confidence must shrink 0.7/0.3, got %f", score.DisplayScore)
	}
}

func TestMediumAndHighConfidenceBands(t *testing.T) {
	service, store, clock := newService()
	for i := 0; i < 10; i++ {
		seedJudged(store, "agent-med", clock.now.Add(-time.Duration(i)*time.Hour), 100, 20)
	}
	for i := 0; i < 30; i++ {
		seedJudged(store, "agent-high", clock.now.Add(-time.Duration(i)*time.Hour), 100, 20)
	}
	ctx := context.Background()

	med, err := service.CalculateIntegrityScore(ctx, "agent-med")
	if err != nil {
		t.Fatalf("medium: %v", err)
	}
	if med.Confidence != entities.ConfidenceMedium || !closeTo(med.DisplayScore, 95) {
		t.Fatalf("expected medium band at 95, got %s %f", med.Confidence, med.DisplayScore)
	}

	high, err := service.CalculateIntegrityScore(ctx, "agent-high")
	if err != nil {
		t.Fatalf("high: %v", err)
	}
	if high.Confidence != entities.ConfidenceHigh || !closeTo(high.DisplayScore, 100) {
		t.Fatalf("high confidence must not shrink, got %s %f", high.Confidence, high.DisplayScore)
	}
}

func TestRecencyAndParticipationWeighting(t *testing.T) {
	service, store, clock := newService()
	// A fresh favorable dilemma at full weight against a year-old
	// unfavorable one at the 0.5 recency floor.
	seedJudged(store, "agent-1", clock.now, 100, 20)
	seedJudged(store, "agent-1", clock.now.AddDate(-2, 0, 0), 0, 20)

	score, err := service.CalculateIntegrityScore(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// Weighted mean (1.0*100 + 0.5*0) / 1.5.
	if !closeTo(score.RawScore, 66.6667) {
		t.Fatalf("recency weighting off, got %f", score.RawScore)
	}

	// Thin participation halves a dilemma's pull the same way.
	service2, store2, clock2 := newService()
	seedJudged(store2, "agent-2", clock2.now, 100, 20)
	seedJudged(store2, "agent-2", clock2.now, 0, 0)
	score2, err := service2.CalculateIntegrityScore(context.Background(), "agent-2")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !closeTo(score2.RawScore, 66.6667) {
		t.Fatalf("participation weighting off, got %f", score2.RawScore)
	}
}

func TestTrendComparesOlderAndNewerHalves(t *testing.T) {
	service, store, clock := newService()
	olderPcts := []float64{40, 40, 40}
	newerPcts := []float64{60, 60, 60}
	for i, pct := range olderPcts {
		seedJudged(store, "agent-up", clock.now.AddDate(0, 0, -60+i), pct, 20)
	}
	for i, pct := range newerPcts {
		seedJudged(store, "agent-up", clock.now.AddDate(0, 0, -10+i), pct, 20)
	}
	for i, pct := range newerPcts {
		seedJudged(store, "agent-down", clock.now.AddDate(0, 0, -60+i), pct, 20)
	}
	for i, pct := range olderPcts {
		seedJudged(store, "agent-down", clock.now.AddDate(0, 0, -10+i), pct, 20)
	}
	ctx := context.Background()

	up, err := service.CalculateIntegrityScore(ctx, "agent-up")
	if err != nil {
		t.Fatalf("improving: %v", err)
	}
	if up.Trend != entities.TrendImproving {
		t.Fatalf("expected improving, got %s", up.Trend)
	}

	down, err := service.CalculateIntegrityScore(ctx, "agent-down")
	if err != nil {
		t.Fatalf("declining: %v", err)
	}
	if down.Trend != entities.TrendDeclining {
		t.Fatalf("expected declining, got %s", down.Trend)
	}
}

func TestTrendNeedsFiveDilemmas(t *testing.T) {
	service, store, clock := newService()
	// Four dilemmas with a huge shift: still too few for a trend call.
	seedJudged(store, "agent-1", clock.now.AddDate(0, 0, -40), 10, 20)
	seedJudged(store, "agent-1", clock.now.AddDate(0, 0, -30), 10, 20)
	seedJudged(store, "agent-1", clock.now.AddDate(0, 0, -2), 90, 20)
	seedJudged(store, "agent-1", clock.now.AddDate(0, 0, -1), 90, 20)

	score, err := service.CalculateIntegrityScore(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if score.Trend != entities.TrendStable {
		t.Fatalf("under five dilemmas must be stable, got %s", score.Trend)
	}
}

func TestGhostModeHidesScoreFromPublicReads(t *testing.T) {
	service, store, clock := newService()
	store.PutProfile(entities.AgentProfile{AgentID: "agent-1", VisibilityMode: entities.VisibilityGhost})
	seedJudged(store, "agent-1", clock.now.Add(-time.Hour), 100, 20)
	ctx := context.Background()

	_, err := service.GetIntegrity(ctx, "agent-1", false)
	if !errors.Is(err, domainerrors.ErrScoreHidden) {
		t.Fatalf("public read of ghost agent must hide, got %v", err)
	}

	score, err := service.GetIntegrity(ctx, "agent-1", true)
	if err != nil {
		t.Fatalf("internal read: %v", err)
	}
	if !closeTo(score.RawScore, 100) {
		t.Fatalf("score must still compute internally, got %f", score.RawScore)
	}
}

func TestRecomputeTaskIsIdempotent(t *testing.T) {
	service, store, clock := newService()
	store.PutProfile(entities.AgentProfile{AgentID: "agent-1", VisibilityMode: entities.VisibilityPublic})
	store.PutProfile(entities.AgentProfile{AgentID: "agent-2", VisibilityMode: entities.VisibilityGhost})
	seedJudged(store, "agent-1", clock.now.AddDate(0, 0, -30), 80, 20)
	task := workers.IntegrityRecomputeTask{Service: service, Agents: store}
	ctx := context.Background()

	if err := task.RunOnce(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first1, ok := store.SavedScore("agent-1")
	if !ok {
		t.Fatalf("agent-1 score not persisted")
	}
	first2, ok := store.SavedScore("agent-2")
	if !ok {
		t.Fatalf("ghost agent score must still be computed and persisted")
	}

	if err := task.RunOnce(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second1, _ := store.SavedScore("agent-1")
	second2, _ := store.SavedScore("agent-2")
	if first1 != second1 || first2 != second2 {
		t.Fatalf("recompute must be idempotent: %f/%f vs %f/%f", first1, first2, second1, second2)
	}
}
