package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"arbiter/contexts/community-trust/audit-session-service/adapters/memory"
	"arbiter/contexts/community-trust/audit-session-service/application"
	"arbiter/contexts/community-trust/audit-session-service/application/workers"
	"arbiter/contexts/community-trust/audit-session-service/domain/entities"
	domainerrors "arbiter/contexts/community-trust/audit-session-service/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newService() (application.Service, *memory.Store, *fixedClock) {
	store := memory.NewStore()
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	service := application.Service{
		Sessions: store,
		Clock:    clock,
		IDGen:    store,
		TimeBox:  30 * time.Minute,
	}
	return service, store, clock
}

func fiveQuestions() []entities.Question {
	questions := make([]entities.Question, 5)
	for i := range questions {
		questions[i] = entities.Question{
			QuestionID:  string(rune('a' + i)),
			Prompt:      "which verdict applies",
			Choices:     []string{"not_at_fault", "at_fault"},
			AnswerIndex: i % 2,
		}
	}
	return questions
}

func TestCompleteSessionGradesAndPasses(t *testing.T) {
	service, _, _ := newService()
	ctx := context.Background()
	session, err := service.StartSession(ctx, "agent-1", fiveQuestions())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Four of five correct: 80 is exactly the passing floor.
	graded, err := service.CompleteSession(ctx, session.SessionID, []int{0, 1, 0, 1, 1})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if graded.Score != 80 || !graded.Passed {
		t.Fatalf("expected passing 80, got score=%d passed=%v", graded.Score, graded.Passed)
	}
	if graded.Status != entities.StatusCompleted {
		t.Fatalf("expected completed, got %s", graded.Status)
	}
}

func TestCompleteSessionFailsBelowThreshold(t *testing.T) {
	service, _, _ := newService()
	ctx := context.Background()
	session, err := service.StartSession(ctx, "agent-1", fiveQuestions())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	graded, err := service.CompleteSession(ctx, session.SessionID, []int{1, 0, 1, 0, 1})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if graded.Score != 0 || graded.Passed {
		t.Fatalf("all wrong must score 0 and fail, got %+v", graded)
	}
}

func TestCompleteSessionIsTerminal(t *testing.T) {
	service, _, _ := newService()
	ctx := context.Background()
	session, err := service.StartSession(ctx, "agent-1", fiveQuestions())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.CompleteSession(ctx, session.SessionID, []int{0, 1, 0, 1, 0}); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	_, err = service.CompleteSession(ctx, session.SessionID, []int{0, 1, 0, 1, 0})
	if !errors.Is(err, domainerrors.ErrSessionTerminal) {
		t.Fatalf("second complete must reject, got %v", err)
	}
}

func TestCompleteSessionMissingSession(t *testing.T) {
	service, _, _ := newService()

	_, err := service.CompleteSession(context.Background(), "nope", []int{0})
	if !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCompleteSessionPastTimeBoxExpires(t *testing.T) {
	service, store, clock := newService()
	ctx := context.Background()
	session, err := service.StartSession(ctx, "agent-1", fiveQuestions())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(31 * time.Minute)

	_, err = service.CompleteSession(ctx, session.SessionID, []int{0, 1, 0, 1, 0})
	if !errors.Is(err, domainerrors.ErrSessionTerminal) {
		t.Fatalf("late completion must expire, got %v", err)
	}
	stored, err := store.GetSession(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != entities.StatusExpired {
		t.Fatalf("expected expired, got %s", stored.Status)
	}
}

func TestSessionExpiryTask(t *testing.T) {
	service, store, clock := newService()
	ctx := context.Background()
	stale, err := service.StartSession(ctx, "agent-1", fiveQuestions())
	if err != nil {
		t.Fatalf("start stale: %v", err)
	}
	clock.Advance(31 * time.Minute)
	fresh, err := service.StartSession(ctx, "agent-2", fiveQuestions())
	if err != nil {
		t.Fatalf("start fresh: %v", err)
	}

	task := workers.SessionExpiryTask{Service: service}
	if err := task.RunOnce(ctx); err != nil {
		t.Fatalf("expiry task: %v", err)
	}

	staleStored, _ := store.GetSession(ctx, stale.SessionID)
	if staleStored.Status != entities.StatusExpired {
		t.Fatalf("stale session must expire, got %s", staleStored.Status)
	}
	freshStored, _ := store.GetSession(ctx, fresh.SessionID)
	if freshStored.Status != entities.StatusInProgress {
		t.Fatalf("fresh session must stay open, got %s", freshStored.Status)
	}
}

func TestStartSessionRequiresQuestions(t *testing.T) {
	service, _, _ := newService()

	_, err := service.StartSession(context.Background(), "agent-1", nil)
	if !errors.Is(err, domainerrors.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}
