package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubRunner struct {
	err    error
	panics bool
	runs   int
}

func (s *stubRunner) RunOnce(_ context.Context) error {
	s.runs++
	if s.panics {
		panic("stub runner exploded")
	}
	return s.err
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestPipelineRunsAllTasksDespiteFailure(t *testing.T) {
	failing := &stubRunner{err: errors.New("storage unavailable")}
	trailing := &stubRunner{}

	pipeline := Pipeline{
		Name:  "hourly",
		Clock: fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Tasks: []Task{
			{Name: "timing_sweep", Runner: failing},
			{Name: "tally_resync", Runner: trailing},
		},
	}

	summary, err := pipeline.Run(context.Background())
	if err == nil {
		t.Fatalf("expected pipeline failure when a task fails")
	}
	if trailing.runs != 1 {
		t.Fatalf("expected trailing task to run despite earlier failure, ran %d times", trailing.runs)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected 1 failed task, got %d", summary.Failed)
	}
	result := summary.Results["timing_sweep"]
	if result.Status != TaskStatusFailed {
		t.Fatalf("expected failed status, got %s", result.Status)
	}
	if result.Error != "storage unavailable" {
		t.Fatalf("expected task error recorded, got %q", result.Error)
	}
	if summary.Results["tally_resync"].Status != TaskStatusSucceeded {
		t.Fatalf("expected trailing task success, got %s", summary.Results["tally_resync"].Status)
	}
}

func TestPipelineIsolatesPanics(t *testing.T) {
	panicking := &stubRunner{panics: true}
	trailing := &stubRunner{}

	pipeline := Pipeline{
		Name: "nightly",
		Tasks: []Task{
			{Name: "integrity_recompute", Runner: panicking},
			{Name: "session_expiry", Runner: trailing},
		},
	}

	summary, err := pipeline.Run(context.Background())
	if err == nil {
		t.Fatalf("expected pipeline failure when a task panics")
	}
	if trailing.runs != 1 {
		t.Fatalf("expected trailing task to run after panic, ran %d times", trailing.runs)
	}
	if summary.Results["integrity_recompute"].Status != TaskStatusPanicked {
		t.Fatalf("expected panicked status, got %s", summary.Results["integrity_recompute"].Status)
	}
}

func TestPipelineSuccessSummary(t *testing.T) {
	pipeline := Pipeline{
		Name: "hourly",
		Tasks: []Task{
			{Name: "a", Runner: &stubRunner{}},
			{Name: "b", Runner: &stubRunner{}},
		},
	}

	summary, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !summary.Succeeded() {
		t.Fatalf("expected succeeded summary")
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(summary.Results))
	}
}
