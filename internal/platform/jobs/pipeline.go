package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Runner is one batch unit of work. Module worker structs satisfy this with
// their RunOnce methods.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// Task pairs a runner with the stable name used in logs and summaries.
type Task struct {
	Name   string
	Runner Runner
}

type TaskStatus string

const (
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusPanicked  TaskStatus = "panicked"
)

// TaskResult records one task outcome for the pipeline summary.
type TaskResult struct {
	Task     string
	Status   TaskStatus
	Duration time.Duration
	Error    string
}

// Summary is the per-task outcome map returned to the scheduler for
// logging and alerting.
type Summary struct {
	Pipeline  string
	StartedAt time.Time
	Results   map[string]TaskResult
	Failed    int
}

func (s Summary) Succeeded() bool {
	return s.Failed == 0
}

// Clock abstracts wall time so pipeline tests can run deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Pipeline executes its tasks sequentially. A failure or panic in one task is
// recorded and does not prevent subsequent tasks from running; the pipeline
// as a whole reports failure if any task failed.
type Pipeline struct {
	Name   string
	Tasks  []Task
	Clock  Clock
	Logger *slog.Logger
}

func (p Pipeline) Run(ctx context.Context) (Summary, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := p.Clock
	if clock == nil {
		clock = systemClock{}
	}

	summary := Summary{
		Pipeline:  p.Name,
		StartedAt: clock.Now(),
		Results:   make(map[string]TaskResult, len(p.Tasks)),
	}
	logger.Info("pipeline started",
		"event", "pipeline_started",
		"module", "internal/platform/jobs",
		"layer", "platform",
		"pipeline", p.Name,
		"task_count", len(p.Tasks),
	)

	for _, task := range p.Tasks {
		result := p.runTask(ctx, clock, task)
		summary.Results[task.Name] = result
		if result.Status != TaskStatusSucceeded {
			summary.Failed++
			logger.Error("pipeline task failed",
				"event", "pipeline_task_failed",
				"module", "internal/platform/jobs",
				"layer", "platform",
				"pipeline", p.Name,
				"task", task.Name,
				"status", string(result.Status),
				"error", result.Error,
			)
			continue
		}
		logger.Info("pipeline task completed",
			"event", "pipeline_task_completed",
			"module", "internal/platform/jobs",
			"layer", "platform",
			"pipeline", p.Name,
			"task", task.Name,
			"duration", result.Duration.String(),
		)
	}

	if summary.Failed > 0 {
		err := fmt.Errorf("pipeline %s: %d of %d tasks failed", p.Name, summary.Failed, len(p.Tasks))
		logger.Error("pipeline completed with failures",
			"event", "pipeline_completed_failed",
			"module", "internal/platform/jobs",
			"layer", "platform",
			"pipeline", p.Name,
			"failed_count", summary.Failed,
			"task_count", len(p.Tasks),
		)
		return summary, err
	}

	logger.Info("pipeline completed",
		"event", "pipeline_completed",
		"module", "internal/platform/jobs",
		"layer", "platform",
		"pipeline", p.Name,
		"task_count", len(p.Tasks),
	)
	return summary, nil
}

func (p Pipeline) runTask(ctx context.Context, clock Clock, task Task) (result TaskResult) {
	started := clock.Now()
	result = TaskResult{Task: task.Name, Status: TaskStatusSucceeded}

	defer func() {
		result.Duration = clock.Now().Sub(started)
		if recovered := recover(); recovered != nil {
			result.Status = TaskStatusPanicked
			result.Error = fmt.Sprintf("panic: %v", recovered)
		}
	}()

	if err := task.Runner.RunOnce(ctx); err != nil {
		result.Status = TaskStatusFailed
		result.Error = err.Error()
	}
	return result
}
