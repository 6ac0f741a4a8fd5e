package workers

import (
	"context"
	"log/slog"
	"time"

	application "arbiter/contexts/dispute-resolution/verdict-engine/application"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

// IdempotencyPurgeTask drops expired vote idempotency records.
type IdempotencyPurgeTask struct {
	Idempotency ports.IdempotencyStore
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (t IdempotencyPurgeTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	now := time.Now().UTC()
	if t.Clock != nil {
		now = t.Clock.Now().UTC()
	}
	purged, err := t.Idempotency.PurgeExpired(ctx, now)
	if err != nil {
		logger.Error("idempotency purge failed",
			"event", "verdict_idempotency_purge_failed",
			"module", "dispute-resolution/verdict-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	logger.Info("idempotency purge completed",
		"event", "verdict_idempotency_purge_completed",
		"module", "dispute-resolution/verdict-engine",
		"layer", "worker",
		"purged_count", purged,
	)
	return nil
}
