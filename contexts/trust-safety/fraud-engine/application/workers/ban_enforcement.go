package workers

import (
	"context"
	"log/slog"

	"arbiter/contexts/trust-safety/fraud-engine/application"
)

// BanEnforcementTask sweeps for agents at or over the fraud ceiling whose
// banned flag is not yet set. The inline scoring path normally bans first;
// this catches rows mutated by older code paths or manual edits.
type BanEnforcementTask struct {
	Service application.Service
	Logger  *slog.Logger
}

func (t BanEnforcementTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	banned, err := t.Service.EnforceBanCeiling(ctx)
	if err != nil {
		logger.Error("ban enforcement sweep failed",
			"event", "fraud_ban_enforcement_failed",
			"module", "trust-safety/fraud-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	logger.Info("ban enforcement sweep completed",
		"event", "fraud_ban_enforcement_completed",
		"module", "trust-safety/fraud-engine",
		"layer", "worker",
		"banned_count", banned,
	)
	return nil
}
