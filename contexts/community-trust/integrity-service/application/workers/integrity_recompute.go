package workers

import (
	"context"
	"fmt"
	"log/slog"

	"arbiter/contexts/community-trust/integrity-service/application"
	"arbiter/contexts/community-trust/integrity-service/ports"
)

// IntegrityRecomputeTask recomputes every agent's display score and writes
// it back to the agent row. Re-running without new data produces identical
// results.
type IntegrityRecomputeTask struct {
	Service application.Service
	Agents  ports.AgentDirectory
	Logger  *slog.Logger
}

func (t IntegrityRecomputeTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	agentIDs, err := t.Agents.ListAgentIDs(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, agentID := range agentIDs {
		if _, err := t.Service.RecomputeAndPersist(ctx, agentID); err != nil {
			failed++
			logger.Error("integrity recompute failed for agent",
				"event", "integrity_recompute_agent_failed",
				"module", "community-trust/integrity-service",
				"layer", "worker",
				"agent_id", agentID,
				"error", err.Error(),
			)
		}
	}

	logger.Info("integrity recompute completed",
		"event", "integrity_recompute_completed",
		"module", "community-trust/integrity-service",
		"layer", "worker",
		"agent_count", len(agentIDs),
		"failed_count", failed,
	)
	if failed > 0 {
		return fmt.Errorf("integrity recompute: %d of %d agents failed", failed, len(agentIDs))
	}
	return nil
}
