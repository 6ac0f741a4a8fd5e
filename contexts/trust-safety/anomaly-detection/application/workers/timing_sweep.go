package workers

import (
	"context"
	"fmt"
	"log/slog"

	"arbiter/contexts/trust-safety/anomaly-detection/application"
	"arbiter/contexts/trust-safety/anomaly-detection/ports"
)

// timingSweepVoterCap bounds one sweep so a hot hour cannot stall the
// pipeline.
const timingSweepVoterCap = 1000

// TimingSweepTask runs the timing detector over every agent that voted in
// the last window. Per-agent failures are logged and counted; the remaining
// agents still run.
type TimingSweepTask struct {
	Detector application.TimingDetector
	Votes    ports.VoteActivityReader
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (t TimingSweepTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	since := t.Clock.Now().UTC().Add(-application.TimingWindow)
	voters, err := t.Votes.ListRecentVoters(ctx, since, timingSweepVoterCap)
	if err != nil {
		return err
	}

	flagged := 0
	failed := 0
	for _, agentID := range voters {
		analysis, err := t.Detector.AnalyzeAgent(ctx, agentID)
		if err != nil {
			failed++
			logger.Error("timing analysis failed",
				"event", "anomaly_timing_sweep_agent_failed",
				"module", "trust-safety/anomaly-detection",
				"layer", "worker",
				"agent_id", agentID,
				"error", err.Error(),
			)
			continue
		}
		if analysis.Suspicious {
			flagged++
		}
	}

	logger.Info("timing sweep completed",
		"event", "anomaly_timing_sweep_completed",
		"module", "trust-safety/anomaly-detection",
		"layer", "worker",
		"voter_count", len(voters),
		"flagged_count", flagged,
		"failed_count", failed,
	)
	if failed > 0 {
		return fmt.Errorf("timing sweep: %d of %d agents failed", failed, len(voters))
	}
	return nil
}
