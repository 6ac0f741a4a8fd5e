package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"arbiter/contexts/trust-safety/anomaly-detection/application"
	"arbiter/contexts/trust-safety/anomaly-detection/ports"
)

// correlationActivityWindow selects which agents count as recently active.
const correlationActivityWindow = 24 * time.Hour

// CorrelationSweepTask compares every pair among a bounded sample of
// recently active voters. The pair loop is O(n^2) on purpose; SampleSize
// keeps the cost fixed.
type CorrelationSweepTask struct {
	Detector   application.CorrelationDetector
	Votes      ports.VoteActivityReader
	Clock      ports.Clock
	SampleSize int
	Logger     *slog.Logger
}

func (t CorrelationSweepTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	sample := t.SampleSize
	if sample <= 0 {
		sample = 200
	}
	since := t.Clock.Now().UTC().Add(-correlationActivityWindow)
	voters, err := t.Votes.ListRecentVoters(ctx, since, sample)
	if err != nil {
		return err
	}

	pairs := 0
	flagged := 0
	failed := 0
	for i := 0; i < len(voters); i++ {
		for j := i + 1; j < len(voters); j++ {
			pairs++
			result, err := t.Detector.AnalyzePair(ctx, voters[i], voters[j])
			if err != nil {
				failed++
				logger.Error("pair correlation failed",
					"event", "anomaly_correlation_sweep_pair_failed",
					"module", "trust-safety/anomaly-detection",
					"layer", "worker",
					"agent_id_a", voters[i],
					"agent_id_b", voters[j],
					"error", err.Error(),
				)
				continue
			}
			if result.Flagged {
				flagged++
			}
		}
	}

	logger.Info("correlation sweep completed",
		"event", "anomaly_correlation_sweep_completed",
		"module", "trust-safety/anomaly-detection",
		"layer", "worker",
		"voter_count", len(voters),
		"pair_count", pairs,
		"flagged_count", flagged,
		"failed_count", failed,
	)
	if failed > 0 {
		return fmt.Errorf("correlation sweep: %d of %d pairs failed", failed, pairs)
	}
	return nil
}
