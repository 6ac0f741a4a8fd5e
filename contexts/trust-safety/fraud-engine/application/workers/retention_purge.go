package workers

import (
	"context"
	"log/slog"
	"time"

	"arbiter/contexts/trust-safety/fraud-engine/application"
	"arbiter/contexts/trust-safety/fraud-engine/ports"
)

const (
	// FingerprintRetention bounds how long device observations are kept.
	FingerprintRetention = 90 * 24 * time.Hour
	// RateLimitLogRetention bounds the request-log tail.
	RateLimitLogRetention = 7 * 24 * time.Hour
)

// FingerprintPurgeTask deletes device fingerprints past the retention
// window.
type FingerprintPurgeTask struct {
	Fingerprints ports.FingerprintRepository
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (t FingerprintPurgeTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	cutoff := t.Clock.Now().UTC().Add(-FingerprintRetention)
	purged, err := t.Fingerprints.PurgeFingerprintsBefore(ctx, cutoff)
	if err != nil {
		logger.Error("fingerprint purge failed",
			"event", "fraud_fingerprint_purge_failed",
			"module", "trust-safety/fraud-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	logger.Info("fingerprint purge completed",
		"event", "fraud_fingerprint_purge_completed",
		"module", "trust-safety/fraud-engine",
		"layer", "worker",
		"purged_count", purged,
		"cutoff", cutoff.Format(time.RFC3339),
	)
	return nil
}

// RateLimitLogPurgeTask deletes rate-limit log rows past the retention
// window.
type RateLimitLogPurgeTask struct {
	Logs   ports.RateLimitLogRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (t RateLimitLogPurgeTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	cutoff := t.Clock.Now().UTC().Add(-RateLimitLogRetention)
	purged, err := t.Logs.PurgeRateLimitLogsBefore(ctx, cutoff)
	if err != nil {
		logger.Error("rate limit log purge failed",
			"event", "fraud_rate_limit_purge_failed",
			"module", "trust-safety/fraud-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	logger.Info("rate limit log purge completed",
		"event", "fraud_rate_limit_purge_completed",
		"module", "trust-safety/fraud-engine",
		"layer", "worker",
		"purged_count", purged,
		"cutoff", cutoff.Format(time.RFC3339),
	)
	return nil
}
