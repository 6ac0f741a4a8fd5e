package ports

import (
	"context"
	"time"

	"arbiter/contexts/trust-safety/anomaly-detection/domain/entities"
)

// VoteActivityReader projects the vote ledger for detector consumption.
type VoteActivityReader interface {
	ListVotesInWindow(ctx context.Context, agentID string, from, to time.Time) ([]entities.VoteObservation, error)
	ListVotesByAgent(ctx context.Context, agentID string, limit int) ([]entities.VoteObservation, error)
	ListRecentVoters(ctx context.Context, since time.Time, limit int) ([]string, error)
}

type CorrelationFlagRepository interface {
	UpsertFlag(ctx context.Context, flag entities.VoteCorrelationFlag) error
	ListFlags(ctx context.Context, limit int) ([]entities.VoteCorrelationFlag, error)
}

// FraudReporter forwards detector findings to the fraud engine. Detectors
// never mutate fraud state directly.
type FraudReporter interface {
	ReportFraudEvent(ctx context.Context, agentID string, eventType string, metadata map[string]any) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
