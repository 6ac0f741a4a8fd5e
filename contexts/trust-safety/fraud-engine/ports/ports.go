package ports

import (
	"context"
	"time"

	"arbiter/contexts/trust-safety/fraud-engine/domain/entities"
)

// FraudScoreUpdate is the result of one atomic score mutation.
type FraudScoreUpdate struct {
	AgentID       string
	PreviousScore int64
	NewScore      int64
	Banned        bool
	NewlyBanned   bool
}

// AgentRepository owns the agents table. ApplyFraudDelta and ResetFraudState
// must serialize per agent: two concurrent deltas may never both observe the
// same previous score.
type AgentRepository interface {
	GetAgent(ctx context.Context, agentID string) (entities.Agent, error)
	ApplyFraudDelta(
		ctx context.Context,
		agentID string,
		delta int64,
		banReason string,
		now time.Time,
	) (FraudScoreUpdate, error)
	ResetFraudState(
		ctx context.Context,
		agentID string,
		score int64,
		now time.Time,
	) (FraudScoreUpdate, error)
	ListBanCandidates(ctx context.Context) ([]entities.Agent, error)
}

type FraudEventRepository interface {
	AppendEvent(ctx context.Context, event entities.FraudEvent) error
	ListEventsByAgent(ctx context.Context, agentID string, limit int) ([]entities.FraudEvent, error)
}

type FingerprintRepository interface {
	SaveFingerprint(ctx context.Context, fingerprint entities.DeviceFingerprint) error
	ListAgentsByHash(ctx context.Context, fingerprintHash string) ([]string, error)
	PurgeFingerprintsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type RateLimitLogRepository interface {
	PurgeRateLimitLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
