package ports

import (
	"context"
	"time"

	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	"arbiter/internal/shared/events"
)

type DilemmaRepository interface {
	CreateDilemma(ctx context.Context, dilemma entities.Dilemma) error
	GetDilemma(ctx context.Context, dilemmaID string) (entities.Dilemma, error)
	// CloseDilemma records the verdict and flips status to closed. It must
	// refuse dilemmas that are no longer active.
	CloseDilemma(ctx context.Context, dilemmaID string, verdict string, detail string, now time.Time) error
	ListActiveDilemmas(ctx context.Context) ([]entities.Dilemma, error)
}

type VoteRepository interface {
	SaveVote(ctx context.Context, vote entities.Vote) error
	GetVote(ctx context.Context, voteID string) (entities.Vote, error)
	GetVoteByIdentity(ctx context.Context, dilemmaID string, voterID string) (entities.Vote, bool, error)
	ListVotesByDilemma(ctx context.Context, dilemmaID string) ([]entities.Vote, error)
	// ListJudgedVotes returns the voter's most recent votes on closed
	// dilemmas that reached a clear verdict, newest first.
	ListJudgedVotes(ctx context.Context, voterID string, limit int) ([]entities.JudgedVote, error)
}

type TallyRepository interface {
	// AdjustTally applies a delta to one bucket, creating the row on first
	// touch.
	AdjustTally(ctx context.Context, dilemmaID string, choice string, deltaCount int64, deltaWeight float64, now time.Time) error
	ListTallies(ctx context.Context, dilemmaID string) ([]entities.Tally, error)
	// ReplaceTallies atomically swaps a dilemma's tallies for the given set.
	ReplaceTallies(ctx context.Context, dilemmaID string, tallies []entities.Tally, now time.Time) error
}

// VoterProfile is the projection of the agent row the weight calculator
// needs.
type VoterProfile struct {
	AgentID          string
	CreatedAt        time.Time
	EmailVerified    bool
	PhoneVerified    bool
	SubscriptionTier string
	FraudScore       int64
	Banned           bool
}

type AgentDirectory interface {
	GetVoterProfile(ctx context.Context, agentID string) (VoterProfile, error)
}

// VerdictThresholds mirrors the population-tier policy output this module
// consumes.
type VerdictThresholds struct {
	MinVotesForVerdict int
	VotingWindowDays   int
	ClearVerdictPct    float64
}

type ThresholdSource interface {
	CurrentThresholds(ctx context.Context) (VerdictThresholds, error)
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	VoteID      string
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type OutboxRecord struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	Status       string
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, now time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, envelope events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
