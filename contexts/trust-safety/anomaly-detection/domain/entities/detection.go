package entities

import "time"

// VoteObservation is the projection of one cast vote the detectors read.
type VoteObservation struct {
	DilemmaID string
	AgentID   string
	Choice    string
	CastAt    time.Time
}

// TimingAnalysis is the outcome of one agent's sliding-window review.
type TimingAnalysis struct {
	AgentID         string
	WindowStart     time.Time
	WindowEnd       time.Time
	VoteCount       int
	MeanIntervalSec float64
	StddevIntervalS float64
	Suspicious      bool
	Reasons         []string
}

// CorrelationResult is the outcome of one pairwise comparison. Score is
// 0-100.
type CorrelationResult struct {
	AgentIDA           string
	AgentIDB           string
	SharedDilemmaCount int
	IdenticalVoteCount int
	CloseInTimeCount   int
	Score              float64
	Flagged            bool
}

// VoteCorrelationFlag is the advisory row persisted for moderator review.
// It never bans either party on its own.
type VoteCorrelationFlag struct {
	FlagID             string
	AgentIDA           string
	AgentIDB           string
	CorrelationScore   float64
	SharedDilemmaCount int
	IdenticalVoteCount int
	FlaggedAt          time.Time
}
