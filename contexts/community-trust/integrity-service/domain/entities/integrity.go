package entities

import "time"

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// NeutralPrior is the score assigned with no evidence and the shrinkage
// target for thin samples.
const NeutralPrior = 50.0

// JudgedDilemma is one resolved, non-hidden dilemma the agent submitted.
// FavorablePct is the share of weighted verdict mass favorable to the
// submitter, 0-100.
type JudgedDilemma struct {
	DilemmaID    string
	SubmittedAt  time.Time
	FavorablePct float64
	VoteCount    int64
}

// IntegrityScore is the full scoring result for one agent.
type IntegrityScore struct {
	AgentID          string
	RawScore         float64
	DisplayScore     float64
	Confidence       Confidence
	Trend            Trend
	EligibleDilemmas int
	ComputedAt       time.Time
}

type VisibilityMode string

const (
	VisibilityPublic VisibilityMode = "public"
	VisibilityGhost  VisibilityMode = "ghost"
)

// AgentProfile is the slice of the agent row this module reads.
type AgentProfile struct {
	AgentID        string
	VisibilityMode VisibilityMode
}
