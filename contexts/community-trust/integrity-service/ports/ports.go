package ports

import (
	"context"
	"time"

	"arbiter/contexts/community-trust/integrity-service/domain/entities"
)

// JudgedDilemmaReader projects resolved submissions for scoring. Hidden
// dilemmas never appear here.
type JudgedDilemmaReader interface {
	ListJudgedDilemmas(ctx context.Context, agentID string) ([]entities.JudgedDilemma, error)
}

type AgentDirectory interface {
	GetAgentProfile(ctx context.Context, agentID string) (entities.AgentProfile, error)
	ListAgentIDs(ctx context.Context) ([]string, error)
}

// ScoreWriter persists the display score back onto the agent row.
type ScoreWriter interface {
	SaveDisplayedScore(ctx context.Context, agentID string, score float64, now time.Time) error
}

type Clock interface {
	Now() time.Time
}
