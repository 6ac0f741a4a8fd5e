package application

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"arbiter/contexts/trust-safety/anomaly-detection/domain/entities"
	domainerrors "arbiter/contexts/trust-safety/anomaly-detection/domain/errors"
	"arbiter/contexts/trust-safety/anomaly-detection/ports"
)

const (
	// minSharedDilemmas is the anti-false-positive floor. Pairs below it
	// always score 0.
	minSharedDilemmas = 5
	// fullConfidenceShared is the sample size for an unhalved score.
	fullConfidenceShared = 10

	// Score components on the 0-100 scale: 70% identical choices, 30%
	// close-in-time casting.
	identicalVoteWeight = 70.0
	closeTimingWeight   = 30.0
	closeCastInterval   = 5 * time.Minute

	// FlagThreshold is the score at which an advisory flag is persisted.
	FlagThreshold = 80.0

	// voteHistoryDepth bounds how much of each agent's ledger one pairwise
	// comparison loads.
	voteHistoryDepth = 200

	eventVotePatternMatch = "vote_pattern_match"
)

// CorrelationDetector scores pairs of agents by shared-dilemma voting
// behavior. High scores persist an advisory flag and report fraud events for
// both parties; correlation is circumstantial, so it never bans.
type CorrelationDetector struct {
	Votes  ports.VoteActivityReader
	Flags  ports.CorrelationFlagRepository
	Fraud  ports.FraudReporter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// AnalyzePair compares two agents' vote histories. Pair order does not
// matter; the persisted flag always carries the lexicographically smaller
// agent first.
func (d CorrelationDetector) AnalyzePair(ctx context.Context, agentIDA, agentIDB string) (entities.CorrelationResult, error) {
	logger := ResolveLogger(d.Logger)
	agentIDA = strings.TrimSpace(agentIDA)
	agentIDB = strings.TrimSpace(agentIDB)
	if agentIDA == "" || agentIDB == "" {
		return entities.CorrelationResult{}, domainerrors.ErrInvalidRequest
	}
	if agentIDA == agentIDB {
		return entities.CorrelationResult{}, domainerrors.ErrSelfComparison
	}
	if agentIDA > agentIDB {
		agentIDA, agentIDB = agentIDB, agentIDA
	}

	votesA, err := d.Votes.ListVotesByAgent(ctx, agentIDA, voteHistoryDepth)
	if err != nil {
		return entities.CorrelationResult{}, err
	}
	votesB, err := d.Votes.ListVotesByAgent(ctx, agentIDB, voteHistoryDepth)
	if err != nil {
		return entities.CorrelationResult{}, err
	}

	byDilemmaA := make(map[string]entities.VoteObservation, len(votesA))
	for _, vote := range votesA {
		byDilemmaA[vote.DilemmaID] = vote
	}

	result := entities.CorrelationResult{AgentIDA: agentIDA, AgentIDB: agentIDB}
	for _, voteB := range votesB {
		voteA, shared := byDilemmaA[voteB.DilemmaID]
		if !shared {
			continue
		}
		result.SharedDilemmaCount++
		if voteA.Choice == voteB.Choice {
			result.IdenticalVoteCount++
		}
		gap := voteA.CastAt.Sub(voteB.CastAt)
		if math.Abs(gap.Seconds()) <= closeCastInterval.Seconds() {
			result.CloseInTimeCount++
		}
	}

	if result.SharedDilemmaCount < minSharedDilemmas {
		return result, nil
	}

	shared := float64(result.SharedDilemmaCount)
	result.Score = (identicalVoteWeight*float64(result.IdenticalVoteCount) +
		closeTimingWeight*float64(result.CloseInTimeCount)) / shared
	if result.SharedDilemmaCount < fullConfidenceShared {
		result.Score /= 2
	}
	if result.Score < FlagThreshold {
		return result, nil
	}
	result.Flagged = true

	flagID, err := d.IDGen.NewID(ctx)
	if err != nil {
		return entities.CorrelationResult{}, err
	}
	flag := entities.VoteCorrelationFlag{
		FlagID:             flagID,
		AgentIDA:           agentIDA,
		AgentIDB:           agentIDB,
		CorrelationScore:   result.Score,
		SharedDilemmaCount: result.SharedDilemmaCount,
		IdenticalVoteCount: result.IdenticalVoteCount,
		FlaggedAt:          d.Clock.Now().UTC(),
	}
	if err := d.Flags.UpsertFlag(ctx, flag); err != nil {
		return entities.CorrelationResult{}, err
	}

	logger.Warn("correlated voting pair flagged",
		"event", "anomaly_correlation_flagged",
		"module", "trust-safety/anomaly-detection",
		"layer", "application",
		"agent_id_a", agentIDA,
		"agent_id_b", agentIDB,
		"correlation_score", result.Score,
		"shared_dilemmas", result.SharedDilemmaCount,
	)

	for _, agentID := range []string{agentIDA, agentIDB} {
		paired := agentIDB
		if agentID == agentIDB {
			paired = agentIDA
		}
		metadata := map[string]any{
			"correlation_score":    result.Score,
			"shared_dilemma_count": result.SharedDilemmaCount,
			"identical_vote_count": result.IdenticalVoteCount,
			"paired_agent_id":      paired,
		}
		if err := d.Fraud.ReportFraudEvent(ctx, agentID, eventVotePatternMatch, metadata); err != nil {
			return entities.CorrelationResult{}, err
		}
	}
	return result, nil
}

// ListFlags returns the moderator review feed, newest first.
func (d CorrelationDetector) ListFlags(ctx context.Context, limit int) ([]entities.VoteCorrelationFlag, error) {
	if limit <= 0 {
		limit = 50
	}
	return d.Flags.ListFlags(ctx, limit)
}
