package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"arbiter/contexts/community-trust/integrity-service/domain/entities"
	domainerrors "arbiter/contexts/community-trust/integrity-service/domain/errors"
	"arbiter/contexts/community-trust/integrity-service/ports"
)

const (
	// recencyFloorAge is the dilemma age at which the recency weight
	// bottoms out at 0.5.
	recencyFloorAge = 365 * 24 * time.Hour
	// participationSaturation is the vote count at which the participation
	// weight reaches 1.0.
	participationSaturation = 20

	mediumConfidenceFloor = 10
	highConfidenceFloor   = 30

	// trendMinDilemmas gates trend estimation; smaller samples are always
	// stable.
	trendMinDilemmas = 5
	trendShiftPoints = 5.0
)

// Service scores agents from their judged submissions.
type Service struct {
	Dilemmas ports.JudgedDilemmaReader
	Agents   ports.AgentDirectory
	Scores   ports.ScoreWriter
	Clock    ports.Clock
	Logger   *slog.Logger
}

// CalculateIntegrityScore computes the raw weighted mean, confidence band,
// shrunk display score, and trend for one agent. No eligible dilemmas means
// the neutral prior with low confidence, not zero.
func (s Service) CalculateIntegrityScore(ctx context.Context, agentID string) (entities.IntegrityScore, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return entities.IntegrityScore{}, domainerrors.ErrInvalidRequest
	}

	dilemmas, err := s.Dilemmas.ListJudgedDilemmas(ctx, agentID)
	if err != nil {
		return entities.IntegrityScore{}, err
	}
	now := s.Clock.Now().UTC()

	score := entities.IntegrityScore{
		AgentID:          agentID,
		RawScore:         entities.NeutralPrior,
		Confidence:       confidenceFor(len(dilemmas)),
		Trend:            entities.TrendStable,
		EligibleDilemmas: len(dilemmas),
		ComputedAt:       now,
	}
	if len(dilemmas) > 0 {
		var weightedSum, weightSum float64
		for _, dilemma := range dilemmas {
			weight := recencyWeight(now.Sub(dilemma.SubmittedAt)) * participationWeight(dilemma.VoteCount)
			weightedSum += weight * dilemma.FavorablePct
			weightSum += weight
		}
		if weightSum > 0 {
			score.RawScore = weightedSum / weightSum
		}
		score.Trend = trendFor(dilemmas)
	}
	score.DisplayScore = shrink(score.RawScore, score.Confidence)
	return score, nil
}

// GetIntegrity resolves the score for a read. Ghost-mode agents only expose
// it to internal callers; public reads get a typed hidden error.
func (s Service) GetIntegrity(ctx context.Context, agentID string, includeHidden bool) (entities.IntegrityScore, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return entities.IntegrityScore{}, domainerrors.ErrInvalidRequest
	}
	profile, err := s.Agents.GetAgentProfile(ctx, agentID)
	if err != nil {
		return entities.IntegrityScore{}, err
	}
	if profile.VisibilityMode == entities.VisibilityGhost && !includeHidden {
		return entities.IntegrityScore{}, domainerrors.ErrScoreHidden
	}
	return s.CalculateIntegrityScore(ctx, agentID)
}

// RecomputeAndPersist recalculates one agent and writes the display score
// back to the agent row.
func (s Service) RecomputeAndPersist(ctx context.Context, agentID string) (entities.IntegrityScore, error) {
	score, err := s.CalculateIntegrityScore(ctx, agentID)
	if err != nil {
		return entities.IntegrityScore{}, err
	}
	if err := s.Scores.SaveDisplayedScore(ctx, agentID, score.DisplayScore, score.ComputedAt); err != nil {
		return entities.IntegrityScore{}, err
	}
	return score, nil
}

func recencyWeight(age time.Duration) float64 {
	if age <= 0 {
		return 1.0
	}
	if age >= recencyFloorAge {
		return 0.5
	}
	return 1.0 - 0.5*(age.Hours()/recencyFloorAge.Hours())
}

func participationWeight(voteCount int64) float64 {
	frac := float64(voteCount) / participationSaturation
	if frac > 1 {
		frac = 1
	}
	return 0.5 + 0.5*frac
}

func confidenceFor(dilemmaCount int) entities.Confidence {
	switch {
	case dilemmaCount >= highConfidenceFloor:
		return entities.ConfidenceHigh
	case dilemmaCount >= mediumConfidenceFloor:
		return entities.ConfidenceMedium
	default:
		return entities.ConfidenceLow
	}
}

// shrink pulls the raw score toward the neutral prior: 0.7 raw weight at
// low confidence, 0.9 at medium, unshrunk at high.
func shrink(raw float64, confidence entities.Confidence) float64 {
	switch confidence {
	case entities.ConfidenceLow:
		return entities.NeutralPrior + 0.7*(raw-entities.NeutralPrior)
	case entities.ConfidenceMedium:
		return entities.NeutralPrior + 0.9*(raw-entities.NeutralPrior)
	default:
		return raw
	}
}

// trendFor compares the unweighted mean of the chronologically older half
// against the newer half.
func trendFor(dilemmas []entities.JudgedDilemma) entities.Trend {
	if len(dilemmas) < trendMinDilemmas {
		return entities.TrendStable
	}
	ordered := append([]entities.JudgedDilemma(nil), dilemmas...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
	})

	mid := len(ordered) / 2
	olderMean := meanFavorable(ordered[:mid])
	newerMean := meanFavorable(ordered[mid:])
	switch {
	case newerMean-olderMean > trendShiftPoints:
		return entities.TrendImproving
	case olderMean-newerMean > trendShiftPoints:
		return entities.TrendDeclining
	default:
		return entities.TrendStable
	}
}

func meanFavorable(dilemmas []entities.JudgedDilemma) float64 {
	if len(dilemmas) == 0 {
		return 0
	}
	var sum float64
	for _, dilemma := range dilemmas {
		sum += dilemma.FavorablePct
	}
	return sum / float64(len(dilemmas))
}
