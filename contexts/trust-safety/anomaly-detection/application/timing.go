package application

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"arbiter/contexts/trust-safety/anomaly-detection/domain/entities"
	domainerrors "arbiter/contexts/trust-safety/anomaly-detection/domain/errors"
	"arbiter/contexts/trust-safety/anomaly-detection/ports"
)

const (
	// TimingWindow is the sliding window the detector inspects.
	TimingWindow = 60 * time.Minute
	// timingMinVotes is the minimum sample to compute interval statistics.
	// Fewer votes is inconclusive, never suspicious.
	timingMinVotes = 3

	meanIntervalFloor   = 5 * time.Second
	stddevIntervalFloor = 2 * time.Second
	stddevMinVotes      = 5
	burstVoteCeiling    = 20

	// Reported event types, matching the fraud engine's registry.
	eventRapidVote        = "rapid_vote"
	eventSuspiciousTiming = "suspicious_timing"
)

const (
	reasonRapidMeanInterval = "mean_interval_under_5s"
	reasonMechanicalCadence = "interval_stddev_under_2s"
	reasonBurstVolume       = "over_20_votes_in_window"
)

// TimingDetector flags rapid or mechanical voting cadence for one agent over
// the sliding window. Findings go to the fraud engine; the detector itself
// never bans.
type TimingDetector struct {
	Votes  ports.VoteActivityReader
	Fraud  ports.FraudReporter
	Clock  ports.Clock
	Logger *slog.Logger
}

// AnalyzeAgent reviews the agent's in-window votes and reports a fraud event
// per finding. Rapid volume maps to rapid_vote; mechanical cadence maps to
// suspicious_timing.
func (d TimingDetector) AnalyzeAgent(ctx context.Context, agentID string) (entities.TimingAnalysis, error) {
	logger := ResolveLogger(d.Logger)
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return entities.TimingAnalysis{}, domainerrors.ErrInvalidRequest
	}

	windowEnd := d.Clock.Now().UTC()
	windowStart := windowEnd.Add(-TimingWindow)
	votes, err := d.Votes.ListVotesInWindow(ctx, agentID, windowStart, windowEnd)
	if err != nil {
		return entities.TimingAnalysis{}, err
	}

	analysis := entities.TimingAnalysis{
		AgentID:     agentID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		VoteCount:   len(votes),
	}
	if len(votes) < timingMinVotes {
		return analysis, nil
	}

	castTimes := make([]time.Time, 0, len(votes))
	for _, vote := range votes {
		castTimes = append(castTimes, vote.CastAt)
	}
	sort.Slice(castTimes, func(i, j int) bool { return castTimes[i].Before(castTimes[j]) })

	intervals := make([]float64, 0, len(castTimes)-1)
	for i := 1; i < len(castTimes); i++ {
		intervals = append(intervals, castTimes[i].Sub(castTimes[i-1]).Seconds())
	}
	analysis.MeanIntervalSec = mean(intervals)
	analysis.StddevIntervalS = stddev(intervals)

	if analysis.MeanIntervalSec < meanIntervalFloor.Seconds() {
		analysis.Reasons = append(analysis.Reasons, reasonRapidMeanInterval)
	}
	if analysis.StddevIntervalS < stddevIntervalFloor.Seconds() && len(votes) >= stddevMinVotes {
		analysis.Reasons = append(analysis.Reasons, reasonMechanicalCadence)
	}
	if len(votes) > burstVoteCeiling {
		analysis.Reasons = append(analysis.Reasons, reasonBurstVolume)
	}
	analysis.Suspicious = len(analysis.Reasons) > 0
	if !analysis.Suspicious {
		return analysis, nil
	}

	logger.Warn("suspicious voting cadence detected",
		"event", "anomaly_timing_flagged",
		"module", "trust-safety/anomaly-detection",
		"layer", "application",
		"agent_id", agentID,
		"vote_count", analysis.VoteCount,
		"mean_interval_sec", analysis.MeanIntervalSec,
		"stddev_interval_sec", analysis.StddevIntervalS,
		"reasons", strings.Join(analysis.Reasons, ","),
	)

	eventType := eventSuspiciousTiming
	for _, reason := range analysis.Reasons {
		if reason == reasonRapidMeanInterval || reason == reasonBurstVolume {
			eventType = eventRapidVote
			break
		}
	}
	metadata := map[string]any{
		"vote_count":          analysis.VoteCount,
		"mean_interval_sec":   analysis.MeanIntervalSec,
		"stddev_interval_sec": analysis.StddevIntervalS,
		"reasons":             analysis.Reasons,
	}
	if err := d.Fraud.ReportFraudEvent(ctx, agentID, eventType, metadata); err != nil {
		return entities.TimingAnalysis{}, err
	}
	return analysis, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}
