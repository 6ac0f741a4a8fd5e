package entities

import "time"

// BanCeiling is the fraud score at which an agent is automatically
// suspended.
const BanCeiling int64 = 80

type FraudEventType string

const (
	EventRapidVote          FraudEventType = "rapid_vote"
	EventVotePatternMatch   FraudEventType = "vote_pattern_match"
	EventFailedVerification FraudEventType = "failed_verification"
	EventDuplicateDevice    FraudEventType = "duplicate_device"
	EventBlacklistedDomain  FraudEventType = "blacklisted_domain"
	EventSuspiciousTiming   FraudEventType = "suspicious_timing"

	// EventManualReset marks an administrative unban/reset in the audit
	// trail. It is never accepted from external reporters.
	EventManualReset FraudEventType = "manual_reset"
	// EventCeilingEnforced marks a batch-applied ban for an agent found at
	// or over the ceiling without the banned flag set.
	EventCeilingEnforced FraudEventType = "ceiling_enforced"
)

var eventDeltas = map[FraudEventType]int64{
	EventRapidVote:          5,
	EventVotePatternMatch:   30,
	EventFailedVerification: 10,
	EventDuplicateDevice:    20,
	EventBlacklistedDomain:  15,
	EventSuspiciousTiming:   5,
}

// DeltaFor returns the fixed score delta for an externally reportable event
// type. Unknown types are rejected by the caller.
func DeltaFor(eventType FraudEventType) (int64, bool) {
	delta, ok := eventDeltas[eventType]
	return delta, ok
}

// FraudEvent is one append-only audit row. The agent's score is always the
// sum of deltas since the last manual reset.
type FraudEvent struct {
	EventID       string
	AgentID       string
	EventType     FraudEventType
	ScoreDelta    int64
	PreviousScore int64
	NewScore      int64
	Metadata      map[string]any
	OccurredAt    time.Time
}
