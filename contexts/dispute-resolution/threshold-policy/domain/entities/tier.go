package entities

// ThresholdTier is one population-range row of the verdict policy table.
// MaxAgents nil means the range is unbounded above.
type ThresholdTier struct {
	Name               string
	MinAgents          int64
	MaxAgents          *int64
	MinVotesForVerdict int
	VotingWindowDays   int
	ClearVerdictPct    float64
}

// Matches reports whether the population count falls inside this tier.
func (t ThresholdTier) Matches(population int64) bool {
	if population < t.MinAgents {
		return false
	}
	return t.MaxAgents == nil || population <= *t.MaxAgents
}

const (
	ThresholdSourceTierTable = "tier_table"
	ThresholdSourceCache     = "cache"
	ThresholdSourceFallback  = "fallback"
)

// VerdictThresholds is the resolved policy handed to finalization callers.
type VerdictThresholds struct {
	Tier               string
	MinVotesForVerdict int
	VotingWindowDays   int
	ClearVerdictPct    float64
	Population         int64
	Source             string
}
