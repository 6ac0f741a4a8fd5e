package entities

import "time"

type DilemmaStatus string

const (
	StatusActive DilemmaStatus = "active"
	StatusClosed DilemmaStatus = "closed"
	// Escalation states are written by external moderation flows; this core
	// only ever moves active to closed.
	StatusArchived     DilemmaStatus = "archived"
	StatusFlagged      DilemmaStatus = "flagged"
	StatusSupremeCourt DilemmaStatus = "supreme_court"
)

type DilemmaCategory string

const (
	CategoryStandard     DilemmaCategory = "standard"
	CategoryRelationship DilemmaCategory = "relationship"
)

// Outcome buckets. Standard dilemmas use the first two; relationship
// dilemmas add the mutual buckets.
const (
	ChoiceNotAtFault     = "not_at_fault"
	ChoiceAtFault        = "at_fault"
	ChoiceBothAtFault    = "both_at_fault"
	ChoiceNeitherAtFault = "neither_at_fault"

	// VerdictSplit is the finalization outcome when no bucket clears the
	// consensus threshold. It is never a castable choice.
	VerdictSplit = "split"
)

// ChoicesFor returns the castable outcome buckets for a category.
func ChoicesFor(category DilemmaCategory) []string {
	if category == CategoryRelationship {
		return []string{ChoiceNotAtFault, ChoiceAtFault, ChoiceBothAtFault, ChoiceNeitherAtFault}
	}
	return []string{ChoiceNotAtFault, ChoiceAtFault}
}

// ValidChoice reports whether a choice is castable for the category.
func ValidChoice(category DilemmaCategory, choice string) bool {
	for _, candidate := range ChoicesFor(category) {
		if candidate == choice {
			return true
		}
	}
	return false
}

// Dilemma is one submitted case. Once closed, verdict and tallies are
// immutable for this core.
type Dilemma struct {
	DilemmaID     string
	SubmitterID   string
	Category      DilemmaCategory
	Status        DilemmaStatus
	Hidden        bool
	ClosesAt      time.Time
	FinalVerdict  string
	VerdictDetail string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Tally is the denormalized per-choice aggregate, rebuilt from the vote
// ledger by the resync sweep.
type Tally struct {
	DilemmaID     string
	Choice        string
	VoteCount     int64
	WeightedTotal float64
	UpdatedAt     time.Time
}
