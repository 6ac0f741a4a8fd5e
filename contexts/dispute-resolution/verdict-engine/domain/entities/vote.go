package entities

import "time"

// Vote is one ledger row. At most one active vote exists per
// (dilemma, voter); weight is a cast-time snapshot and is never recomputed
// retroactively outside an explicit resync.
type Vote struct {
	VoteID    string
	DilemmaID string
	VoterID   string
	Choice    string
	Weight    float64
	CastAt    time.Time
	UpdatedAt time.Time
}

// JudgedVote pairs a historical vote with the final verdict of its dilemma,
// for the consistency factor.
type JudgedVote struct {
	DilemmaID    string
	Choice       string
	FinalVerdict string
	CastAt       time.Time
}

// WeightBreakdown exposes every multiplicative factor behind a voter's
// weight.
type WeightBreakdown struct {
	VoterID            string
	BaseFactor         float64
	AgeFactor          float64
	VerificationFactor float64
	ConsistencyFactor  float64
	FraudPenalty       float64
	Weight             float64
}
