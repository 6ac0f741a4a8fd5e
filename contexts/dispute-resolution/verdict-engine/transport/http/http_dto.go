package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateDilemmaRequest struct {
	Category string `json:"category"`
	Hidden   bool   `json:"hidden,omitempty"`
}

type DilemmaResponse struct {
	DilemmaID     string     `json:"dilemma_id"`
	SubmitterID   string     `json:"submitter_id"`
	Category      string     `json:"category"`
	Status        string     `json:"status"`
	Hidden        bool       `json:"hidden,omitempty"`
	ClosesAt      string     `json:"closes_at"`
	FinalVerdict  string     `json:"final_verdict,omitempty"`
	VerdictDetail string     `json:"verdict_detail,omitempty"`
	TotalVotes    int64      `json:"total_votes"`
	TotalWeight   float64    `json:"total_weight"`
	Tallies       []TallyDTO `json:"tallies,omitempty"`
}

type TallyDTO struct {
	Choice        string  `json:"choice"`
	VoteCount     int64   `json:"vote_count"`
	WeightedTotal float64 `json:"weighted_total"`
	WeightedPct   float64 `json:"weighted_pct"`
}

type CastVoteRequest struct {
	Choice string `json:"choice"`
}

type VoteResponse struct {
	VoteID    string  `json:"vote_id"`
	DilemmaID string  `json:"dilemma_id"`
	VoterID   string  `json:"voter_id"`
	Choice    string  `json:"choice"`
	Weight    float64 `json:"weight"`
	Replayed  bool    `json:"replayed"`
	WasUpdate bool    `json:"was_update"`
}

type VoteWeightResponse struct {
	VoterID            string  `json:"voter_id"`
	BaseFactor         float64 `json:"base_factor"`
	AgeFactor          float64 `json:"age_factor"`
	VerificationFactor float64 `json:"verification_factor"`
	ConsistencyFactor  float64 `json:"consistency_factor"`
	FraudPenalty       float64 `json:"fraud_penalty"`
	Weight             float64 `json:"weight"`
}

type FinalizeResponse struct {
	DilemmaID     string  `json:"dilemma_id"`
	FinalVerdict  string  `json:"final_verdict"`
	VerdictDetail string  `json:"verdict_detail"`
	TotalVotes    int64   `json:"total_votes"`
	TotalWeight   float64 `json:"total_weight"`
}
