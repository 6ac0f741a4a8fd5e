package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ThresholdsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Tier               string  `json:"tier"`
		MinVotesForVerdict int     `json:"min_votes_for_verdict"`
		VotingWindowDays   int     `json:"voting_window_days"`
		ClearVerdictPct    float64 `json:"clear_verdict_pct"`
		Population         int64   `json:"population"`
		Source             string  `json:"source"`
	} `json:"data"`
}

type TierDTO struct {
	Name               string  `json:"name"`
	MinAgents          int64   `json:"min_agents"`
	MaxAgents          *int64  `json:"max_agents"`
	MinVotesForVerdict int     `json:"min_votes_for_verdict"`
	VotingWindowDays   int     `json:"voting_window_days"`
	ClearVerdictPct    float64 `json:"clear_verdict_pct"`
}

type UpdateTiersRequest struct {
	Tiers []TierDTO `json:"tiers"`
}

type UpdateTiersResponse struct {
	Status string `json:"status"`
	Data   struct {
		TierCount int `json:"tier_count"`
	} `json:"data"`
}
