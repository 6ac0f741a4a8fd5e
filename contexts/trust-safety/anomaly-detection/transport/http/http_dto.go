package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CorrelationFlagDTO struct {
	FlagID             string    `json:"flag_id"`
	AgentIDA           string    `json:"agent_id_a"`
	AgentIDB           string    `json:"agent_id_b"`
	CorrelationScore   float64   `json:"correlation_score"`
	SharedDilemmaCount int       `json:"shared_dilemma_count"`
	IdenticalVoteCount int       `json:"identical_vote_count"`
	FlaggedAt          time.Time `json:"flagged_at"`
}

type CorrelationFlagsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Flags []CorrelationFlagDTO `json:"flags"`
	} `json:"data"`
}
