package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type IntegrityResponse struct {
	Status string `json:"status"`
	Data   struct {
		AgentID          string    `json:"agent_id"`
		RawScore         float64   `json:"raw_score"`
		DisplayScore     float64   `json:"display_score"`
		Confidence       string    `json:"confidence"`
		Trend            string    `json:"trend"`
		EligibleDilemmas int       `json:"eligible_dilemmas"`
		ComputedAt       time.Time `json:"computed_at"`
	} `json:"data"`
}
