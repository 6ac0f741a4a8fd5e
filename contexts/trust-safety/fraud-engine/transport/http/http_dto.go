package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ReportFraudEventRequest struct {
	AgentID   string         `json:"agent_id"`
	EventType string         `json:"event_type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ReportFraudEventResponse struct {
	Status string `json:"status"`
	Data   struct {
		AgentID       string `json:"agent_id"`
		EventType     string `json:"event_type"`
		ScoreDelta    int64  `json:"score_delta"`
		PreviousScore int64  `json:"previous_score"`
		NewScore      int64  `json:"new_score"`
		Banned        bool   `json:"banned"`
		NewlyBanned   bool   `json:"newly_banned"`
	} `json:"data"`
}

type RecordFingerprintRequest struct {
	AgentID         string `json:"agent_id"`
	FingerprintHash string `json:"fingerprint_hash"`
}

type RecordFingerprintResponse struct {
	Status string `json:"status"`
}

type UnbanAgentRequest struct {
	ResetScore int64 `json:"reset_score"`
}

type AgentStatusResponse struct {
	Status string `json:"status"`
	Data   struct {
		AgentID        string          `json:"agent_id"`
		FraudScore     int64           `json:"fraud_score"`
		Banned         bool            `json:"banned"`
		BanReason      string          `json:"ban_reason,omitempty"`
		BannedAt       *time.Time      `json:"banned_at,omitempty"`
		VisibilityMode string          `json:"visibility_mode"`
		RecentEvents   []FraudEventDTO `json:"recent_events"`
	} `json:"data"`
}

type FraudEventDTO struct {
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	ScoreDelta    int64          `json:"score_delta"`
	PreviousScore int64          `json:"previous_score"`
	NewScore      int64          `json:"new_score"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
}
