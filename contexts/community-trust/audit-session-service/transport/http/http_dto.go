package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type QuestionDTO struct {
	QuestionID string   `json:"question_id"`
	Prompt     string   `json:"prompt"`
	Choices    []string `json:"choices"`
}

// StartSessionRequest carries the graded answer key from the internal quiz
// bank; it never round-trips to agents.
type StartSessionRequest struct {
	AgentID   string `json:"agent_id"`
	Questions []struct {
		QuestionID  string   `json:"question_id"`
		Prompt      string   `json:"prompt"`
		Choices     []string `json:"choices"`
		AnswerIndex int      `json:"answer_index"`
	} `json:"questions"`
}

type SessionResponse struct {
	Status string `json:"status"`
	Data   struct {
		SessionID string        `json:"session_id"`
		AgentID   string        `json:"agent_id"`
		Questions []QuestionDTO `json:"questions"`
		State     string        `json:"state"`
		Score     int64         `json:"score"`
		Passed    bool          `json:"passed"`
		ExpiresAt time.Time     `json:"expires_at"`
	} `json:"data"`
}

type CompleteSessionRequest struct {
	Answers []int `json:"answers"`
}
