package entities

import "time"

type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusExpired    SessionStatus = "expired"
)

// PassingScore is the minimum graded percentage for a passed audit.
const PassingScore int64 = 80

// DefaultSessionTimeBox bounds how long an open session stays answerable.
const DefaultSessionTimeBox = 30 * time.Minute

// Question is one quiz item. AnswerIndex is never serialized to clients.
type Question struct {
	QuestionID  string
	Prompt      string
	Choices     []string
	AnswerIndex int
}

// AuditSession is a time-boxed quiz instance. Completed and expired are
// terminal states.
type AuditSession struct {
	SessionID string
	AgentID   string
	Questions []Question
	Status    SessionStatus
	Score     int64
	Passed    bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s AuditSession) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusExpired
}

// Grade scores answer indexes against the question set as a 0-100
// percentage. Missing or out-of-range answers count as wrong.
func Grade(questions []Question, answers []int) int64 {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for i, question := range questions {
		if i < len(answers) && answers[i] == question.AnswerIndex {
			correct++
		}
	}
	return int64(100 * correct / len(questions))
}
