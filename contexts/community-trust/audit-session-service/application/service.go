package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"arbiter/contexts/community-trust/audit-session-service/domain/entities"
	domainerrors "arbiter/contexts/community-trust/audit-session-service/domain/errors"
	"arbiter/contexts/community-trust/audit-session-service/ports"
)

// Service drives audit sessions from creation to their terminal state.
type Service struct {
	Sessions ports.SessionRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	TimeBox  time.Duration
	Logger   *slog.Logger
}

// StartSession opens a time-boxed session for an agent. The caller has
// already consumed the entitlement.
func (s Service) StartSession(ctx context.Context, agentID string, questions []entities.Question) (entities.AuditSession, error) {
	logger := ResolveLogger(s.Logger)
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return entities.AuditSession{}, domainerrors.ErrInvalidRequest
	}
	if len(questions) == 0 {
		return entities.AuditSession{}, domainerrors.ErrNoQuestions
	}

	sessionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.AuditSession{}, err
	}
	now := s.Clock.Now().UTC()
	timeBox := s.TimeBox
	if timeBox <= 0 {
		timeBox = entities.DefaultSessionTimeBox
	}
	session := entities.AuditSession{
		SessionID: sessionID,
		AgentID:   agentID,
		Questions: questions,
		Status:    entities.StatusInProgress,
		ExpiresAt: now.Add(timeBox),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Sessions.CreateSession(ctx, session); err != nil {
		return entities.AuditSession{}, err
	}

	logger.Info("audit session started",
		"event", "audit_session_started",
		"module", "community-trust/audit-session-service",
		"layer", "application",
		"session_id", sessionID,
		"agent_id", agentID,
		"question_count", len(questions),
	)
	return session, nil
}

// CompleteSession grades the answers and closes the session. A session past
// its time box expires instead of grading; terminal sessions reject the
// call.
func (s Service) CompleteSession(ctx context.Context, sessionID string, answers []int) (entities.AuditSession, error) {
	logger := ResolveLogger(s.Logger)
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return entities.AuditSession{}, domainerrors.ErrInvalidRequest
	}

	session, err := s.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return entities.AuditSession{}, err
	}
	if session.Terminal() {
		return entities.AuditSession{}, domainerrors.ErrSessionTerminal
	}

	now := s.Clock.Now().UTC()
	if now.After(session.ExpiresAt) {
		session.Status = entities.StatusExpired
		session.UpdatedAt = now
		if err := s.Sessions.UpdateSession(ctx, session); err != nil {
			return entities.AuditSession{}, err
		}
		return entities.AuditSession{}, domainerrors.ErrSessionTerminal
	}

	session.Score = entities.Grade(session.Questions, answers)
	session.Passed = session.Score >= entities.PassingScore
	session.Status = entities.StatusCompleted
	session.UpdatedAt = now
	if err := s.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.AuditSession{}, err
	}

	logger.Info("audit session completed",
		"event", "audit_session_completed",
		"module", "community-trust/audit-session-service",
		"layer", "application",
		"session_id", sessionID,
		"agent_id", session.AgentID,
		"score", session.Score,
		"passed", session.Passed,
	)
	return session, nil
}

func (s Service) GetSession(ctx context.Context, sessionID string) (entities.AuditSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return entities.AuditSession{}, domainerrors.ErrInvalidRequest
	}
	return s.Sessions.GetSession(ctx, sessionID)
}

// ExpireSessions flips every in_progress session past its time box to
// expired and returns how many changed.
func (s Service) ExpireSessions(ctx context.Context) (int, error) {
	logger := ResolveLogger(s.Logger)
	now := s.Clock.Now().UTC()
	sessions, err := s.Sessions.ListExpiredInProgress(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, session := range sessions {
		session.Status = entities.StatusExpired
		session.UpdatedAt = now
		if err := s.Sessions.UpdateSession(ctx, session); err != nil {
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		logger.Info("audit sessions expired",
			"event", "audit_sessions_expired",
			"module", "community-trust/audit-session-service",
			"layer", "application",
			"expired_count", expired,
		)
	}
	return expired, nil
}
