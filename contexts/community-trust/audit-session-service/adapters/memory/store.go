package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"arbiter/contexts/community-trust/audit-session-service/domain/entities"
	domainerrors "arbiter/contexts/community-trust/audit-session-service/domain/errors"
	"arbiter/contexts/community-trust/audit-session-service/ports"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string]entities.AuditSession
	idSeq    int64
}

var _ ports.SessionRepository = (*Store)(nil)

func NewStore() *Store {
	return &Store{sessions: make(map[string]entities.AuditSession)}
}

func (s *Store) CreateSession(_ context.Context, session entities.AuditSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.SessionID]; exists {
		return domainerrors.ErrInvalidRequest
	}
	s.sessions[session.SessionID] = session
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.AuditSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return entities.AuditSession{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) UpdateSession(_ context.Context, session entities.AuditSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.SessionID]; !ok {
		return domainerrors.ErrSessionNotFound
	}
	s.sessions[session.SessionID] = session
	return nil
}

func (s *Store) ListExpiredInProgress(_ context.Context, now time.Time) ([]entities.AuditSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.AuditSession
	for _, session := range s.sessions {
		if session.Status == entities.StatusInProgress && now.After(session.ExpiresAt) {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SessionID < out[j].SessionID
	})
	return out, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	return fmt.Sprintf("session-%06d", s.idSeq), nil
}
