package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"arbiter/contexts/community-trust/integrity-service/domain/entities"
	domainerrors "arbiter/contexts/community-trust/integrity-service/domain/errors"
	"arbiter/contexts/community-trust/integrity-service/ports"
)

// Store seeds judged dilemmas and agent profiles for tests and local wiring
// and records persisted display scores.
type Store struct {
	mu       sync.RWMutex
	dilemmas map[string][]entities.JudgedDilemma
	profiles map[string]entities.AgentProfile
	scores   map[string]float64
}

var (
	_ ports.JudgedDilemmaReader = (*Store)(nil)
	_ ports.AgentDirectory      = (*Store)(nil)
	_ ports.ScoreWriter         = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		dilemmas: make(map[string][]entities.JudgedDilemma),
		profiles: make(map[string]entities.AgentProfile),
		scores:   make(map[string]float64),
	}
}

func (s *Store) PutProfile(profile entities.AgentProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.AgentID] = profile
}

func (s *Store) AddJudgedDilemma(agentID string, dilemma entities.JudgedDilemma) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dilemmas[agentID] = append(s.dilemmas[agentID], dilemma)
}

// SavedScore returns the last persisted display score for an agent.
func (s *Store) SavedScore(agentID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[agentID]
	return score, ok
}

func (s *Store) ListJudgedDilemmas(_ context.Context, agentID string) ([]entities.JudgedDilemma, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.JudgedDilemma(nil), s.dilemmas[agentID]...), nil
}

func (s *Store) GetAgentProfile(_ context.Context, agentID string) (entities.AgentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[agentID]
	if !ok {
		return entities.AgentProfile{}, domainerrors.ErrAgentNotFound
	}
	return profile, nil
}

func (s *Store) ListAgentIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) SaveDisplayedScore(_ context.Context, agentID string, score float64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[agentID]; !ok {
		return domainerrors.ErrAgentNotFound
	}
	s.scores[agentID] = score
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
