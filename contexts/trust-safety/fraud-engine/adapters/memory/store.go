package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"arbiter/contexts/trust-safety/fraud-engine/domain/entities"
	domainerrors "arbiter/contexts/trust-safety/fraud-engine/domain/errors"
	"arbiter/contexts/trust-safety/fraud-engine/ports"
)

// Store implements every fraud-engine port over in-memory maps. The store
// mutex serializes score mutations, so two concurrent deltas can never read
// the same previous score.
type Store struct {
	mu           sync.RWMutex
	agents       map[string]entities.Agent
	events       map[string][]entities.FraudEvent
	fingerprints []entities.DeviceFingerprint
	rateLogs     []entities.RateLimitLog
	idSeq        int64
}

var (
	_ ports.AgentRepository        = (*Store)(nil)
	_ ports.FraudEventRepository   = (*Store)(nil)
	_ ports.FingerprintRepository  = (*Store)(nil)
	_ ports.RateLimitLogRepository = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		agents: make(map[string]entities.Agent),
		events: make(map[string][]entities.FraudEvent),
	}
}

// PutAgent inserts or replaces an agent row. Used by tests and local seeding.
func (s *Store) PutAgent(agent entities.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.AgentID] = agent
}

func (s *Store) GetAgent(_ context.Context, agentID string) (entities.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[agentID]
	if !ok {
		return entities.Agent{}, domainerrors.ErrAgentNotFound
	}
	return agent, nil
}

func (s *Store) ApplyFraudDelta(
	_ context.Context,
	agentID string,
	delta int64,
	banReason string,
	now time.Time,
) (ports.FraudScoreUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agent, ok := s.agents[agentID]
	if !ok {
		return ports.FraudScoreUpdate{}, domainerrors.ErrAgentNotFound
	}

	update := ports.FraudScoreUpdate{
		AgentID:       agentID,
		PreviousScore: agent.FraudScore,
		NewScore:      agent.FraudScore + delta,
	}
	agent.FraudScore = update.NewScore
	agent.UpdatedAt = now
	if update.NewScore >= entities.BanCeiling && !agent.Banned {
		bannedAt := now
		agent.Banned = true
		agent.BanReason = banReason
		agent.BannedAt = &bannedAt
		update.NewlyBanned = true
	}
	update.Banned = agent.Banned
	s.agents[agentID] = agent
	return update, nil
}

func (s *Store) ResetFraudState(
	_ context.Context,
	agentID string,
	score int64,
	now time.Time,
) (ports.FraudScoreUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agent, ok := s.agents[agentID]
	if !ok {
		return ports.FraudScoreUpdate{}, domainerrors.ErrAgentNotFound
	}

	update := ports.FraudScoreUpdate{
		AgentID:       agentID,
		PreviousScore: agent.FraudScore,
		NewScore:      score,
	}
	agent.FraudScore = score
	agent.Banned = false
	agent.BanReason = ""
	agent.BannedAt = nil
	agent.UpdatedAt = now
	s.agents[agentID] = agent
	return update, nil
}

func (s *Store) ListBanCandidates(_ context.Context) ([]entities.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []entities.Agent
	for _, agent := range s.agents {
		if agent.FraudScore >= entities.BanCeiling && !agent.Banned {
			candidates = append(candidates, agent)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].AgentID < candidates[j].AgentID
	})
	return candidates, nil
}

func (s *Store) AppendEvent(_ context.Context, event entities.FraudEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.AgentID] = append(s.events[event.AgentID], event)
	return nil
}

func (s *Store) ListEventsByAgent(_ context.Context, agentID string, limit int) ([]entities.FraudEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[agentID]
	out := append([]entities.FraudEvent(nil), events...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SaveFingerprint(_ context.Context, fingerprint entities.DeviceFingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints = append(s.fingerprints, fingerprint)
	return nil
}

func (s *Store) ListAgentsByHash(_ context.Context, fingerprintHash string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var owners []string
	for _, fp := range s.fingerprints {
		if !strings.EqualFold(fp.FingerprintHash, fingerprintHash) || seen[fp.AgentID] {
			continue
		}
		seen[fp.AgentID] = true
		owners = append(owners, fp.AgentID)
	}
	sort.Strings(owners)
	return owners, nil
}

func (s *Store) PurgeFingerprintsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.fingerprints[:0]
	var purged int64
	for _, fp := range s.fingerprints {
		if fp.SeenAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, fp)
	}
	s.fingerprints = kept
	return purged, nil
}

// AddRateLimitLog records one request log row. Production writes come from
// the API edge; tests seed through this.
func (s *Store) AddRateLimitLog(log entities.RateLimitLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLogs = append(s.rateLogs, log)
}

func (s *Store) PurgeRateLimitLogsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rateLogs[:0]
	var purged int64
	for _, log := range s.rateLogs {
		if log.OccurredAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, log)
	}
	s.rateLogs = kept
	return purged, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// NewID hands out sequential identifiers, keeping test assertions stable.
func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	return fmt.Sprintf("fraud-%06d", s.idSeq), nil
}
