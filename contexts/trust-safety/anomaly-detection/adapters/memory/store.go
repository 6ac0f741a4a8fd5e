package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"arbiter/contexts/trust-safety/anomaly-detection/domain/entities"
	"arbiter/contexts/trust-safety/anomaly-detection/ports"
)

// Store backs the detectors with an in-memory vote projection and flag
// table for tests and local wiring.
type Store struct {
	mu    sync.RWMutex
	votes []entities.VoteObservation
	flags map[string]entities.VoteCorrelationFlag
	idSeq int64
}

var (
	_ ports.VoteActivityReader        = (*Store)(nil)
	_ ports.CorrelationFlagRepository = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{flags: make(map[string]entities.VoteCorrelationFlag)}
}

// AddVote seeds one observation into the projection.
func (s *Store) AddVote(vote entities.VoteObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = append(s.votes, vote)
}

func (s *Store) ListVotesInWindow(_ context.Context, agentID string, from, to time.Time) ([]entities.VoteObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.VoteObservation
	for _, vote := range s.votes {
		if vote.AgentID != agentID {
			continue
		}
		if vote.CastAt.Before(from) || vote.CastAt.After(to) {
			continue
		}
		out = append(out, vote)
	}
	return out, nil
}

func (s *Store) ListVotesByAgent(_ context.Context, agentID string, limit int) ([]entities.VoteObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.VoteObservation
	for _, vote := range s.votes {
		if vote.AgentID == agentID {
			out = append(out, vote)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CastAt.After(out[j].CastAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListRecentVoters(_ context.Context, since time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var voters []string
	for _, vote := range s.votes {
		if vote.CastAt.Before(since) || seen[vote.AgentID] {
			continue
		}
		seen[vote.AgentID] = true
		voters = append(voters, vote.AgentID)
	}
	sort.Strings(voters)
	if limit > 0 && len(voters) > limit {
		voters = voters[:limit]
	}
	return voters, nil
}

func (s *Store) UpsertFlag(_ context.Context, flag entities.VoteCorrelationFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := flag.AgentIDA + "|" + flag.AgentIDB
	if existing, ok := s.flags[key]; ok {
		flag.FlagID = existing.FlagID
	}
	s.flags[key] = flag
	return nil
}

func (s *Store) ListFlags(_ context.Context, limit int) ([]entities.VoteCorrelationFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.VoteCorrelationFlag, 0, len(s.flags))
	for _, flag := range s.flags {
		out = append(out, flag)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FlaggedAt.After(out[j].FlaggedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	return fmt.Sprintf("flag-%06d", s.idSeq), nil
}
