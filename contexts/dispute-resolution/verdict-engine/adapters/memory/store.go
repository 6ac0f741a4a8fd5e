// Package memory provides the in-memory adapter used by tests and local
// bootstraps. A single Store implements every port of the module.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
	"arbiter/internal/shared/events"
)

type Store struct {
	mu          sync.RWMutex
	dilemmas    map[string]entities.Dilemma
	votes       map[string]entities.Vote
	tallies     map[string]map[string]entities.Tally
	profiles    map[string]ports.VoterProfile
	idempotency map[string]ports.IdempotencyRecord
	outbox      []ports.OutboxRecord
	thresholds  ports.VerdictThresholds
	idSeq       int
}

func NewStore() *Store {
	return &Store{
		dilemmas:    make(map[string]entities.Dilemma),
		votes:       make(map[string]entities.Vote),
		tallies:     make(map[string]map[string]entities.Tally),
		profiles:    make(map[string]ports.VoterProfile),
		idempotency: make(map[string]ports.IdempotencyRecord),
		thresholds: ports.VerdictThresholds{
			MinVotesForVerdict: 10,
			VotingWindowDays:   7,
			ClearVerdictPct:    55,
		},
	}
}

var (
	_ ports.DilemmaRepository = (*Store)(nil)
	_ ports.VoteRepository    = (*Store)(nil)
	_ ports.TallyRepository   = (*Store)(nil)
	_ ports.AgentDirectory    = (*Store)(nil)
	_ ports.ThresholdSource   = (*Store)(nil)
	_ ports.IdempotencyStore  = (*Store)(nil)
	_ ports.OutboxWriter      = (*Store)(nil)
	_ ports.OutboxRepository  = (*Store)(nil)
	_ ports.Clock             = (*Store)(nil)
	_ ports.IDGenerator       = (*Store)(nil)
)

func (s *Store) CreateDilemma(_ context.Context, dilemma entities.Dilemma) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.dilemmas[dilemma.DilemmaID]; exists {
		return domainerrors.ErrConflict
	}
	s.dilemmas[dilemma.DilemmaID] = dilemma
	return nil
}

func (s *Store) GetDilemma(_ context.Context, dilemmaID string) (entities.Dilemma, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dilemma, ok := s.dilemmas[dilemmaID]
	if !ok {
		return entities.Dilemma{}, domainerrors.ErrDilemmaNotFound
	}
	return dilemma, nil
}

func (s *Store) CloseDilemma(_ context.Context, dilemmaID, verdict, detail string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dilemma, ok := s.dilemmas[dilemmaID]
	if !ok {
		return domainerrors.ErrDilemmaNotFound
	}
	if dilemma.Status != entities.StatusActive {
		return domainerrors.ErrDilemmaNotActive
	}
	dilemma.Status = entities.StatusClosed
	dilemma.FinalVerdict = verdict
	dilemma.VerdictDetail = detail
	dilemma.ClosesAt = now
	dilemma.UpdatedAt = now
	s.dilemmas[dilemmaID] = dilemma
	return nil
}

func (s *Store) ListActiveDilemmas(_ context.Context) ([]entities.Dilemma, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Dilemma, 0)
	for _, dilemma := range s.dilemmas {
		if dilemma.Status == entities.StatusActive {
			items = append(items, dilemma)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DilemmaID < items[j].DilemmaID })
	return items, nil
}

func (s *Store) SaveVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[vote.VoteID] = vote
	return nil
}

func (s *Store) GetVote(_ context.Context, voteID string) (entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[voteID]
	if !ok {
		return entities.Vote{}, domainerrors.ErrVoteNotFound
	}
	return vote, nil
}

func (s *Store) GetVoteByIdentity(_ context.Context, dilemmaID, voterID string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, vote := range s.votes {
		if vote.DilemmaID == dilemmaID && vote.VoterID == voterID {
			return vote, true, nil
		}
	}
	return entities.Vote{}, false, nil
}

func (s *Store) ListVotesByDilemma(_ context.Context, dilemmaID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.DilemmaID == dilemmaID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].VoteID < items[j].VoteID })
	return items, nil
}

func (s *Store) ListJudgedVotes(_ context.Context, voterID string, limit int) ([]entities.JudgedVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.JudgedVote, 0)
	for _, vote := range s.votes {
		if vote.VoterID != voterID {
			continue
		}
		dilemma, ok := s.dilemmas[vote.DilemmaID]
		if !ok || dilemma.Status != entities.StatusClosed {
			continue
		}
		if dilemma.FinalVerdict == "" || dilemma.FinalVerdict == entities.VerdictSplit {
			continue
		}
		items = append(items, entities.JudgedVote{
			DilemmaID:    vote.DilemmaID,
			Choice:       vote.Choice,
			FinalVerdict: dilemma.FinalVerdict,
			CastAt:       vote.CastAt,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CastAt.Equal(items[j].CastAt) {
			return items[i].DilemmaID < items[j].DilemmaID
		}
		return items[i].CastAt.After(items[j].CastAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) AdjustTally(_ context.Context, dilemmaID, choice string, deltaCount int64, deltaWeight float64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byChoice, ok := s.tallies[dilemmaID]
	if !ok {
		byChoice = make(map[string]entities.Tally)
		s.tallies[dilemmaID] = byChoice
	}
	tally := byChoice[choice]
	tally.DilemmaID = dilemmaID
	tally.Choice = choice
	tally.VoteCount += deltaCount
	tally.WeightedTotal += deltaWeight
	tally.UpdatedAt = now
	if tally.VoteCount < 0 {
		tally.VoteCount = 0
	}
	if tally.WeightedTotal < 0 {
		tally.WeightedTotal = 0
	}
	byChoice[choice] = tally
	return nil
}

func (s *Store) ListTallies(_ context.Context, dilemmaID string) ([]entities.Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Tally, 0, len(s.tallies[dilemmaID]))
	for _, tally := range s.tallies[dilemmaID] {
		items = append(items, tally)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Choice < items[j].Choice })
	return items, nil
}

func (s *Store) ReplaceTallies(_ context.Context, dilemmaID string, tallies []entities.Tally, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byChoice := make(map[string]entities.Tally, len(tallies))
	for _, tally := range tallies {
		tally.DilemmaID = dilemmaID
		tally.UpdatedAt = now
		byChoice[tally.Choice] = tally
	}
	s.tallies[dilemmaID] = byChoice
	return nil
}

func (s *Store) GetVoterProfile(_ context.Context, agentID string) (ports.VoterProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[agentID]
	if !ok {
		return ports.VoterProfile{}, domainerrors.ErrVoterNotFound
	}
	return profile, nil
}

func (s *Store) CurrentThresholds(_ context.Context) (ports.VerdictThresholds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.idempotency[strings.TrimSpace(key)]
	if !ok || now.After(record.ExpiresAt) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[strings.TrimSpace(record.Key)] = record
	return nil
}

func (s *Store) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for key, record := range s.idempotency {
		if now.After(record.ExpiresAt) {
			delete(s.idempotency, key)
			purged++
		}
	}
	return purged, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	s.outbox = append(s.outbox, ports.OutboxRecord{
		OutboxID:     fmt.Sprintf("outbox-%06d", s.idSeq),
		EventType:    envelope.EventType,
		PartitionKey: envelope.EntityID,
		Payload:      payload,
		Status:       "pending",
		CreatedAt:    envelope.OccurredAtUTC,
	})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.OutboxRecord, 0)
	for _, record := range s.outbox {
		if record.Status != "pending" {
			continue
		}
		items = append(items, record)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			publishedAt := now
			s.outbox[i].Status = "published"
			s.outbox[i].PublishedAt = &publishedAt
			return nil
		}
	}
	return domainerrors.ErrConflict
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	return fmt.Sprintf("verdict-%06d", s.idSeq), nil
}

// Seed helpers for tests and local bootstraps.

func (s *Store) PutVoterProfile(profile ports.VoterProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.AgentID] = profile
}

func (s *Store) SetThresholds(thresholds ports.VerdictThresholds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = thresholds
}

// OutboxRecords returns a snapshot of all outbox rows, pending and
// published.
func (s *Store) OutboxRecords() []ports.OutboxRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.OutboxRecord, len(s.outbox))
	copy(items, s.outbox)
	return items
}
