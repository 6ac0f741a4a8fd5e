package memory

import (
	"context"
	"sync"
	"time"

	"arbiter/contexts/dispute-resolution/threshold-policy/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/threshold-policy/domain/errors"
)

// Store is the in-memory tier table plus population counter used by tests
// and local wiring.
type Store struct {
	mu         sync.RWMutex
	tiers      []entities.ThresholdTier
	population int64
	failTiers  bool
}

func NewStore() *Store {
	return &Store{tiers: DefaultTiers()}
}

// DefaultTiers is the seed partition used before an operator installs a
// custom table.
func DefaultTiers() []entities.ThresholdTier {
	return []entities.ThresholdTier{
		{Name: "seed", MinAgents: 0, MaxAgents: boundary(999), MinVotesForVerdict: 5, VotingWindowDays: 7, ClearVerdictPct: 60},
		{Name: "growth", MinAgents: 1000, MaxAgents: boundary(9999), MinVotesForVerdict: 10, VotingWindowDays: 5, ClearVerdictPct: 55},
		{Name: "established", MinAgents: 10000, MaxAgents: boundary(99999), MinVotesForVerdict: 20, VotingWindowDays: 3, ClearVerdictPct: 55},
		{Name: "mass", MinAgents: 100000, MinVotesForVerdict: 50, VotingWindowDays: 2, ClearVerdictPct: 52},
	}
}

func (s *Store) SetPopulation(count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.population = count
}

// FailTierReads makes tier lookups error, exercising the fallback branch.
func (s *Store) FailTierReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failTiers = fail
}

func (s *Store) ListTiers(_ context.Context) ([]entities.ThresholdTier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failTiers {
		return nil, domainerrors.ErrTiersUnavailable
	}
	return append([]entities.ThresholdTier(nil), s.tiers...), nil
}

func (s *Store) SaveTiers(_ context.Context, tiers []entities.ThresholdTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers = append([]entities.ThresholdTier(nil), tiers...)
	return nil
}

func (s *Store) CountAgents(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.population, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func boundary(value int64) *int64 {
	return &value
}

// Cache is the injected TTL cache for resolved thresholds.
type Cache struct {
	mu        sync.Mutex
	value     entities.VerdictThresholds
	expiresAt time.Time
	populated bool
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) Get(now time.Time) (entities.VerdictThresholds, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.populated || !now.Before(c.expiresAt) {
		return entities.VerdictThresholds{}, false
	}
	return c.value, true
}

func (c *Cache) Set(value entities.VerdictThresholds, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.expiresAt = expiresAt
	c.populated = true
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.populated = false
}
