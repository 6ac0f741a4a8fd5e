package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"arbiter/contexts/dispute-resolution/threshold-policy/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/threshold-policy/domain/errors"
	"arbiter/contexts/dispute-resolution/threshold-policy/ports"
)

// fallbackTier is served when the tier table or population count cannot be
// resolved. Deliberately conservative: a verdict should be harder, not
// easier, to reach while policy data is unavailable.
var fallbackTier = entities.ThresholdTier{
	Name:               "fallback",
	MinVotesForVerdict: 10,
	VotingWindowDays:   7,
	ClearVerdictPct:    60,
}

// Service resolves verdict thresholds from the population-keyed tier table,
// caching results for the configured TTL.
type Service struct {
	Tiers      ports.TierRepository
	Population ports.PopulationReader
	Cache      ports.ThresholdCache
	Clock      ports.Clock
	CacheTTL   time.Duration
	Logger     *slog.Logger
}

// CurrentThresholds returns the verdict rules for the current platform scale.
// Lookup failures never propagate to the caller: the finalization path takes
// the fallback tier instead, and the branch is logged as an explicit event.
func (s Service) CurrentThresholds(ctx context.Context) (entities.VerdictThresholds, error) {
	logger := ResolveLogger(s.Logger)
	now := s.now()

	if s.Cache != nil {
		if cached, ok := s.Cache.Get(now); ok {
			cached.Source = entities.ThresholdSourceCache
			return cached, nil
		}
	}

	population, err := s.Population.CountAgents(ctx)
	if err != nil {
		logger.Warn("population lookup failed; serving fallback thresholds",
			"event", "threshold_population_lookup_failed",
			"module", "dispute-resolution/threshold-policy",
			"layer", "application",
			"error", err.Error(),
		)
		return s.fallback(0), nil
	}

	tiers, err := s.Tiers.ListTiers(ctx)
	if err != nil || len(tiers) == 0 {
		logger.Warn("tier table unavailable; serving fallback thresholds",
			"event", "threshold_tier_table_unavailable",
			"module", "dispute-resolution/threshold-policy",
			"layer", "application",
			"population", population,
		)
		return s.fallback(population), nil
	}

	for _, tier := range tiers {
		if !tier.Matches(population) {
			continue
		}
		resolved := entities.VerdictThresholds{
			Tier:               tier.Name,
			MinVotesForVerdict: tier.MinVotesForVerdict,
			VotingWindowDays:   tier.VotingWindowDays,
			ClearVerdictPct:    tier.ClearVerdictPct,
			Population:         population,
			Source:             entities.ThresholdSourceTierTable,
		}
		if s.Cache != nil {
			s.Cache.Set(resolved, now.Add(s.resolveTTL()))
		}
		return resolved, nil
	}

	// A gap in the partition is a configuration error, not a caller error.
	logger.Error("no tier matches population; serving fallback thresholds",
		"event", "threshold_no_matching_tier",
		"module", "dispute-resolution/threshold-policy",
		"layer", "application",
		"population", population,
		"tier_count", len(tiers),
		"error", domainerrors.ErrNoMatchingTier.Error(),
	)
	return s.fallback(population), nil
}

// ShouldFinalize reports whether a dilemma is ready to close: the voting
// window has elapsed, or the vote count reached the tier minimum.
func (s Service) ShouldFinalize(ctx context.Context, voteCount int, closesAt time.Time) (bool, error) {
	thresholds, err := s.CurrentThresholds(ctx)
	if err != nil {
		return false, err
	}
	now := s.now()
	if !closesAt.IsZero() && !now.Before(closesAt.UTC()) {
		return true, nil
	}
	return voteCount >= thresholds.MinVotesForVerdict, nil
}

// UpdateTiers replaces the tier table and invalidates the cache. The new
// table must partition the population axis: start at zero, no gaps, no
// overlaps, unbounded final tier.
func (s Service) UpdateTiers(ctx context.Context, tiers []entities.ThresholdTier) error {
	if err := validateTierTable(tiers); err != nil {
		return err
	}
	if err := s.Tiers.SaveTiers(ctx, tiers); err != nil {
		return err
	}
	if s.Cache != nil {
		s.Cache.Invalidate()
	}
	ResolveLogger(s.Logger).Info("tier table updated",
		"event", "threshold_tier_table_updated",
		"module", "dispute-resolution/threshold-policy",
		"layer", "application",
		"tier_count", len(tiers),
	)
	return nil
}

// InvalidateCache drops any cached thresholds so the next lookup rereads the
// tier table.
func (s Service) InvalidateCache() {
	if s.Cache != nil {
		s.Cache.Invalidate()
	}
}

func (s Service) fallback(population int64) entities.VerdictThresholds {
	return entities.VerdictThresholds{
		Tier:               fallbackTier.Name,
		MinVotesForVerdict: fallbackTier.MinVotesForVerdict,
		VotingWindowDays:   fallbackTier.VotingWindowDays,
		ClearVerdictPct:    fallbackTier.ClearVerdictPct,
		Population:         population,
		Source:             entities.ThresholdSourceFallback,
	}
}

func (s Service) resolveTTL() time.Duration {
	if s.CacheTTL <= 0 {
		return time.Hour
	}
	return s.CacheTTL
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func validateTierTable(tiers []entities.ThresholdTier) error {
	if len(tiers) == 0 {
		return domainerrors.ErrInvalidTierTable
	}
	if tiers[0].MinAgents != 0 {
		return domainerrors.ErrInvalidTierTable
	}
	for i, tier := range tiers {
		if strings.TrimSpace(tier.Name) == "" ||
			tier.MinVotesForVerdict <= 0 ||
			tier.VotingWindowDays <= 0 ||
			tier.ClearVerdictPct <= 50 || tier.ClearVerdictPct > 100 {
			return domainerrors.ErrInvalidTierTable
		}
		last := i == len(tiers)-1
		if last {
			if tier.MaxAgents != nil {
				return domainerrors.ErrInvalidTierTable
			}
			continue
		}
		if tier.MaxAgents == nil || *tier.MaxAgents < tier.MinAgents {
			return domainerrors.ErrInvalidTierTable
		}
		if tiers[i+1].MinAgents != *tier.MaxAgents+1 {
			return domainerrors.ErrInvalidTierTable
		}
	}
	return nil
}
