package ports

import (
	"context"
	"time"

	"arbiter/contexts/dispute-resolution/threshold-policy/domain/entities"
)

type TierRepository interface {
	ListTiers(ctx context.Context) ([]entities.ThresholdTier, error)
	SaveTiers(ctx context.Context, tiers []entities.ThresholdTier) error
}

// PopulationReader reports the total registered agent count, which keys the
// tier selection.
type PopulationReader interface {
	CountAgents(ctx context.Context) (int64, error)
}

// ThresholdCache is the explicit TTL cache in front of tier resolution.
// Implementations decide expiry against the supplied instant so tests can
// advance time deterministically.
type ThresholdCache interface {
	Get(now time.Time) (entities.VerdictThresholds, bool)
	Set(value entities.VerdictThresholds, expiresAt time.Time)
	Invalidate()
}

type Clock interface {
	Now() time.Time
}
