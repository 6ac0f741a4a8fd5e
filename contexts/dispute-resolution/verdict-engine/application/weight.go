package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

const (
	// incognitoTier is the paid tier that carries the 1.2 base premium.
	incognitoTier = "incognito"
	incognitoBase = 1.2
	standardBase  = 1.0

	// ageSaturation is the account age at which the age factor tops out at
	// 1.5.
	ageSaturation = 90 * 24 * time.Hour

	emailVerificationBonus = 0.3
	phoneVerificationBonus = 0.7

	// consistencyHistoryDepth and consistencyMinSample bound the judged
	// vote history the consistency factor reads. Under the minimum the
	// factor stays neutral so new voters are not penalized.
	consistencyHistoryDepth = 50
	consistencyMinSample    = 10

	// fraudBanCeiling mirrors the fraud engine's auto-ban score; at or
	// over it a vote has zero influence as a defense-in-depth floor.
	fraudBanCeiling   = 80
	fraudPenaltyFloor = 0.5
)

// WeightCalculator turns a voter's account attributes into the
// multiplicative weight snapshotted on each cast vote.
type WeightCalculator struct {
	Agents ports.AgentDirectory
	Votes  ports.VoteRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

// CalculateWeight resolves every factor for one voter. All factors are
// multiplicative; the result is zero only when the fraud score is at or
// over the ban ceiling.
func (c WeightCalculator) CalculateWeight(ctx context.Context, voterID string) (entities.WeightBreakdown, error) {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return entities.WeightBreakdown{}, domainerrors.ErrInvalidVoteInput
	}
	profile, err := c.Agents.GetVoterProfile(ctx, voterID)
	if err != nil {
		return entities.WeightBreakdown{}, err
	}

	now := c.Clock.Now().UTC()
	breakdown := entities.WeightBreakdown{
		VoterID:            voterID,
		BaseFactor:         baseFactor(profile.SubscriptionTier),
		AgeFactor:          ageFactor(now.Sub(profile.CreatedAt)),
		VerificationFactor: verificationFactor(profile.EmailVerified, profile.PhoneVerified),
		FraudPenalty:       fraudPenalty(profile.FraudScore),
	}
	breakdown.ConsistencyFactor, err = c.consistencyFactor(ctx, voterID)
	if err != nil {
		return entities.WeightBreakdown{}, err
	}
	breakdown.Weight = breakdown.BaseFactor *
		breakdown.AgeFactor *
		breakdown.VerificationFactor *
		breakdown.ConsistencyFactor *
		breakdown.FraudPenalty
	return breakdown, nil
}

func baseFactor(tier string) float64 {
	if strings.EqualFold(strings.TrimSpace(tier), incognitoTier) {
		return incognitoBase
	}
	return standardBase
}

// ageFactor grows linearly from 0.5 for a brand-new account to 1.5 at 90
// days.
func ageFactor(age time.Duration) float64 {
	if age <= 0 {
		return 0.5
	}
	frac := age.Hours() / ageSaturation.Hours()
	if frac > 1 {
		frac = 1
	}
	return 0.5 + frac
}

func verificationFactor(email, phone bool) float64 {
	factor := 1.0
	if email {
		factor += emailVerificationBonus
	}
	if phone {
		factor += phoneVerificationBonus
	}
	return factor
}

// consistencyFactor maps the voter's majority-alignment rate over their
// judged history to 0.5 + r. Thin history stays neutral at 1.0.
func (c WeightCalculator) consistencyFactor(ctx context.Context, voterID string) (float64, error) {
	judged, err := c.Votes.ListJudgedVotes(ctx, voterID, consistencyHistoryDepth)
	if err != nil {
		return 0, err
	}
	if len(judged) < consistencyMinSample {
		return 1.0, nil
	}
	matches := 0
	for _, vote := range judged {
		if vote.Choice == vote.FinalVerdict {
			matches++
		}
	}
	rate := float64(matches) / float64(len(judged))
	return 0.5 + rate, nil
}

// fraudPenalty decays linearly from 1.0 at score 0 toward 0.5 at score
// 100, with a hard zero at the ban ceiling.
func fraudPenalty(score int64) float64 {
	if score >= fraudBanCeiling {
		return 0
	}
	if score <= 0 {
		return 1.0
	}
	return 1.0 - 0.5*(float64(score)/100)
}
