package queries

import (
	"context"
	"sort"
	"strings"

	application "arbiter/contexts/dispute-resolution/verdict-engine/application"
	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

// TallyView is a tally bucket plus its weighted share of the total.
type TallyView struct {
	Choice        string
	VoteCount     int64
	WeightedTotal float64
	WeightedPct   float64
}

// DilemmaView is the read model for one dilemma: state, verdict, and the
// per-choice weighted distribution.
type DilemmaView struct {
	Dilemma     entities.Dilemma
	Tallies     []TallyView
	TotalVotes  int64
	TotalWeight float64
}

type DilemmaQueryUseCase struct {
	Dilemmas ports.DilemmaRepository
	Tallies  ports.TallyRepository
	Weight   application.WeightCalculator
}

// GetDilemma resolves a dilemma with its weighted tally distribution.
// Buckets with no votes are still listed so clients can render every
// castable choice.
func (uc DilemmaQueryUseCase) GetDilemma(ctx context.Context, dilemmaID string) (DilemmaView, error) {
	dilemmaID = strings.TrimSpace(dilemmaID)
	if dilemmaID == "" {
		return DilemmaView{}, domainerrors.ErrInvalidVoteInput
	}
	dilemma, err := uc.Dilemmas.GetDilemma(ctx, dilemmaID)
	if err != nil {
		return DilemmaView{}, err
	}
	tallies, err := uc.Tallies.ListTallies(ctx, dilemmaID)
	if err != nil {
		return DilemmaView{}, err
	}

	byChoice := make(map[string]entities.Tally, len(tallies))
	view := DilemmaView{Dilemma: dilemma}
	for _, tally := range tallies {
		byChoice[tally.Choice] = tally
		view.TotalVotes += tally.VoteCount
		view.TotalWeight += tally.WeightedTotal
	}
	for _, choice := range entities.ChoicesFor(dilemma.Category) {
		tally := byChoice[choice]
		item := TallyView{
			Choice:        choice,
			VoteCount:     tally.VoteCount,
			WeightedTotal: tally.WeightedTotal,
		}
		if view.TotalWeight > 0 {
			item.WeightedPct = 100 * tally.WeightedTotal / view.TotalWeight
		}
		view.Tallies = append(view.Tallies, item)
		delete(byChoice, choice)
	}
	// Stray buckets can linger after a category migration; surface them
	// rather than silently dropping weight.
	extras := make([]string, 0, len(byChoice))
	for choice := range byChoice {
		extras = append(extras, choice)
	}
	sort.Strings(extras)
	for _, choice := range extras {
		tally := byChoice[choice]
		item := TallyView{
			Choice:        choice,
			VoteCount:     tally.VoteCount,
			WeightedTotal: tally.WeightedTotal,
		}
		if view.TotalWeight > 0 {
			item.WeightedPct = 100 * tally.WeightedTotal / view.TotalWeight
		}
		view.Tallies = append(view.Tallies, item)
	}
	return view, nil
}

// VoteWeight previews the weight a voter would carry right now, with the
// factor breakdown.
func (uc DilemmaQueryUseCase) VoteWeight(ctx context.Context, voterID string) (entities.WeightBreakdown, error) {
	return uc.Weight.CalculateWeight(ctx, voterID)
}
