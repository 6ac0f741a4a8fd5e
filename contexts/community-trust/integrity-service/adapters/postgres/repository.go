package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"arbiter/contexts/community-trust/integrity-service/domain/entities"
	domainerrors "arbiter/contexts/community-trust/integrity-service/domain/errors"
	"arbiter/contexts/community-trust/integrity-service/ports"
)

// Repository projects closed submissions and their tallies for scoring, and
// writes display scores back onto agents.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type dilemmaProjectionModel struct {
	ID        string    `gorm:"column:id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (dilemmaProjectionModel) TableName() string {
	return "dilemmas"
}

type tallyProjectionModel struct {
	DilemmaID     string  `gorm:"column:dilemma_id"`
	Choice        string  `gorm:"column:choice"`
	VoteCount     int64   `gorm:"column:vote_count"`
	WeightedTotal float64 `gorm:"column:weighted_total"`
}

func (tallyProjectionModel) TableName() string {
	return "dilemma_tallies"
}

type agentProfileModel struct {
	ID             string `gorm:"column:id"`
	VisibilityMode string `gorm:"column:visibility_mode"`
}

func (agentProfileModel) TableName() string {
	return "agents"
}

// favorableChoices are the outcome buckets counted in the submitter's
// favor.
var favorableChoices = map[string]bool{
	"not_at_fault":     true,
	"neither_at_fault": true,
}

func (r *Repository) ListJudgedDilemmas(ctx context.Context, agentID string) ([]entities.JudgedDilemma, error) {
	var rows []dilemmaProjectionModel
	err := r.db.WithContext(ctx).
		Where("submitter_id = ? AND status = ? AND hidden = FALSE", agentID, "closed").
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("integrity_repo_list_dilemmas_failed", err, "agent_id", agentID)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	dilemmaIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		dilemmaIDs = append(dilemmaIDs, row.ID)
	}
	var tallies []tallyProjectionModel
	err = r.db.WithContext(ctx).
		Where("dilemma_id IN ?", dilemmaIDs).
		Find(&tallies).
		Error
	if err != nil {
		return nil, r.logError("integrity_repo_list_tallies_failed", err, "agent_id", agentID)
	}

	type aggregate struct {
		voteCount       int64
		favorableWeight float64
		totalWeight     float64
	}
	byDilemma := make(map[string]*aggregate, len(rows))
	for _, tally := range tallies {
		agg := byDilemma[tally.DilemmaID]
		if agg == nil {
			agg = &aggregate{}
			byDilemma[tally.DilemmaID] = agg
		}
		agg.voteCount += tally.VoteCount
		agg.totalWeight += tally.WeightedTotal
		if favorableChoices[tally.Choice] {
			agg.favorableWeight += tally.WeightedTotal
		}
	}

	judged := make([]entities.JudgedDilemma, 0, len(rows))
	for _, row := range rows {
		dilemma := entities.JudgedDilemma{
			DilemmaID:    row.ID,
			SubmittedAt:  row.CreatedAt,
			FavorablePct: entities.NeutralPrior,
		}
		if agg := byDilemma[row.ID]; agg != nil {
			dilemma.VoteCount = agg.voteCount
			if agg.totalWeight > 0 {
				dilemma.FavorablePct = 100 * agg.favorableWeight / agg.totalWeight
			}
		}
		judged = append(judged, dilemma)
	}
	return judged, nil
}

func (r *Repository) GetAgentProfile(ctx context.Context, agentID string) (entities.AgentProfile, error) {
	var row agentProfileModel
	err := r.db.WithContext(ctx).
		Where("id = ?", agentID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AgentProfile{}, domainerrors.ErrAgentNotFound
		}
		return entities.AgentProfile{}, r.logError("integrity_repo_get_profile_failed", err, "agent_id", agentID)
	}
	return entities.AgentProfile{
		AgentID:        row.ID,
		VisibilityMode: entities.VisibilityMode(row.VisibilityMode),
	}, nil
}

func (r *Repository) ListAgentIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&agentProfileModel{}).
		Order("id ASC").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, r.logError("integrity_repo_list_agents_failed", err)
	}
	return ids, nil
}

func (r *Repository) SaveDisplayedScore(ctx context.Context, agentID string, score float64, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&agentProfileModel{}).
		Where("id = ?", agentID).
		Updates(map[string]any{
			"displayed_integrity_score": score,
			"updated_at":                now,
		})
	if result.Error != nil {
		return r.logError("integrity_repo_save_score_failed", result.Error, "agent_id", agentID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAgentNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-trust/integrity-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("integrity repository operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

var _ ports.JudgedDilemmaReader = (*Repository)(nil)
var _ ports.AgentDirectory = (*Repository)(nil)
var _ ports.ScoreWriter = (*Repository)(nil)
