package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"arbiter/contexts/dispute-resolution/threshold-policy/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/threshold-policy/domain/errors"
	"arbiter/contexts/dispute-resolution/threshold-policy/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tierConfigKey = "threshold_tiers"

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

type tierRow struct {
	Name               string  `json:"name"`
	MinAgents          int64   `json:"min_agents"`
	MaxAgents          *int64  `json:"max_agents"`
	MinVotesForVerdict int     `json:"min_votes_for_verdict"`
	VotingWindowDays   int     `json:"voting_window_days"`
	ClearVerdictPct    float64 `json:"clear_verdict_pct"`
}

type platformConfigModel struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     []byte    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (platformConfigModel) TableName() string {
	return "platform_config"
}

type agentCountModel struct{}

func (agentCountModel) TableName() string {
	return "agents"
}

func (r *Repository) ListTiers(ctx context.Context) ([]entities.ThresholdTier, error) {
	var row platformConfigModel
	err := r.db.WithContext(ctx).
		Where("key = ?", tierConfigKey).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrTiersUnavailable
		}
		return nil, r.logError("threshold_repo_list_tiers_failed", err)
	}

	var rows []tierRow
	if err := json.Unmarshal(row.Value, &rows); err != nil {
		return nil, r.logError("threshold_repo_decode_tiers_failed", err)
	}
	tiers := make([]entities.ThresholdTier, 0, len(rows))
	for _, item := range rows {
		tiers = append(tiers, entities.ThresholdTier{
			Name:               item.Name,
			MinAgents:          item.MinAgents,
			MaxAgents:          item.MaxAgents,
			MinVotesForVerdict: item.MinVotesForVerdict,
			VotingWindowDays:   item.VotingWindowDays,
			ClearVerdictPct:    item.ClearVerdictPct,
		})
	}
	return tiers, nil
}

func (r *Repository) SaveTiers(ctx context.Context, tiers []entities.ThresholdTier) error {
	rows := make([]tierRow, 0, len(tiers))
	for _, tier := range tiers {
		rows = append(rows, tierRow{
			Name:               tier.Name,
			MinAgents:          tier.MinAgents,
			MaxAgents:          tier.MaxAgents,
			MinVotesForVerdict: tier.MinVotesForVerdict,
			VotingWindowDays:   tier.VotingWindowDays,
			ClearVerdictPct:    tier.ClearVerdictPct,
		})
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return r.logError("threshold_repo_encode_tiers_failed", err)
	}

	row := platformConfigModel{
		Key:       tierConfigKey,
		Value:     payload,
		UpdatedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("threshold_repo_save_tiers_failed", create.Error)
	}
	return nil
}

func (r *Repository) CountAgents(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&agentCountModel{}).
		Count(&count).Error; err != nil {
		return 0, r.logError("threshold_repo_count_agents_failed", err)
	}
	return count, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "dispute-resolution/threshold-policy",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("threshold repository operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

var _ ports.TierRepository = (*Repository)(nil)
var _ ports.PopulationReader = (*Repository)(nil)
