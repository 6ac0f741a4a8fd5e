package postgresadapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"arbiter/contexts/trust-safety/anomaly-detection/domain/entities"
	"arbiter/contexts/trust-safety/anomaly-detection/ports"
)

// Repository reads the vote ledger as a projection and owns the
// vote_correlation_flags table.
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

type voteProjectionModel struct {
	DilemmaID string    `gorm:"column:dilemma_id"`
	VoterID   string    `gorm:"column:voter_id"`
	Choice    string    `gorm:"column:choice"`
	CastAt    time.Time `gorm:"column:cast_at"`
}

func (voteProjectionModel) TableName() string {
	return "votes"
}

func (m voteProjectionModel) toEntity() entities.VoteObservation {
	return entities.VoteObservation{
		DilemmaID: m.DilemmaID,
		AgentID:   m.VoterID,
		Choice:    m.Choice,
		CastAt:    m.CastAt,
	}
}

type correlationFlagModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	AgentIDA           string    `gorm:"column:agent_id_a"`
	AgentIDB           string    `gorm:"column:agent_id_b"`
	CorrelationScore   float64   `gorm:"column:correlation_score"`
	SharedDilemmaCount int64     `gorm:"column:shared_dilemma_count"`
	IdenticalVoteCount int64     `gorm:"column:identical_vote_count"`
	FlaggedAt          time.Time `gorm:"column:flagged_at"`
}

func (correlationFlagModel) TableName() string {
	return "vote_correlation_flags"
}

func (r *Repository) ListVotesInWindow(ctx context.Context, agentID string, from, to time.Time) ([]entities.VoteObservation, error) {
	var rows []voteProjectionModel
	err := r.db.WithContext(ctx).
		Where("voter_id = ? AND cast_at >= ? AND cast_at <= ?", agentID, from, to).
		Order("cast_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("anomaly_repo_list_window_votes_failed", err, "agent_id", agentID)
	}
	return toObservations(rows), nil
}

func (r *Repository) ListVotesByAgent(ctx context.Context, agentID string, limit int) ([]entities.VoteObservation, error) {
	var rows []voteProjectionModel
	query := r.db.WithContext(ctx).
		Where("voter_id = ?", agentID).
		Order("cast_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("anomaly_repo_list_agent_votes_failed", err, "agent_id", agentID)
	}
	return toObservations(rows), nil
}

func (r *Repository) ListRecentVoters(ctx context.Context, since time.Time, limit int) ([]string, error) {
	var voters []string
	query := r.db.WithContext(ctx).
		Model(&voteProjectionModel{}).
		Distinct("voter_id").
		Where("cast_at >= ?", since).
		Order("voter_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("voter_id", &voters).Error; err != nil {
		return nil, r.logError("anomaly_repo_list_recent_voters_failed", err)
	}
	return voters, nil
}

func (r *Repository) UpsertFlag(ctx context.Context, flag entities.VoteCorrelationFlag) error {
	row := correlationFlagModel{
		ID:                 flag.FlagID,
		AgentIDA:           flag.AgentIDA,
		AgentIDB:           flag.AgentIDB,
		CorrelationScore:   flag.CorrelationScore,
		SharedDilemmaCount: int64(flag.SharedDilemmaCount),
		IdenticalVoteCount: int64(flag.IdenticalVoteCount),
		FlaggedAt:          flag.FlaggedAt,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "agent_id_a"}, {Name: "agent_id_b"}},
		DoUpdates: clause.Assignments(map[string]any{
			"correlation_score":    row.CorrelationScore,
			"shared_dilemma_count": row.SharedDilemmaCount,
			"identical_vote_count": row.IdenticalVoteCount,
			"flagged_at":           row.FlaggedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("anomaly_repo_upsert_flag_failed", create.Error,
			"agent_id_a", flag.AgentIDA,
			"agent_id_b", flag.AgentIDB,
		)
	}
	return nil
}

func (r *Repository) ListFlags(ctx context.Context, limit int) ([]entities.VoteCorrelationFlag, error) {
	var rows []correlationFlagModel
	query := r.db.WithContext(ctx).Order("flagged_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("anomaly_repo_list_flags_failed", err)
	}
	flags := make([]entities.VoteCorrelationFlag, 0, len(rows))
	for _, row := range rows {
		flags = append(flags, entities.VoteCorrelationFlag{
			FlagID:             row.ID,
			AgentIDA:           row.AgentIDA,
			AgentIDB:           row.AgentIDB,
			CorrelationScore:   row.CorrelationScore,
			SharedDilemmaCount: int(row.SharedDilemmaCount),
			IdenticalVoteCount: int(row.IdenticalVoteCount),
			FlaggedAt:          row.FlaggedAt,
		})
	}
	return flags, nil
}

func toObservations(rows []voteProjectionModel) []entities.VoteObservation {
	out := make([]entities.VoteObservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "trust-safety/anomaly-detection",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("anomaly repository operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.VoteActivityReader = (*Repository)(nil)
var _ ports.CorrelationFlagRepository = (*Repository)(nil)
