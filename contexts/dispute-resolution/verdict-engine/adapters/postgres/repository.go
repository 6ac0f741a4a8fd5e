package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"arbiter/contexts/dispute-resolution/verdict-engine/domain/entities"
	domainerrors "arbiter/contexts/dispute-resolution/verdict-engine/domain/errors"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
	"arbiter/internal/shared/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateDilemma(ctx context.Context, dilemma entities.Dilemma) error {
	row := dilemmaModelFromEntity(dilemma)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("verdict_repo_create_dilemma_failed", err,
			"dilemma_id", row.ID,
			"submitter_id", row.SubmitterID,
		)
	}
	return nil
}

func (r *Repository) GetDilemma(ctx context.Context, dilemmaID string) (entities.Dilemma, error) {
	var row dilemmaModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(dilemmaID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Dilemma{}, domainerrors.ErrDilemmaNotFound
		}
		return entities.Dilemma{}, r.logError("verdict_repo_get_dilemma_failed", err,
			"dilemma_id", strings.TrimSpace(dilemmaID),
		)
	}
	return row.toEntity(), nil
}

// CloseDilemma flips the status under a row lock so concurrent sweep and
// manual finalization cannot both write a verdict.
func (r *Repository) CloseDilemma(ctx context.Context, dilemmaID, verdict, detail string, now time.Time) error {
	dilemmaID = strings.TrimSpace(dilemmaID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row dilemmaModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", dilemmaID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrDilemmaNotFound
			}
			return err
		}
		if row.Status != string(entities.StatusActive) {
			return domainerrors.ErrDilemmaNotActive
		}
		return tx.Model(&dilemmaModel{}).
			Where("id = ?", dilemmaID).
			Updates(map[string]any{
				"status":         string(entities.StatusClosed),
				"final_verdict":  strings.TrimSpace(verdict),
				"verdict_detail": strings.TrimSpace(detail),
				"closes_at":      now.UTC(),
				"updated_at":     now.UTC(),
			}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDilemmaNotFound) || errors.Is(err, domainerrors.ErrDilemmaNotActive) {
			return err
		}
		return r.logError("verdict_repo_close_dilemma_failed", err, "dilemma_id", dilemmaID)
	}
	return nil
}

func (r *Repository) ListActiveDilemmas(ctx context.Context) ([]entities.Dilemma, error) {
	var rows []dilemmaModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.StatusActive)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("verdict_repo_list_active_dilemmas_failed", err)
	}
	items := make([]entities.Dilemma, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "dilemma_id"}, {Name: "voter_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"choice":     row.Choice,
			"weight":     row.Weight,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("verdict_repo_save_vote_failed", create.Error,
			"vote_id", row.ID,
			"dilemma_id", row.DilemmaID,
			"voter_id", row.VoterID,
		)
	}
	return nil
}

func (r *Repository) GetVote(ctx context.Context, voteID string) (entities.Vote, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, domainerrors.ErrVoteNotFound
		}
		return entities.Vote{}, r.logError("verdict_repo_get_vote_failed", err, "vote_id", strings.TrimSpace(voteID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetVoteByIdentity(ctx context.Context, dilemmaID, voterID string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("dilemma_id = ?", strings.TrimSpace(dilemmaID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("verdict_repo_get_vote_by_identity_failed", err,
			"dilemma_id", strings.TrimSpace(dilemmaID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotesByDilemma(ctx context.Context, dilemmaID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("dilemma_id = ?", strings.TrimSpace(dilemmaID)).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("verdict_repo_list_votes_by_dilemma_failed", err,
			"dilemma_id", strings.TrimSpace(dilemmaID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListJudgedVotes(ctx context.Context, voterID string, limit int) ([]entities.JudgedVote, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []judgedVoteRow
	err := r.db.WithContext(ctx).
		Table("votes AS v").
		Select("v.dilemma_id, v.choice, d.final_verdict, v.cast_at").
		Joins("JOIN dilemmas AS d ON d.id = v.dilemma_id").
		Where("v.voter_id = ?", strings.TrimSpace(voterID)).
		Where("d.status = ?", string(entities.StatusClosed)).
		Where("d.final_verdict <> '' AND d.final_verdict <> ?", entities.VerdictSplit).
		Order("v.cast_at DESC").
		Limit(limit).
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("verdict_repo_list_judged_votes_failed", err,
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	items := make([]entities.JudgedVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.JudgedVote{
			DilemmaID:    row.DilemmaID,
			Choice:       row.Choice,
			FinalVerdict: row.FinalVerdict,
			CastAt:       row.CastAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) AdjustTally(ctx context.Context, dilemmaID, choice string, deltaCount int64, deltaWeight float64, now time.Time) error {
	dilemmaID = strings.TrimSpace(dilemmaID)
	choice = strings.TrimSpace(choice)
	row := tallyModel{
		DilemmaID:     dilemmaID,
		Choice:        choice,
		VoteCount:     maxInt64(deltaCount, 0),
		WeightedTotal: maxFloat64(deltaWeight, 0),
		UpdatedAt:     now.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "dilemma_id"}, {Name: "choice"}},
		DoUpdates: clause.Assignments(map[string]any{
			"vote_count":     gorm.Expr("GREATEST(dilemma_tallies.vote_count + ?, 0)", deltaCount),
			"weighted_total": gorm.Expr("GREATEST(dilemma_tallies.weighted_total + ?, 0)", deltaWeight),
			"updated_at":     now.UTC(),
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("verdict_repo_adjust_tally_failed", create.Error,
			"dilemma_id", dilemmaID,
			"choice", choice,
		)
	}
	return nil
}

func (r *Repository) ListTallies(ctx context.Context, dilemmaID string) ([]entities.Tally, error) {
	var rows []tallyModel
	if err := r.db.WithContext(ctx).
		Where("dilemma_id = ?", strings.TrimSpace(dilemmaID)).
		Order("choice ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("verdict_repo_list_tallies_failed", err,
			"dilemma_id", strings.TrimSpace(dilemmaID),
		)
	}
	items := make([]entities.Tally, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ReplaceTallies(ctx context.Context, dilemmaID string, tallies []entities.Tally, now time.Time) error {
	dilemmaID = strings.TrimSpace(dilemmaID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dilemma_id = ?", dilemmaID).Delete(&tallyModel{}).Error; err != nil {
			return err
		}
		for _, tally := range tallies {
			row := tallyModel{
				DilemmaID:     dilemmaID,
				Choice:        strings.TrimSpace(tally.Choice),
				VoteCount:     tally.VoteCount,
				WeightedTotal: tally.WeightedTotal,
				UpdatedAt:     now.UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return r.logError("verdict_repo_replace_tallies_failed", err, "dilemma_id", dilemmaID)
	}
	return nil
}

func (r *Repository) GetVoterProfile(ctx context.Context, agentID string) (ports.VoterProfile, error) {
	var row agentProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(agentID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.VoterProfile{}, domainerrors.ErrVoterNotFound
		}
		return ports.VoterProfile{}, r.logError("verdict_repo_get_voter_profile_failed", err,
			"agent_id", strings.TrimSpace(agentID),
		)
	}
	return ports.VoterProfile{
		AgentID:          row.ID,
		CreatedAt:        row.CreatedAt.UTC(),
		EmailVerified:    row.EmailVerified,
		PhoneVerified:    row.PhoneVerified,
		SubscriptionTier: row.SubscriptionTier,
		FraudScore:       row.FraudScore,
		Banned:           row.Banned,
	}, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("verdict_repo_idempotency_get_failed", err,
			"idempotency_key", strings.TrimSpace(key),
		)
	}
	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", strings.TrimSpace(key)).
			Delete(&idempotencyModel{}).Error; err != nil {
			return ports.IdempotencyRecord{}, false, r.logError("verdict_repo_idempotency_expire_delete_failed", err,
				"idempotency_key", strings.TrimSpace(key),
			)
		}
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		VoteID:      row.VoteID,
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: strings.TrimSpace(record.RequestHash),
		VoteID:      strings.TrimSpace(record.VoteID),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("verdict_repo_idempotency_put_failed", create.Error, "idempotency_key", row.Key)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", row.Key).
		First(&existing).Error; err != nil {
		return r.logError("verdict_repo_idempotency_load_existing_failed", err, "idempotency_key", row.Key)
	}
	if existing.RequestHash != row.RequestHash || existing.VoteID != row.VoteID {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now.UTC()).
		Delete(&idempotencyModel{})
	if result.Error != nil {
		return 0, r.logError("verdict_repo_idempotency_purge_failed", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("verdict_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.EntityID),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAtUTC.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("verdict_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("verdict_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxRecord{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			Status:       row.Status,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("verdict_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "dispute-resolution/verdict-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("verdict repository operation failed", fields...)
	return err
}

type dilemmaModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	SubmitterID   string    `gorm:"column:submitter_id"`
	Category      string    `gorm:"column:category"`
	Status        string    `gorm:"column:status"`
	Hidden        bool      `gorm:"column:hidden"`
	ClosesAt      time.Time `gorm:"column:closes_at"`
	FinalVerdict  string    `gorm:"column:final_verdict"`
	VerdictDetail string    `gorm:"column:verdict_detail"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (dilemmaModel) TableName() string {
	return "dilemmas"
}

func dilemmaModelFromEntity(dilemma entities.Dilemma) dilemmaModel {
	row := dilemmaModel{
		ID:            strings.TrimSpace(dilemma.DilemmaID),
		SubmitterID:   strings.TrimSpace(dilemma.SubmitterID),
		Category:      string(dilemma.Category),
		Status:        string(dilemma.Status),
		Hidden:        dilemma.Hidden,
		ClosesAt:      dilemma.ClosesAt.UTC(),
		FinalVerdict:  strings.TrimSpace(dilemma.FinalVerdict),
		VerdictDetail: strings.TrimSpace(dilemma.VerdictDetail),
		CreatedAt:     dilemma.CreatedAt.UTC(),
		UpdatedAt:     dilemma.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m dilemmaModel) toEntity() entities.Dilemma {
	return entities.Dilemma{
		DilemmaID:     m.ID,
		SubmitterID:   m.SubmitterID,
		Category:      entities.DilemmaCategory(m.Category),
		Status:        entities.DilemmaStatus(m.Status),
		Hidden:        m.Hidden,
		ClosesAt:      m.ClosesAt.UTC(),
		FinalVerdict:  m.FinalVerdict,
		VerdictDetail: m.VerdictDetail,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type voteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	DilemmaID string    `gorm:"column:dilemma_id"`
	VoterID   string    `gorm:"column:voter_id"`
	Choice    string    `gorm:"column:choice"`
	Weight    float64   `gorm:"column:weight"`
	CastAt    time.Time `gorm:"column:cast_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:        strings.TrimSpace(vote.VoteID),
		DilemmaID: strings.TrimSpace(vote.DilemmaID),
		VoterID:   strings.TrimSpace(vote.VoterID),
		Choice:    strings.TrimSpace(vote.Choice),
		Weight:    vote.Weight,
		CastAt:    vote.CastAt.UTC(),
		UpdatedAt: vote.UpdatedAt.UTC(),
	}
	if row.CastAt.IsZero() {
		row.CastAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CastAt
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:    m.ID,
		DilemmaID: m.DilemmaID,
		VoterID:   m.VoterID,
		Choice:    m.Choice,
		Weight:    m.Weight,
		CastAt:    m.CastAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type tallyModel struct {
	DilemmaID     string    `gorm:"column:dilemma_id;primaryKey"`
	Choice        string    `gorm:"column:choice;primaryKey"`
	VoteCount     int64     `gorm:"column:vote_count"`
	WeightedTotal float64   `gorm:"column:weighted_total"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (tallyModel) TableName() string {
	return "dilemma_tallies"
}

func (m tallyModel) toEntity() entities.Tally {
	return entities.Tally{
		DilemmaID:     m.DilemmaID,
		Choice:        m.Choice,
		VoteCount:     m.VoteCount,
		WeightedTotal: m.WeightedTotal,
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type judgedVoteRow struct {
	DilemmaID    string    `gorm:"column:dilemma_id"`
	Choice       string    `gorm:"column:choice"`
	FinalVerdict string    `gorm:"column:final_verdict"`
	CastAt       time.Time `gorm:"column:cast_at"`
}

type agentProjectionModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	EmailVerified    bool      `gorm:"column:email_verified"`
	PhoneVerified    bool      `gorm:"column:phone_verified"`
	SubscriptionTier string    `gorm:"column:subscription_tier"`
	FraudScore       int64     `gorm:"column:fraud_score"`
	Banned           bool      `gorm:"column:banned"`
}

func (agentProjectionModel) TableName() string {
	return "agents"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	VoteID      string    `gorm:"column:vote_id"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "verdict_idempotency"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "verdict_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func maxInt64(value, floor int64) int64 {
	if value < floor {
		return floor
	}
	return value
}

func maxFloat64(value, floor float64) float64 {
	if value < floor {
		return floor
	}
	return value
}

// SystemClock satisfies the module clock with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator issues random identifiers for votes and events.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.DilemmaRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.TallyRepository = (*Repository)(nil)
var _ ports.AgentDirectory = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
