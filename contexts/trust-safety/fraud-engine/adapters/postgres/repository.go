package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"arbiter/contexts/trust-safety/fraud-engine/domain/entities"
	domainerrors "arbiter/contexts/trust-safety/fraud-engine/domain/errors"
	"arbiter/contexts/trust-safety/fraud-engine/ports"
)

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

type agentModel struct {
	ID                      string     `gorm:"column:id;primaryKey"`
	CreatedAt               time.Time  `gorm:"column:created_at"`
	EmailVerified           bool       `gorm:"column:email_verified"`
	PhoneVerified           bool       `gorm:"column:phone_verified"`
	SubscriptionTier        string     `gorm:"column:subscription_tier"`
	FraudScore              int64      `gorm:"column:fraud_score"`
	Banned                  bool       `gorm:"column:banned"`
	BanReason               string     `gorm:"column:ban_reason"`
	BannedAt                *time.Time `gorm:"column:banned_at"`
	VisibilityMode          string     `gorm:"column:visibility_mode"`
	DisplayedIntegrityScore float64    `gorm:"column:displayed_integrity_score"`
	UpdatedAt               time.Time  `gorm:"column:updated_at"`
}

func (agentModel) TableName() string {
	return "agents"
}

func (m agentModel) toEntity() entities.Agent {
	return entities.Agent{
		AgentID:                 m.ID,
		CreatedAt:               m.CreatedAt,
		EmailVerified:           m.EmailVerified,
		PhoneVerified:           m.PhoneVerified,
		SubscriptionTier:        entities.SubscriptionTier(m.SubscriptionTier),
		FraudScore:              m.FraudScore,
		Banned:                  m.Banned,
		BanReason:               m.BanReason,
		BannedAt:                m.BannedAt,
		VisibilityMode:          entities.VisibilityMode(m.VisibilityMode),
		DisplayedIntegrityScore: m.DisplayedIntegrityScore,
		UpdatedAt:               m.UpdatedAt,
	}
}

type fraudEventModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	AgentID       string    `gorm:"column:agent_id"`
	EventType     string    `gorm:"column:event_type"`
	ScoreDelta    int64     `gorm:"column:score_delta"`
	PreviousScore int64     `gorm:"column:previous_score"`
	NewScore      int64     `gorm:"column:new_score"`
	Metadata      []byte    `gorm:"column:metadata"`
	OccurredAt    time.Time `gorm:"column:occurred_at"`
}

func (fraudEventModel) TableName() string {
	return "fraud_events"
}

func (m fraudEventModel) toEntity() (entities.FraudEvent, error) {
	event := entities.FraudEvent{
		EventID:       m.ID,
		AgentID:       m.AgentID,
		EventType:     entities.FraudEventType(m.EventType),
		ScoreDelta:    m.ScoreDelta,
		PreviousScore: m.PreviousScore,
		NewScore:      m.NewScore,
		OccurredAt:    m.OccurredAt,
	}
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &event.Metadata); err != nil {
			return entities.FraudEvent{}, err
		}
	}
	return event, nil
}

type deviceFingerprintModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	AgentID         string    `gorm:"column:agent_id"`
	FingerprintHash string    `gorm:"column:fingerprint_hash"`
	SeenAt          time.Time `gorm:"column:seen_at"`
}

func (deviceFingerprintModel) TableName() string {
	return "device_fingerprints"
}

type rateLimitLogModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	AgentID    string    `gorm:"column:agent_id"`
	Action     string    `gorm:"column:action"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (rateLimitLogModel) TableName() string {
	return "rate_limit_logs"
}

func (r *Repository) GetAgent(ctx context.Context, agentID string) (entities.Agent, error) {
	var row agentModel
	err := r.db.WithContext(ctx).
		Where("id = ?", agentID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Agent{}, domainerrors.ErrAgentNotFound
		}
		return entities.Agent{}, r.logError("fraud_repo_get_agent_failed", err, "agent_id", agentID)
	}
	return row.toEntity(), nil
}

// ApplyFraudDelta runs inside a transaction holding a row lock on the agent,
// so concurrent deltas for the same agent serialize at the database.
func (r *Repository) ApplyFraudDelta(
	ctx context.Context,
	agentID string,
	delta int64,
	banReason string,
	now time.Time,
) (ports.FraudScoreUpdate, error) {
	var update ports.FraudScoreUpdate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row agentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", agentID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrAgentNotFound
			}
			return err
		}

		update = ports.FraudScoreUpdate{
			AgentID:       agentID,
			PreviousScore: row.FraudScore,
			NewScore:      row.FraudScore + delta,
		}
		changes := map[string]any{
			"fraud_score": update.NewScore,
			"updated_at":  now,
		}
		if update.NewScore >= entities.BanCeiling && !row.Banned {
			changes["banned"] = true
			changes["ban_reason"] = banReason
			changes["banned_at"] = now
			update.NewlyBanned = true
		}
		update.Banned = row.Banned || update.NewlyBanned

		return tx.Model(&agentModel{}).
			Where("id = ?", agentID).
			Updates(changes).
			Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAgentNotFound) {
			return ports.FraudScoreUpdate{}, err
		}
		return ports.FraudScoreUpdate{}, r.logError("fraud_repo_apply_delta_failed", err, "agent_id", agentID)
	}
	return update, nil
}

func (r *Repository) ResetFraudState(
	ctx context.Context,
	agentID string,
	score int64,
	now time.Time,
) (ports.FraudScoreUpdate, error) {
	var update ports.FraudScoreUpdate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row agentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", agentID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrAgentNotFound
			}
			return err
		}

		update = ports.FraudScoreUpdate{
			AgentID:       agentID,
			PreviousScore: row.FraudScore,
			NewScore:      score,
		}
		return tx.Model(&agentModel{}).
			Where("id = ?", agentID).
			Updates(map[string]any{
				"fraud_score": score,
				"banned":      false,
				"ban_reason":  "",
				"banned_at":   nil,
				"updated_at":  now,
			}).
			Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAgentNotFound) {
			return ports.FraudScoreUpdate{}, err
		}
		return ports.FraudScoreUpdate{}, r.logError("fraud_repo_reset_state_failed", err, "agent_id", agentID)
	}
	return update, nil
}

func (r *Repository) ListBanCandidates(ctx context.Context) ([]entities.Agent, error) {
	var rows []agentModel
	err := r.db.WithContext(ctx).
		Where("fraud_score >= ? AND banned = FALSE", entities.BanCeiling).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("fraud_repo_list_ban_candidates_failed", err)
	}
	agents := make([]entities.Agent, 0, len(rows))
	for _, row := range rows {
		agents = append(agents, row.toEntity())
	}
	return agents, nil
}

func (r *Repository) AppendEvent(ctx context.Context, event entities.FraudEvent) error {
	var payload []byte
	if event.Metadata != nil {
		encoded, err := json.Marshal(event.Metadata)
		if err != nil {
			return r.logError("fraud_repo_encode_metadata_failed", err, "agent_id", event.AgentID)
		}
		payload = encoded
	}
	row := fraudEventModel{
		ID:            event.EventID,
		AgentID:       event.AgentID,
		EventType:     string(event.EventType),
		ScoreDelta:    event.ScoreDelta,
		PreviousScore: event.PreviousScore,
		NewScore:      event.NewScore,
		Metadata:      payload,
		OccurredAt:    event.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("fraud_repo_append_event_failed", err, "agent_id", event.AgentID)
	}
	return nil
}

func (r *Repository) ListEventsByAgent(ctx context.Context, agentID string, limit int) ([]entities.FraudEvent, error) {
	var rows []fraudEventModel
	query := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("fraud_repo_list_events_failed", err, "agent_id", agentID)
	}
	events := make([]entities.FraudEvent, 0, len(rows))
	for _, row := range rows {
		event, err := row.toEntity()
		if err != nil {
			return nil, r.logError("fraud_repo_decode_event_failed", err, "event_id", row.ID)
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *Repository) SaveFingerprint(ctx context.Context, fingerprint entities.DeviceFingerprint) error {
	row := deviceFingerprintModel{
		ID:              fingerprint.FingerprintID,
		AgentID:         fingerprint.AgentID,
		FingerprintHash: fingerprint.FingerprintHash,
		SeenAt:          fingerprint.SeenAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("fraud_repo_save_fingerprint_failed", err, "agent_id", fingerprint.AgentID)
	}
	return nil
}

func (r *Repository) ListAgentsByHash(ctx context.Context, fingerprintHash string) ([]string, error) {
	var owners []string
	err := r.db.WithContext(ctx).
		Model(&deviceFingerprintModel{}).
		Distinct("agent_id").
		Where("fingerprint_hash = ?", fingerprintHash).
		Order("agent_id ASC").
		Pluck("agent_id", &owners).
		Error
	if err != nil {
		return nil, r.logError("fraud_repo_list_agents_by_hash_failed", err)
	}
	return owners, nil
}

func (r *Repository) PurgeFingerprintsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("seen_at < ?", cutoff).
		Delete(&deviceFingerprintModel{})
	if result.Error != nil {
		return 0, r.logError("fraud_repo_purge_fingerprints_failed", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) PurgeRateLimitLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("occurred_at < ?", cutoff).
		Delete(&rateLimitLogModel{})
	if result.Error != nil {
		return 0, r.logError("fraud_repo_purge_rate_limit_logs_failed", result.Error)
	}
	return result.RowsAffected, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "trust-safety/fraud-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("fraud repository operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.AgentRepository = (*Repository)(nil)
var _ ports.FraudEventRepository = (*Repository)(nil)
var _ ports.FingerprintRepository = (*Repository)(nil)
var _ ports.RateLimitLogRepository = (*Repository)(nil)
