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

	"arbiter/contexts/community-trust/audit-session-service/domain/entities"
	domainerrors "arbiter/contexts/community-trust/audit-session-service/domain/errors"
	"arbiter/contexts/community-trust/audit-session-service/ports"
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

type sessionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	AgentID   string    `gorm:"column:agent_id"`
	Questions []byte    `gorm:"column:questions"`
	Status    string    `gorm:"column:status"`
	Score     int64     `gorm:"column:score"`
	Passed    bool      `gorm:"column:passed"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionModel) TableName() string {
	return "master_audit_sessions"
}

type questionRow struct {
	QuestionID  string   `json:"question_id"`
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
}

func (m sessionModel) toEntity() (entities.AuditSession, error) {
	var rows []questionRow
	if len(m.Questions) > 0 {
		if err := json.Unmarshal(m.Questions, &rows); err != nil {
			return entities.AuditSession{}, err
		}
	}
	questions := make([]entities.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, entities.Question{
			QuestionID:  row.QuestionID,
			Prompt:      row.Prompt,
			Choices:     row.Choices,
			AnswerIndex: row.AnswerIndex,
		})
	}
	return entities.AuditSession{
		SessionID: m.ID,
		AgentID:   m.AgentID,
		Questions: questions,
		Status:    entities.SessionStatus(m.Status),
		Score:     m.Score,
		Passed:    m.Passed,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func fromEntity(session entities.AuditSession) (sessionModel, error) {
	rows := make([]questionRow, 0, len(session.Questions))
	for _, question := range session.Questions {
		rows = append(rows, questionRow{
			QuestionID:  question.QuestionID,
			Prompt:      question.Prompt,
			Choices:     question.Choices,
			AnswerIndex: question.AnswerIndex,
		})
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return sessionModel{}, err
	}
	return sessionModel{
		ID:        session.SessionID,
		AgentID:   session.AgentID,
		Questions: payload,
		Status:    string(session.Status),
		Score:     session.Score,
		Passed:    session.Passed,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}, nil
}

func (r *Repository) CreateSession(ctx context.Context, session entities.AuditSession) error {
	row, err := fromEntity(session)
	if err != nil {
		return r.logError("audit_repo_encode_session_failed", err, "session_id", session.SessionID)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRequest
		}
		return r.logError("audit_repo_create_session_failed", err, "session_id", session.SessionID)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.AuditSession, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AuditSession{}, domainerrors.ErrSessionNotFound
		}
		return entities.AuditSession{}, r.logError("audit_repo_get_session_failed", err, "session_id", sessionID)
	}
	session, err := row.toEntity()
	if err != nil {
		return entities.AuditSession{}, r.logError("audit_repo_decode_session_failed", err, "session_id", sessionID)
	}
	return session, nil
}

func (r *Repository) UpdateSession(ctx context.Context, session entities.AuditSession) error {
	row, err := fromEntity(session)
	if err != nil {
		return r.logError("audit_repo_encode_session_failed", err, "session_id", session.SessionID)
	}
	result := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("id = ?", session.SessionID).
		Updates(map[string]any{
			"status":     row.Status,
			"score":      row.Score,
			"passed":     row.Passed,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("audit_repo_update_session_failed", result.Error, "session_id", session.SessionID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSessionNotFound
	}
	return nil
}

func (r *Repository) ListExpiredInProgress(ctx context.Context, now time.Time) ([]entities.AuditSession, error) {
	var rows []sessionModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(entities.StatusInProgress), now).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("audit_repo_list_expired_failed", err)
	}
	sessions := make([]entities.AuditSession, 0, len(rows))
	for _, row := range rows {
		session, err := row.toEntity()
		if err != nil {
			return nil, r.logError("audit_repo_decode_session_failed", err, "session_id", row.ID)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-trust/audit-session-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("audit session repository operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.SessionRepository = (*Repository)(nil)
