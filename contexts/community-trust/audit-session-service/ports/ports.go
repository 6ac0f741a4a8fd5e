package ports

import (
	"context"
	"time"

	"arbiter/contexts/community-trust/audit-session-service/domain/entities"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, session entities.AuditSession) error
	GetSession(ctx context.Context, sessionID string) (entities.AuditSession, error)
	UpdateSession(ctx context.Context, session entities.AuditSession) error
	ListExpiredInProgress(ctx context.Context, now time.Time) ([]entities.AuditSession, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
