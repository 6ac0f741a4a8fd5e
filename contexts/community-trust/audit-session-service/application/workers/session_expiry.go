package workers

import (
	"context"
	"log/slog"

	"arbiter/contexts/community-trust/audit-session-service/application"
)

// SessionExpiryTask expires in_progress sessions past their time box.
type SessionExpiryTask struct {
	Service application.Service
	Logger  *slog.Logger
}

func (t SessionExpiryTask) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(t.Logger)
	expired, err := t.Service.ExpireSessions(ctx)
	if err != nil {
		logger.Error("session expiry sweep failed",
			"event", "audit_session_expiry_failed",
			"module", "community-trust/audit-session-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	logger.Info("session expiry sweep completed",
		"event", "audit_session_expiry_completed",
		"module", "community-trust/audit-session-service",
		"layer", "worker",
		"expired_count", expired,
	)
	return nil
}
