package auditsessionservice

import (
	"log/slog"
	"time"

	httpadapter "arbiter/contexts/community-trust/audit-session-service/adapters/http"
	"arbiter/contexts/community-trust/audit-session-service/adapters/memory"
	"arbiter/contexts/community-trust/audit-session-service/application"
	"arbiter/contexts/community-trust/audit-session-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Sessions ports.SessionRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	TimeBox  time.Duration
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Sessions: deps.Sessions,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		TimeBox:  deps.TimeBox,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Sessions: store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
