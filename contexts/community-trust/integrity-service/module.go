package integrityservice

import (
	"log/slog"

	httpadapter "arbiter/contexts/community-trust/integrity-service/adapters/http"
	"arbiter/contexts/community-trust/integrity-service/adapters/memory"
	"arbiter/contexts/community-trust/integrity-service/application"
	"arbiter/contexts/community-trust/integrity-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Dilemmas ports.JudgedDilemmaReader
	Agents   ports.AgentDirectory
	Scores   ports.ScoreWriter
	Clock    ports.Clock
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Dilemmas: deps.Dilemmas,
		Agents:   deps.Agents,
		Scores:   deps.Scores,
		Clock:    deps.Clock,
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
		Dilemmas: store,
		Agents:   store,
		Scores:   store,
		Clock:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
