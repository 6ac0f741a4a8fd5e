package fraudengine

import (
	"log/slog"

	httpadapter "arbiter/contexts/trust-safety/fraud-engine/adapters/http"
	"arbiter/contexts/trust-safety/fraud-engine/adapters/memory"
	"arbiter/contexts/trust-safety/fraud-engine/application"
	"arbiter/contexts/trust-safety/fraud-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Agents       ports.AgentRepository
	Events       ports.FraudEventRepository
	Fingerprints ports.FingerprintRepository
	RateLogs     ports.RateLimitLogRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Agents:       deps.Agents,
		Events:       deps.Events,
		Fingerprints: deps.Fingerprints,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
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
		Agents:       store,
		Events:       store,
		Fingerprints: store,
		RateLogs:     store,
		Clock:        store,
		IDGen:        store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
