package thresholdpolicy

import (
	"log/slog"
	"time"

	httpadapter "arbiter/contexts/dispute-resolution/threshold-policy/adapters/http"
	"arbiter/contexts/dispute-resolution/threshold-policy/adapters/memory"
	"arbiter/contexts/dispute-resolution/threshold-policy/application"
	"arbiter/contexts/dispute-resolution/threshold-policy/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Tiers      ports.TierRepository
	Population ports.PopulationReader
	Cache      ports.ThresholdCache
	Clock      ports.Clock
	CacheTTL   time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Tiers:      deps.Tiers,
		Population: deps.Population,
		Cache:      deps.Cache,
		Clock:      deps.Clock,
		CacheTTL:   deps.CacheTTL,
		Logger:     deps.Logger,
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
		Tiers:      store,
		Population: store,
		Cache:      memory.NewCache(),
		Clock:      store,
		CacheTTL:   time.Hour,
		Logger:     logger,
	})
	module.Store = store
	return module
}
