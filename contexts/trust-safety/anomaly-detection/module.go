package anomalydetection

import (
	"log/slog"

	httpadapter "arbiter/contexts/trust-safety/anomaly-detection/adapters/http"
	"arbiter/contexts/trust-safety/anomaly-detection/adapters/memory"
	"arbiter/contexts/trust-safety/anomaly-detection/application"
	"arbiter/contexts/trust-safety/anomaly-detection/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	Timing      application.TimingDetector
	Correlation application.CorrelationDetector
	Store       *memory.Store
}

type Dependencies struct {
	Votes  ports.VoteActivityReader
	Flags  ports.CorrelationFlagRepository
	Fraud  ports.FraudReporter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	timing := application.TimingDetector{
		Votes:  deps.Votes,
		Fraud:  deps.Fraud,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	correlation := application.CorrelationDetector{
		Votes:  deps.Votes,
		Flags:  deps.Flags,
		Fraud:  deps.Fraud,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Correlation: correlation,
			Logger:      deps.Logger,
		},
		Timing:      timing,
		Correlation: correlation,
	}
}

func NewInMemoryModule(fraud ports.FraudReporter, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Votes:  store,
		Flags:  store,
		Fraud:  fraud,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
