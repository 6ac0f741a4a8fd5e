package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	auditsessionservice "arbiter/contexts/community-trust/audit-session-service"
	auditpostgres "arbiter/contexts/community-trust/audit-session-service/adapters/postgres"
	auditworkers "arbiter/contexts/community-trust/audit-session-service/application/workers"
	integrityservice "arbiter/contexts/community-trust/integrity-service"
	integritypostgres "arbiter/contexts/community-trust/integrity-service/adapters/postgres"
	integrityworkers "arbiter/contexts/community-trust/integrity-service/application/workers"
	thresholdpolicy "arbiter/contexts/dispute-resolution/threshold-policy"
	thresholdmemory "arbiter/contexts/dispute-resolution/threshold-policy/adapters/memory"
	thresholdpostgres "arbiter/contexts/dispute-resolution/threshold-policy/adapters/postgres"
	thresholdapp "arbiter/contexts/dispute-resolution/threshold-policy/application"
	verdictengine "arbiter/contexts/dispute-resolution/verdict-engine"
	verdictpostgres "arbiter/contexts/dispute-resolution/verdict-engine/adapters/postgres"
	verdictworkers "arbiter/contexts/dispute-resolution/verdict-engine/application/workers"
	verdictports "arbiter/contexts/dispute-resolution/verdict-engine/ports"
	anomalydetection "arbiter/contexts/trust-safety/anomaly-detection"
	anomalypostgres "arbiter/contexts/trust-safety/anomaly-detection/adapters/postgres"
	anomalyworkers "arbiter/contexts/trust-safety/anomaly-detection/application/workers"
	anomalyports "arbiter/contexts/trust-safety/anomaly-detection/ports"
	fraudengine "arbiter/contexts/trust-safety/fraud-engine"
	fraudpostgres "arbiter/contexts/trust-safety/fraud-engine/adapters/postgres"
	fraudapp "arbiter/contexts/trust-safety/fraud-engine/application"
	fraudworkers "arbiter/contexts/trust-safety/fraud-engine/application/workers"
	fraudentities "arbiter/contexts/trust-safety/fraud-engine/domain/entities"
	"arbiter/internal/platform/config"
	"arbiter/internal/platform/db"
	"arbiter/internal/platform/httpserver"
	"arbiter/internal/platform/jobs"
	"arbiter/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	verdictIdempotencyTTL = 7 * 24 * time.Hour
	outboxRelayInterval   = 2 * time.Second
	outboxRelayBatchSize  = 100
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres        *db.Postgres
	outboxRelay     verdictworkers.OutboxRelay
	hourly          jobs.Pipeline
	nightly         jobs.Pipeline
	relayInterval   time.Duration
	hourlyInterval  time.Duration
	nightlyInterval time.Duration
	enableHourly    bool
	enableNightly   bool
	logger          *slog.Logger
}

// thresholdSource feeds the verdict engine from the threshold-policy
// service so both read the same tier resolution.
type thresholdSource struct {
	service thresholdapp.Service
}

func (t thresholdSource) CurrentThresholds(ctx context.Context) (verdictports.VerdictThresholds, error) {
	resolved, err := t.service.CurrentThresholds(ctx)
	if err != nil {
		return verdictports.VerdictThresholds{}, err
	}
	return verdictports.VerdictThresholds{
		MinVotesForVerdict: resolved.MinVotesForVerdict,
		VotingWindowDays:   resolved.VotingWindowDays,
		ClearVerdictPct:    resolved.ClearVerdictPct,
	}, nil
}

var _ verdictports.ThresholdSource = thresholdSource{}

// fraudReporter routes detector findings into the fraud engine's scoring
// path instead of letting detectors touch agent rows directly.
type fraudReporter struct {
	service fraudapp.Service
}

func (f fraudReporter) ReportFraudEvent(ctx context.Context, agentID string, eventType string, metadata map[string]any) error {
	_, err := f.service.AddFraudEvent(ctx, agentID, fraudentities.FraudEventType(eventType), metadata)
	return err
}

var _ anomalyports.FraudReporter = fraudReporter{}

// wiring holds the fully constructed modules plus the repositories the
// worker pipelines reuse.
type wiring struct {
	modules       httpserver.Modules
	verdictRepo   *verdictpostgres.Repository
	fraudRepo     *fraudpostgres.Repository
	anomalyRepo   *anomalypostgres.Repository
	integrityRepo *integritypostgres.Repository
}

func buildWiring(cfg config.Config, pg *db.Postgres, logger *slog.Logger) wiring {
	thresholdRepo := thresholdpostgres.NewRepository(pg.DB, logger)
	thresholds := thresholdpolicy.NewModule(thresholdpolicy.Dependencies{
		Tiers:      thresholdRepo,
		Population: thresholdRepo,
		Cache:      thresholdmemory.NewCache(),
		Clock:      thresholdpostgres.SystemClock{},
		CacheTTL:   cfg.ThresholdCacheTTL,
		Logger:     logger,
	})

	fraudRepo := fraudpostgres.NewRepository(pg.DB, logger)
	fraud := fraudengine.NewModule(fraudengine.Dependencies{
		Agents:       fraudRepo,
		Events:       fraudRepo,
		Fingerprints: fraudRepo,
		RateLogs:     fraudRepo,
		Clock:        fraudpostgres.SystemClock{},
		IDGen:        fraudpostgres.UUIDGenerator{},
		Logger:       logger,
	})

	anomalyRepo := anomalypostgres.NewRepository(pg.DB, logger)
	anomaly := anomalydetection.NewModule(anomalydetection.Dependencies{
		Votes:  anomalyRepo,
		Flags:  anomalyRepo,
		Fraud:  fraudReporter{service: fraud.Service},
		Clock:  anomalypostgres.SystemClock{},
		IDGen:  anomalypostgres.UUIDGenerator{},
		Logger: logger,
	})

	verdictRepo := verdictpostgres.NewRepository(pg.DB, logger)
	verdicts := verdictengine.NewModule(verdictengine.Dependencies{
		Dilemmas:       verdictRepo,
		Votes:          verdictRepo,
		Tallies:        verdictRepo,
		Agents:         verdictRepo,
		Thresholds:     thresholdSource{service: thresholds.Service},
		Idempotency:    verdictRepo,
		Outbox:         verdictRepo,
		Clock:          verdictpostgres.SystemClock{},
		IDGen:          verdictpostgres.UUIDGenerator{},
		IdempotencyTTL: verdictIdempotencyTTL,
		Logger:         logger,
	})

	integrityRepo := integritypostgres.NewRepository(pg.DB, logger)
	integrity := integrityservice.NewModule(integrityservice.Dependencies{
		Dilemmas: integrityRepo,
		Agents:   integrityRepo,
		Scores:   integrityRepo,
		Clock:    integritypostgres.SystemClock{},
		Logger:   logger,
	})

	auditRepo := auditpostgres.NewRepository(pg.DB, logger)
	audit := auditsessionservice.NewModule(auditsessionservice.Dependencies{
		Sessions: auditRepo,
		Clock:    auditpostgres.SystemClock{},
		IDGen:    auditpostgres.UUIDGenerator{},
		Logger:   logger,
	})

	return wiring{
		modules: httpserver.Modules{
			Thresholds: thresholds,
			Verdicts:   verdicts,
			Fraud:      fraud,
			Anomaly:    anomaly,
			Integrity:  integrity,
			Audit:      audit,
		},
		verdictRepo:   verdictRepo,
		fraudRepo:     fraudRepo,
		anomalyRepo:   anomalyRepo,
		integrityRepo: integrityRepo,
	}
}

func connect(cfg config.Config, logger *slog.Logger) (*db.Postgres, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := pg.Migrate(); err != nil {
			_ = pg.Close()
			return nil, err
		}
		logger.Info("migrations applied",
			"event", "bootstrap_migrations_applied",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return pg, nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	pg, err := connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	wired := buildWiring(cfg, pg, logger)
	server := httpserver.New(wired.modules, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	pg, err := connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	wired := buildWiring(cfg, pg, logger)
	bus := messaging.NewBus(logger)

	hourly := jobs.Pipeline{
		Name: "hourly",
		Tasks: []jobs.Task{
			{Name: "timing_sweep", Runner: anomalyworkers.TimingSweepTask{
				Detector: wired.modules.Anomaly.Timing,
				Votes:    wired.anomalyRepo,
				Clock:    anomalypostgres.SystemClock{},
				Logger:   logger,
			}},
			{Name: "ban_enforcement", Runner: fraudworkers.BanEnforcementTask{
				Service: wired.modules.Fraud.Service,
				Logger:  logger,
			}},
			{Name: "tally_resync", Runner: verdictworkers.TallyResyncTask{
				Dilemmas: wired.verdictRepo,
				Votes:    wired.verdictRepo,
				Tallies:  wired.verdictRepo,
				Clock:    verdictpostgres.SystemClock{},
				Logger:   logger,
			}},
			{Name: "finalization_sweep", Runner: verdictworkers.FinalizationSweepTask{
				Dilemmas:   wired.verdictRepo,
				Tallies:    wired.verdictRepo,
				Thresholds: thresholdSource{service: wired.modules.Thresholds.Service},
				Finalize:   wired.modules.Verdicts.Finalize,
				Clock:      verdictpostgres.SystemClock{},
				Logger:     logger,
			}},
			{Name: "idempotency_purge", Runner: verdictworkers.IdempotencyPurgeTask{
				Idempotency: wired.verdictRepo,
				Clock:       verdictpostgres.SystemClock{},
				Logger:      logger,
			}},
		},
		Logger: logger,
	}

	nightly := jobs.Pipeline{
		Name: "nightly",
		Tasks: []jobs.Task{
			{Name: "integrity_recompute", Runner: integrityworkers.IntegrityRecomputeTask{
				Service: wired.modules.Integrity.Service,
				Agents:  wired.integrityRepo,
				Logger:  logger,
			}},
			{Name: "fingerprint_purge", Runner: fraudworkers.FingerprintPurgeTask{
				Fingerprints: wired.fraudRepo,
				Clock:        fraudpostgres.SystemClock{},
				Logger:       logger,
			}},
			{Name: "rate_limit_log_purge", Runner: fraudworkers.RateLimitLogPurgeTask{
				Logs:   wired.fraudRepo,
				Clock:  fraudpostgres.SystemClock{},
				Logger: logger,
			}},
			{Name: "correlation_sweep", Runner: anomalyworkers.CorrelationSweepTask{
				Detector:   wired.modules.Anomaly.Correlation,
				Votes:      wired.anomalyRepo,
				Clock:      anomalypostgres.SystemClock{},
				SampleSize: cfg.CorrelationSampleSize,
				Logger:     logger,
			}},
			{Name: "session_expiry", Runner: auditworkers.SessionExpiryTask{
				Service: wired.modules.Audit.Service,
				Logger:  logger,
			}},
		},
		Logger: logger,
	}

	return &WorkerApp{
		postgres: pg,
		outboxRelay: verdictworkers.OutboxRelay{
			Outbox:    wired.verdictRepo,
			Publisher: bus,
			Clock:     verdictpostgres.SystemClock{},
			BatchSize: outboxRelayBatchSize,
			Logger:    logger,
		},
		hourly:          hourly,
		nightly:         nightly,
		relayInterval:   outboxRelayInterval,
		hourlyInterval:  cfg.HourlyInterval,
		nightlyInterval: cfg.NightlyInterval,
		enableHourly:    cfg.EnableHourlyPipeline,
		enableNightly:   cfg.EnableNightlyPipeline,
		logger:          logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	relayTicker := time.NewTicker(w.relayInterval)
	defer relayTicker.Stop()
	hourlyTicker := time.NewTicker(w.hourlyInterval)
	defer hourlyTicker.Stop()
	nightlyTicker := time.NewTicker(w.nightlyInterval)
	defer nightlyTicker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"relay_interval", w.relayInterval.String(),
		"hourly_interval", w.hourlyInterval.String(),
		"nightly_interval", w.nightlyInterval.String(),
		"hourly_enabled", w.enableHourly,
		"nightly_enabled", w.enableNightly,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-relayTicker.C:
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				w.logger.Error("outbox relay cycle failed",
					"event", "bootstrap_outbox_relay_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		case <-hourlyTicker.C:
			if w.enableHourly {
				_, _ = w.hourly.Run(ctx)
			}
		case <-nightlyTicker.C:
			if w.enableNightly {
				_, _ = w.nightly.Run(ctx)
			}
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
