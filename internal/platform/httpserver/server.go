package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	auditsessionservice "arbiter/contexts/community-trust/audit-session-service"
	integrityservice "arbiter/contexts/community-trust/integrity-service"
	thresholdpolicy "arbiter/contexts/dispute-resolution/threshold-policy"
	verdictengine "arbiter/contexts/dispute-resolution/verdict-engine"
	anomalydetection "arbiter/contexts/trust-safety/anomaly-detection"
	fraudengine "arbiter/contexts/trust-safety/fraud-engine"
	_ "arbiter/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Modules struct {
	Thresholds thresholdpolicy.Module
	Verdicts   verdictengine.Module
	Fraud      fraudengine.Module
	Anomaly    anomalydetection.Module
	Integrity  integrityservice.Module
	Audit      auditsessionservice.Module
}

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	modules Modules
}

func New(modules Modules, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		modules: modules,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/v1/thresholds", s.handleGetThresholds)
	s.mux.HandleFunc("PUT /api/v1/thresholds/tiers", s.handleUpdateTiers)
	s.mux.HandleFunc("POST /api/v1/thresholds/cache/invalidate", s.handleInvalidateThresholdCache)

	s.mux.HandleFunc("POST /api/v1/dilemmas", s.handleCreateDilemma)
	s.mux.HandleFunc("GET /api/v1/dilemmas/{dilemma_id}", s.handleGetDilemma)
	s.mux.HandleFunc("POST /api/v1/dilemmas/{dilemma_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /api/v1/dilemmas/{dilemma_id}/finalize", s.handleFinalizeDilemma)
	s.mux.HandleFunc("GET /api/v1/agents/{agent_id}/vote-weight", s.handleVoteWeight)

	s.mux.HandleFunc("POST /api/v1/fraud/events", s.handleReportFraudEvent)
	s.mux.HandleFunc("POST /api/v1/fraud/fingerprints", s.handleRecordFingerprint)
	s.mux.HandleFunc("GET /api/v1/fraud/agents/{agent_id}", s.handleFraudAgentStatus)
	s.mux.HandleFunc("POST /api/v1/fraud/agents/{agent_id}/unban", s.handleUnbanAgent)

	s.mux.HandleFunc("GET /api/v1/anomaly/correlation-flags", s.handleListCorrelationFlags)

	s.mux.HandleFunc("GET /api/v1/agents/{agent_id}/integrity", s.handleGetIntegrity)

	s.mux.HandleFunc("POST /api/v1/audit-sessions", s.handleStartAuditSession)
	s.mux.HandleFunc("GET /api/v1/audit-sessions/{session_id}", s.handleGetAuditSession)
	s.mux.HandleFunc("POST /api/v1/audit-sessions/{session_id}/complete", s.handleCompleteAuditSession)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
