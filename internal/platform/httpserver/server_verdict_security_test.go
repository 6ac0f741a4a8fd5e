package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auditsessionservice "arbiter/contexts/community-trust/audit-session-service"
	integrityservice "arbiter/contexts/community-trust/integrity-service"
	thresholdpolicy "arbiter/contexts/dispute-resolution/threshold-policy"
	verdictengine "arbiter/contexts/dispute-resolution/verdict-engine"
	verdictports "arbiter/contexts/dispute-resolution/verdict-engine/ports"
	anomalydetection "arbiter/contexts/trust-safety/anomaly-detection"
	fraudengine "arbiter/contexts/trust-safety/fraud-engine"
)

func newTestServer() *Server {
	return New(
		Modules{
			Thresholds: thresholdpolicy.NewInMemoryModule(slog.Default()),
			Verdicts:   verdictengine.NewInMemoryModule(slog.Default()),
			Fraud:      fraudengine.NewInMemoryModule(slog.Default()),
			Anomaly:    anomalydetection.NewInMemoryModule(nil, slog.Default()),
			Integrity:  integrityservice.NewInMemoryModule(slog.Default()),
			Audit:      auditsessionservice.NewInMemoryModule(slog.Default()),
		},
		slog.Default(),
		":0",
	)
}

func TestCreateDilemmaRequiresAgentHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dilemmas", bytes.NewReader([]byte(`{"category":"standard"}`)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCastVoteRequiresAgentHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dilemmas/dilemma-1/votes", bytes.NewReader([]byte(`{"choice":"at_fault"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "idem-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCastVoteRequiresIdempotencyHeader(t *testing.T) {
	server := newTestServer()
	submitDilemma := func() string {
		body := bytes.NewReader([]byte(`{"category":"standard"}`))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/dilemmas", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Agent-Id", "agent-submitter")
		rr := httptest.NewRecorder()
		server.mux.ServeHTTP(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
		}
		var resp struct {
			DilemmaID string `json:"dilemma_id"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode dilemma response: %v", err)
		}
		return resp.DilemmaID
	}
	dilemmaID := submitDilemma()

	server.modules.Verdicts.Store.PutVoterProfile(verdictports.VoterProfile{
		AgentID:   "agent-voter",
		CreatedAt: time.Now().UTC(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dilemmas/"+dilemmaID+"/votes", bytes.NewReader([]byte(`{"choice":"at_fault"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent-Id", "agent-voter")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCastVoteSuccess(t *testing.T) {
	server := newTestServer()

	createBody := bytes.NewReader([]byte(`{"category":"standard"}`))
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/dilemmas", createBody)
	createReq.Header.Set("Content-Type", "application/json")
	createReq.Header.Set("X-Agent-Id", "agent-submitter")
	createRR := httptest.NewRecorder()
	server.mux.ServeHTTP(createRR, createReq)
	if createRR.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", createRR.Code, createRR.Body.String())
	}
	var created struct {
		DilemmaID string `json:"dilemma_id"`
	}
	if err := json.Unmarshal(createRR.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode dilemma response: %v", err)
	}

	server.modules.Verdicts.Store.PutVoterProfile(verdictports.VoterProfile{
		AgentID:   "agent-voter",
		CreatedAt: time.Now().UTC(),
	})

	voteReq := httptest.NewRequest(http.MethodPost, "/api/v1/dilemmas/"+created.DilemmaID+"/votes", bytes.NewReader([]byte(`{"choice":"at_fault"}`)))
	voteReq.Header.Set("Content-Type", "application/json")
	voteReq.Header.Set("X-Agent-Id", "agent-voter")
	voteReq.Header.Set("Idempotency-Key", "idem-vote-1")

	voteRR := httptest.NewRecorder()
	server.mux.ServeHTTP(voteRR, voteReq)
	if voteRR.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", voteRR.Code, voteRR.Body.String())
	}
	var vote struct {
		Choice string  `json:"choice"`
		Weight float64 `json:"weight"`
	}
	if err := json.Unmarshal(voteRR.Body.Bytes(), &vote); err != nil {
		t.Fatalf("decode vote response: %v", err)
	}
	if vote.Choice != "at_fault" {
		t.Fatalf("expected choice at_fault, got %q", vote.Choice)
	}
	if vote.Weight != 0.5 {
		t.Fatalf("expected brand-new voter weight 0.5, got %v", vote.Weight)
	}
}

func TestFinalizeRequiresAdminHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dilemmas/dilemma-1/finalize", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetUnknownDilemmaReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dilemmas/no-such-dilemma", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}
