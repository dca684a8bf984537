// Package api serves the simulation over HTTP: scenario CRUD, run
// launch/status/results, CSV export, and network previews. Runs execute in
// background goroutines through a bounded queue; their status and progress
// flow through the store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/funnelsim/internal/engine"
	"github.com/talgya/funnelsim/internal/network"
	"github.com/talgya/funnelsim/internal/persistence"
	"github.com/talgya/funnelsim/internal/scenario"
)

// Run queue and preview sizing, matching the original service's executor.
const (
	maxConcurrentRuns = 2
	previewMaxGenN    = 1000 // Node count a preview request is clamped to before generation
	previewMaxNodes   = 500  // Nodes surviving the preview sample
	previewSeed       = 42   // Previews are stateless, so the seed is fixed
)

// Server serves the funnel simulation API.
type Server struct {
	Store  *persistence.Store
	Addr   string
	Logger *slog.Logger

	// Runner settings applied to every launched run.
	Workers    int
	Policy     engine.Policy
	RepTimeout time.Duration

	runSlots chan struct{}
	httpSrv  *http.Server
}

// Handler builds the route table. Split out from Start so tests can drive
// the server through httptest.
func (s *Server) Handler() http.Handler {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	s.runSlots = make(chan struct{}, maxConcurrentRuns)

	limiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scenario", RateLimitMiddleware(limiter, s.handleSaveScenario))
	mux.HandleFunc("GET /api/scenarios", s.handleListScenarios)
	mux.HandleFunc("POST /api/run", RateLimitMiddleware(limiter, s.handleStartRun))
	mux.HandleFunc("GET /api/run/{id}/status", s.handleRunStatus)
	mux.HandleFunc("GET /api/run/{id}/results", s.handleRunResults)
	mux.HandleFunc("GET /api/run/{id}/export/csv", s.handleExportCSV)
	mux.HandleFunc("POST /api/network/preview", s.handlePreview)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return corsMiddleware(timingMiddleware(mux))
}

// Start serves until the context is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{Addr: s.Addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("HTTP API starting", "addr", s.Addr)
		if err := s.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are always
// allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// timingMiddleware feeds the request duration histogram, labeled by the
// matched route pattern.
func timingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	cfg, err := scenario.FromJSON(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	id, err := s.Store.SaveScenario(cfg)
	if err != nil {
		s.internalError(w, "save scenario", err)
		return
	}
	writeJSON(w, map[string]string{"scenario_id": id})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Store.ListScenarios()
	if err != nil {
		s.internalError(w, "list scenarios", err)
		return
	}
	writeJSON(w, rows)
}

// runRequest launches by saved scenario ID or with an inline config.
type runRequest struct {
	ScenarioID string           `json:"scenario_id"`
	Config     *scenario.Config `json:"config"`
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var cfg scenario.Config
	switch {
	case req.ScenarioID != "":
		var err error
		cfg, err = s.Store.GetScenario(req.ScenarioID)
		if errors.Is(err, persistence.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			s.internalError(w, "load scenario", err)
			return
		}
	case req.Config != nil:
		cfg = *req.Config
		cfg.Normalize()
		if err := cfg.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		var err error
		if req.ScenarioID, err = s.Store.SaveScenario(cfg); err != nil {
			s.internalError(w, "save inline scenario", err)
			return
		}
	default:
		http.Error(w, "request needs scenario_id or config", http.StatusBadRequest)
		return
	}

	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	runID, err := s.Store.CreateRun(req.ScenarioID)
	if err != nil {
		s.internalError(w, "create run", err)
		return
	}

	runsStarted.Inc()
	go s.executeRun(runID, cfg)

	writeJSON(w, map[string]string{"run_id": runID, "status": persistence.StatusQueued})
}

// executeRun drives one queued run to a terminal state. The run slot channel
// bounds concurrent runs; queued runs wait for a slot.
func (s *Server) executeRun(runID string, cfg scenario.Config) {
	s.runSlots <- struct{}{}
	defer func() { <-s.runSlots }()

	activeRuns.Inc()
	defer activeRuns.Dec()

	if err := s.Store.StartRun(runID); err != nil {
		s.Logger.Error("mark run running", "run", runID, "error", err)
	}

	runner := &engine.Runner{
		Workers:    s.Workers,
		RepTimeout: s.RepTimeout,
		Policy:     s.Policy,
		Logger:     s.Logger,
		Progress: func(f float64) {
			if err := s.Store.SetRunProgress(runID, f); err != nil {
				s.Logger.Warn("update run progress", "run", runID, "error", err)
			}
		},
	}

	res, err := runner.Run(context.Background(), cfg)
	if res == nil {
		s.Logger.Error("run failed", "run", runID, "error", err)
		if ferr := s.Store.FailRun(runID, err.Error()); ferr != nil {
			s.Logger.Error("mark run failed", "run", runID, "error", ferr)
		}
		runsCompleted.WithLabelValues(persistence.StatusError).Inc()
		return
	}
	if err != nil {
		// Partial success: some repetitions failed but the policy could
		// still reduce. The run completes; the failures go to the log.
		s.Logger.Warn("run completed with failed repetitions", "run", runID, "error", err)
	}

	path, werr := s.Store.WriteResults(runID, res)
	if werr != nil {
		s.Logger.Error("write results", "run", runID, "error", werr)
		s.Store.FailRun(runID, werr.Error())
		runsCompleted.WithLabelValues(persistence.StatusError).Inc()
		return
	}
	if cerr := s.Store.CompleteRun(runID, path); cerr != nil {
		s.Logger.Error("mark run done", "run", runID, "error", cerr)
		return
	}
	runsCompleted.WithLabelValues(persistence.StatusDone).Inc()
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	row, ok := s.getRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"status":   row.Status,
		"progress": row.Progress,
		"message":  row.Message,
	})
}

func (s *Server) handleRunResults(w http.ResponseWriter, r *http.Request) {
	res, err := s.Store.LoadResults(r.PathValue("id"))
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "load results", err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	path, err := s.Store.ExportCSV(r.PathValue("id"))
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "export csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var cfg scenario.NetworkConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	// Previews render a sample anyway, so cap the generated graph instead of
	// building the full scenario-sized one.
	if cfg.N > previewMaxGenN {
		cfg.N = previewMaxGenN
	}

	topo, err := network.Generate(cfg, previewSeed)
	if err != nil {
		if errors.Is(err, scenario.ErrTopology) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.internalError(w, "generate preview", err)
		return
	}

	preview := topo.Preview(previewMaxNodes, previewSeed)
	writeJSON(w, map[string]any{
		"nodes":   preview.Nodes,
		"edges":   preview.Edges,
		"metrics": topo.Metrics(),
	})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) (persistence.RunRow, bool) {
	row, err := s.Store.GetRun(r.PathValue("id"))
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return persistence.RunRow{}, false
	}
	if err != nil {
		s.internalError(w, "get run", err)
		return persistence.RunRow{}, false
	}
	return row, true
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.Logger.Error(op, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
