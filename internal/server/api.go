package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/Uddhav-Saikia/ElasticRev/internal/scenario"
	"github.com/Uddhav-Saikia/ElasticRev/internal/store"
	"go.uber.org/zap"
)

// APIServer is the thin HTTP shim over the engine and scenario service. It is
// a collaborator surface, not part of the core: handlers validate, dispatch
// and encode, nothing more.
type APIServer struct {
	server    *http.Server
	engine    *elasticity.Engine
	scenarios *scenario.Service
	jobs      *JobManager
	logger    *zap.Logger
	startTime time.Time
}

// NewAPIServer creates a new APIServer listening on the given port.
func NewAPIServer(port int, engine *elasticity.Engine, scenarios *scenario.Service, logger *zap.Logger) *APIServer {
	s := &APIServer{
		engine:    engine,
		scenarios: scenarios,
		jobs:      NewJobManager(logger),
		logger:    logger.Named("api-server"),
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/calculate", s.calculateHandler)
	mux.HandleFunc("/calculations/", s.calculationHandler)
	mux.HandleFunc("/simulate", s.simulateHandler)
	mux.HandleFunc("/simulate/competitive", s.competitiveHandler)
	mux.HandleFunc("/simulate/seasonal", s.seasonalHandler)
	mux.HandleFunc("/simulate/bulk", s.bulkSimulateHandler)
	mux.HandleFunc("/scenarios/compare", s.compareHandler)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := struct {
		StartTime string `json:"start_time"`
		Uptime    string `json:"uptime"`
	}{
		StartTime: s.startTime.Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).String(),
	}
	s.writeJSON(w, http.StatusOK, status)
}

type calculateRequest struct {
	ProductID uint   `json:"product_id"`
	ModelType string `json:"model_type"`
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   string `json:"end_date,omitempty"`
}

// calculateHandler starts an asynchronous calculation and returns the job to
// poll. Fitting never runs on the request goroutine.
func (s *APIServer) calculateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	modelType, err := elasticity.ParseModelType(req.ModelType)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	from, to, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	job := s.jobs.Submit(req.ProductID, func(ctx context.Context) (*models.ElasticityResult, error) {
		return s.engine.CalculateForPeriod(ctx, req.ProductID, modelType, from, to)
	})
	s.writeJSON(w, http.StatusAccepted, job)
}

func (s *APIServer) calculationHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/calculations/")
	job, ok := s.jobs.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "not_found", "no such calculation job")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

type simulateRequest struct {
	ProductID      uint    `json:"product_id"`
	NewPrice       float64 `json:"new_price"`
	SimulationDays int     `json:"simulation_days"`
}

func (s *APIServer) simulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	result, err := s.scenarios.Simulate(req.ProductID, req.NewPrice, req.SimulationDays)
	if err != nil {
		s.writeError(w, statusFor(err), elasticity.KindOf(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type competitiveRequest struct {
	ProductID          uint    `json:"product_id"`
	PriceChangePercent float64 `json:"price_change_percent"`
	DelayDays          int     `json:"delay_days"`
	MatchPercent       float64 `json:"match_percent"`
}

func (s *APIServer) competitiveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req competitiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	result, err := s.scenarios.SimulateCompetitiveResponse(req.ProductID, req.PriceChangePercent, scenario.CompetitiveResponse{
		DelayDays:    req.DelayDays,
		MatchPercent: req.MatchPercent,
	})
	if err != nil {
		s.writeError(w, statusFor(err), elasticity.KindOf(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type seasonalRequest struct {
	ProductID      uint    `json:"product_id"`
	NewPrice       float64 `json:"new_price"`
	SimulationDays int     `json:"simulation_days"`
	Season         string  `json:"season"`
}

func (s *APIServer) seasonalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req seasonalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	result, err := s.scenarios.SimulateSeasonal(req.ProductID, req.NewPrice, req.SimulationDays, req.Season)
	if err != nil {
		s.writeError(w, statusFor(err), elasticity.KindOf(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type bulkSimulateRequest struct {
	ProductIDs          []uint    `json:"product_ids"`
	PriceChangePercents []float64 `json:"price_change_percents"`
}

func (s *APIServer) bulkSimulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bulkSimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	report, err := s.scenarios.BulkSimulate(req.ProductIDs, req.PriceChangePercents)
	if err != nil {
		s.writeError(w, statusFor(err), elasticity.KindOf(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type compareRequest struct {
	ScenarioIDs []uint `json:"scenario_ids"`
}

func (s *APIServer) compareHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	cmp, err := s.scenarios.CompareScenarios(req.ScenarioIDs)
	if err != nil {
		s.writeError(w, statusFor(err), elasticity.KindOf(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, cmp)
}

// statusFor maps the core error taxonomy to HTTP statuses. Everything in the
// taxonomy is a caller-side condition; only unknown errors become 500s.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, elasticity.ErrSimulationInput),
		errors.Is(err, elasticity.ErrInsufficientData):
		return http.StatusBadRequest
	case errors.Is(err, elasticity.ErrModelFit),
		errors.Is(err, elasticity.ErrDegenerateElasticity):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parsePeriod(start, end string) (from, to time.Time, err error) {
	if start != "" {
		from, err = time.Parse("2006-01-02", start)
		if err != nil {
			return from, to, fmt.Errorf("invalid start_date %q", start)
		}
	}
	if end != "" {
		to, err = time.Parse("2006-01-02", end)
		if err != nil {
			return from, to, fmt.Errorf("invalid end_date %q", end)
		}
	}
	return from, to, nil
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, map[string]string{"kind": kind, "message": message})
}
