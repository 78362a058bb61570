// Package bridge exposes the warehouse operations over HTTP for the
// spreadsheet add-in and other collaborators.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ADanMan/datarails-open/internal/ingest"
	"github.com/ADanMan/datarails-open/internal/insights"
	"github.com/ADanMan/datarails-open/internal/model"
	"github.com/ADanMan/datarails-open/internal/report"
	"github.com/ADanMan/datarails-open/internal/scenario"
	"github.com/ADanMan/datarails-open/internal/warehouse"
)

// Config controls the bridge runtime. All credentials arrive here
// explicitly; the service reads no process globals.
type Config struct {
	DatabasePath string
	Addr         string
	Token        string // optional bearer token; empty disables auth

	AIKey     string
	AIBase    string
	AIModel   string
	AIMode    string
	AIKeySink func(string) error // persists a key posted to /settings/api-key
}

// Service is the bridge runtime.
type Service struct {
	cfg   Config
	store *warehouse.Store

	mu    sync.RWMutex
	aiKey string
}

// New returns a bridge service with the provided config.
func New(cfg Config) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	return &Service{cfg: cfg, aiKey: cfg.AIKey}
}

// Run opens the warehouse and serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	store, err := warehouse.Open(s.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	s.store = store

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Printf("datarails bridge listening on %s", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("bridge http server: %w", err)
	}
}

func (s *Service) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /load-data", s.auth(s.handleLoadData))
	mux.HandleFunc("GET /reports/summary", s.auth(s.handleSummary))
	mux.HandleFunc("GET /reports/variance", s.auth(s.handleVariance))
	mux.HandleFunc("GET /scenarios/list", s.auth(s.handleScenarios))
	mux.HandleFunc("POST /scenarios/export", s.auth(s.handleExport))
	mux.HandleFunc("POST /insights/variance", s.auth(s.handleInsights))
	mux.HandleFunc("GET /insights/history", s.auth(s.handleInsightsHistory))
	mux.HandleFunc("POST /settings/api-key", s.auth(s.handleStoreAPIKey))
	return mux
}

// auth wraps a handler with an optional bearer-token check.
func (s *Service) auth(next http.HandlerFunc) http.HandlerFunc {
	if s.cfg.Token == "" {
		return next
	}
	want := "Bearer " + s.cfg.Token
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != want {
			writeError(w, http.StatusUnauthorized, "missing or invalid bridge token")
			return
		}
		next(w, r)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleLoadData(w http.ResponseWriter, r *http.Request) {
	var req loadDataRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Source == "" {
		req.Source = "imports"
	}
	if req.Scenario == "" {
		req.Scenario = "actual"
	}

	path := normalizePath(req.Path)
	facts, err := ingest.ReadFile(path, req.Sheets, req.Tables)
	if err != nil {
		writeError(w, loadStatus(err), err.Error())
		return
	}

	n, err := s.store.Write(facts, req.Scenario, req.Source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := model.LoadSummary{RowsLoaded: n, Source: req.Source, Scenario: req.Scenario}
	writeJSON(w, http.StatusOK, loadDataResponse{
		RowsLoaded: summary.RowsLoaded,
		Source:     summary.Source,
		Scenario:   summary.Scenario,
		Message:    summary.Message(),
	})
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("scenario")

	facts, err := s.readScope(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows := report.Summarize(facts)
	resp := summaryResponse{Scenario: name, Rows: make([]summaryRow, 0, len(rows))}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, summaryRow{
			Period:     row.Period,
			Department: row.Department,
			Total:      row.Total,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleVariance(w http.ResponseWriter, r *http.Request) {
	actual := r.URL.Query().Get("actual")
	budget := r.URL.Query().Get("budget")
	if actual == "" || budget == "" {
		writeError(w, http.StatusBadRequest, "both 'actual' and 'budget' scenarios are required")
		return
	}

	rows, err := s.varianceRows(actual, budget)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, varianceResponse{Actual: actual, Budget: budget, Rows: wireVariance(rows)})
}

func (s *Service) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	scenarios, err := s.store.ListScenarios()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if scenarios == nil {
		scenarios = []string{}
	}
	writeJSON(w, http.StatusOK, scenariosResponse{Scenarios: scenarios})
}

func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	var req scenarioExportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	adj := scenario.Adjustment{
		Department:       req.Department,
		Account:          req.Account,
		PercentageChange: req.PercentageChange,
	}
	res, err := scenario.Build(s.store, req.SourceScenario, req.TargetScenario, adj, req.Persist)
	if err != nil {
		writeError(w, buildStatus(err), err.Error())
		return
	}

	rows := make([]factRow, 0, len(res.Rows))
	for _, f := range res.Rows {
		rows = append(rows, factRow{
			Period:     f.Period,
			Department: f.Department,
			Account:    f.Account,
			Value:      f.Value,
			Currency:   f.Currency,
			Metadata:   f.Metadata,
		})
	}

	message := fmt.Sprintf("Scenario %q contains %d rows.", req.TargetScenario, len(rows))
	if req.Persist {
		message += fmt.Sprintf(" Persisted %d rows to the database.", res.Persisted)
	}
	writeJSON(w, http.StatusOK, scenarioExportResponse{
		Rows:           rows,
		Message:        message,
		TargetScenario: req.TargetScenario,
	})
}

func (s *Service) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ActualScenario == "" || req.BudgetScenario == "" {
		writeError(w, http.StatusBadRequest, "both actualScenario and budgetScenario are required")
		return
	}

	cfg := s.insightsConfig(req.API)
	client, err := insights.NewClient(cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.varianceRows(req.ActualScenario, req.BudgetScenario)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	text, err := client.Generate(r.Context(), rows, req.Prompt)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if _, err := s.store.SaveInsight(warehouse.Insight{
		Actual:   req.ActualScenario,
		Budget:   req.BudgetScenario,
		Prompt:   req.Prompt,
		Insights: text,
		RowCount: len(rows),
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := insightsResponse{
		ActualScenario: req.ActualScenario,
		BudgetScenario: req.BudgetScenario,
		Insights:       text,
		RowCount:       len(rows),
	}
	if req.IncludeRows {
		resp.Rows = wireVariance(rows)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleInsightsHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), 20)
	offset := queryInt(q.Get("offset"), 0)

	records, total, err := s.store.ListInsights(q.Get("actual"), q.Get("budget"), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]insightItem, 0, len(records))
	for _, rec := range records {
		items = append(items, insightItem{
			ID:        rec.ID,
			Actual:    rec.Actual,
			Budget:    rec.Budget,
			Prompt:    rec.Prompt,
			Insights:  rec.Insights,
			RowCount:  rec.RowCount,
			CreatedAt: rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, insightsHistoryResponse{Insights: items, Total: total})
}

func (s *Service) handleStoreAPIKey(w http.ResponseWriter, r *http.Request) {
	var req storeAPIKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	s.aiKey = req.APIKey
	s.mu.Unlock()

	if s.cfg.AIKeySink != nil {
		if err := s.cfg.AIKeySink(req.APIKey); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// readScope fetches one scenario, or the whole warehouse when no scenario
// was named.
func (s *Service) readScope(name string) ([]model.Fact, error) {
	if name == "" {
		return s.store.ReadAll()
	}
	return s.store.Read(name, warehouse.Filters{})
}

func (s *Service) varianceRows(actual, budget string) ([]model.VarianceRow, error) {
	facts, err := s.store.ReadPair(actual, budget)
	if err != nil {
		return nil, err
	}
	return report.Variance(facts, actual, budget), nil
}

func wireVariance(rows []model.VarianceRow) []varianceRow {
	out := make([]varianceRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, varianceRow{
			Period:      row.Period,
			Department:  row.Department,
			Account:     row.Account,
			Actual:      row.Actual,
			Budget:      row.Budget,
			Variance:    row.Variance,
			VariancePct: row.VariancePct,
		})
	}
	return out
}

// insightsConfig merges per-request overrides over the service defaults.
func (s *Service) insightsConfig(override *aiSettings) insights.Config {
	s.mu.RLock()
	cfg := insights.Config{
		APIKey:  s.aiKey,
		APIBase: s.cfg.AIBase,
		Model:   s.cfg.AIModel,
		Mode:    s.cfg.AIMode,
	}
	s.mu.RUnlock()

	if override != nil {
		if override.APIKey != "" {
			cfg.APIKey = override.APIKey
		}
		if override.APIBase != "" {
			cfg.APIBase = override.APIBase
		}
		if override.Model != "" {
			cfg.Model = override.Model
		}
		if override.Mode != "" {
			cfg.Mode = override.Mode
		}
	}
	return cfg
}

// loadStatus maps an ingest failure to an HTTP status.
func loadStatus(err error) int {
	if os.IsNotExist(err) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// buildStatus maps a scenario-build failure to an HTTP status.
func buildStatus(err error) int {
	var validationErr *scenario.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func normalizePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
