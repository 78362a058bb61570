package bridge

import (
	"encoding/json"
	"net/http"
)

// Request/response payloads. Field names follow the camelCase convention
// the task-pane add-in already speaks.

type loadDataRequest struct {
	Path     string   `json:"path"`
	Source   string   `json:"source"`
	Scenario string   `json:"scenario"`
	Sheets   []string `json:"sheets,omitempty"`
	Tables   []string `json:"tables,omitempty"`
}

type loadDataResponse struct {
	RowsLoaded int    `json:"rowsLoaded"`
	Source     string `json:"source"`
	Scenario   string `json:"scenario"`
	Message    string `json:"message"`
}

type summaryRow struct {
	Period     string  `json:"period"`
	Department string  `json:"department"`
	Total      float64 `json:"total"`
}

type summaryResponse struct {
	Scenario string       `json:"scenario,omitempty"`
	Rows     []summaryRow `json:"rows"`
}

type varianceRow struct {
	Period      string   `json:"period"`
	Department  string   `json:"department"`
	Account     string   `json:"account"`
	Actual      float64  `json:"actual"`
	Budget      float64  `json:"budget"`
	Variance    float64  `json:"variance"`
	VariancePct *float64 `json:"variancePct"`
}

type varianceResponse struct {
	Actual string        `json:"actualScenario"`
	Budget string        `json:"budgetScenario"`
	Rows   []varianceRow `json:"rows"`
}

type scenariosResponse struct {
	Scenarios []string `json:"scenarios"`
}

type scenarioExportRequest struct {
	SourceScenario   string  `json:"sourceScenario"`
	TargetScenario   string  `json:"targetScenario"`
	Department       string  `json:"department,omitempty"`
	Account          string  `json:"account,omitempty"`
	PercentageChange float64 `json:"percentageChange"`
	Persist          bool    `json:"persist"`
}

type factRow struct {
	Period     string  `json:"period"`
	Department string  `json:"department"`
	Account    string  `json:"account"`
	Value      float64 `json:"value"`
	Currency   string  `json:"currency"`
	Metadata   string  `json:"metadata"`
}

type scenarioExportResponse struct {
	Rows           []factRow `json:"rows"`
	Message        string    `json:"message"`
	TargetScenario string    `json:"targetScenario"`
}

type aiSettings struct {
	APIKey  string `json:"apiKey,omitempty"`
	APIBase string `json:"apiBase,omitempty"`
	Model   string `json:"model,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

type insightsRequest struct {
	ActualScenario string      `json:"actualScenario"`
	BudgetScenario string      `json:"budgetScenario"`
	Prompt         string      `json:"prompt,omitempty"`
	IncludeRows    bool        `json:"includeRows,omitempty"`
	API            *aiSettings `json:"api,omitempty"`
}

type insightsResponse struct {
	ActualScenario string        `json:"actualScenario"`
	BudgetScenario string        `json:"budgetScenario"`
	Insights       string        `json:"insights"`
	RowCount       int           `json:"rowCount"`
	Rows           []varianceRow `json:"rows,omitempty"`
}

type insightItem struct {
	ID        int64  `json:"id"`
	Actual    string `json:"actual"`
	Budget    string `json:"budget"`
	Prompt    string `json:"prompt,omitempty"`
	Insights  string `json:"insights"`
	RowCount  int    `json:"rowCount"`
	CreatedAt string `json:"createdAt"`
}

type insightsHistoryResponse struct {
	Insights []insightItem `json:"insights"`
	Total    int           `json:"total"`
}

type storeAPIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// decodeJSON parses the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return false
	}
	return true
}
