package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SmarterCL/api.smarterbot.cl/internal/supabase"
)

type LinkValidation struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	RedirectTo string `json:"redirect_to,omitempty"`
	IsExternal bool   `json:"is_external"`
	IsBroken   bool   `json:"is_broken"`
}

type SemanticChange struct {
	URL         string  `json:"url"`
	ChangeType  string  `json:"change_type"`
	Field       string  `json:"field"`
	Before      string  `json:"before"`
	After       string  `json:"after"`
	ImpactScore float64 `json:"impact_score"`
}

type RuntimeIngestRequest struct {
	TenantID             string           `json:"tenant_id"`
	ScoutID              string           `json:"scout_id"`
	Domain               string           `json:"domain"`
	ExecutionStartedAt   time.Time        `json:"execution_started_at"`
	ExecutionCompletedAt time.Time        `json:"execution_completed_at"`
	Status               string           `json:"status"`
	Links                []LinkValidation `json:"links"`
	URLsNew              []string         `json:"urls_new,omitempty"`
	URLsRemoved          []string         `json:"urls_removed,omitempty"`
	SemanticChanges      []SemanticChange `json:"semantic_changes,omitempty"`
}

func (p RuntimeIngestRequest) validate() string {
	switch {
	case p.TenantID == "":
		return "tenant_id is required"
	case p.ScoutID == "":
		return "scout_id is required"
	case p.Domain == "":
		return "domain is required"
	case p.Status != "completed" && p.Status != "failed" && p.Status != "partial":
		return "status must be one of: completed, failed, partial"
	}
	for _, c := range p.SemanticChanges {
		if c.ChangeType != "minor" && c.ChangeType != "relevant" && c.ChangeType != "critical" {
			return "semantic change_type must be one of: minor, relevant, critical"
		}
		if c.ImpactScore < 0 || c.ImpactScore > 1 {
			return "impact_score must be between 0 and 1"
		}
	}
	return ""
}

type RuntimeIngestResponse struct {
	Status          string         `json:"status"`
	ExecutionID     string         `json:"execution_id"`
	AlertsCreated   int            `json:"alerts_created"`
	RecordsInserted map[string]int `json:"records_inserted"`
}

// Recebe dados de crawling dos scouts e grava em runtime_executions,
// runtime_link_validations, runtime_url_deltas, runtime_semantic_deltas
// e runtime_alerts quando ha eventos criticos.
func (s *Server) handleRuntimeIngest(w http.ResponseWriter, r *http.Request) {
	if !s.supabaseReady(w) {
		return
	}
	var req RuntimeIngestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		respondDetail(w, http.StatusBadRequest, "%s", msg)
		return
	}
	ctx := r.Context()

	tenants, err := s.Supabase.Select(ctx, "tenants", supabase.SelectOptions{
		Columns: "id",
		Filters: map[string]string{"id": req.TenantID},
		Limit:   1,
	})
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Ingest failed: %v", err)
		return
	}
	if len(tenants) == 0 {
		respondDetail(w, http.StatusNotFound, "Tenant not found")
		return
	}

	execRows, err := s.Supabase.Insert(ctx, "runtime_executions", supabase.Row{
		"tenant_id":    req.TenantID,
		"scout_id":     req.ScoutID,
		"domain":       req.Domain,
		"started_at":   req.ExecutionStartedAt.Format(time.RFC3339),
		"completed_at": req.ExecutionCompletedAt.Format(time.RFC3339),
		"status":       req.Status,
	})
	if err != nil || len(execRows) == 0 {
		respondDetail(w, http.StatusBadRequest, "Ingest failed: execution insert: %v", err)
		return
	}
	executionID := fmt.Sprint(execRows[0]["id"])

	linkRecords := make([]supabase.Row, 0, len(req.Links))
	for _, l := range req.Links {
		linkRecords = append(linkRecords, supabase.Row{
			"execution_id": executionID,
			"url":          l.URL,
			"status_code":  l.StatusCode,
			"redirect_to":  nilIfEmpty(l.RedirectTo),
			"is_external":  l.IsExternal,
			"is_broken":    l.IsBroken,
		})
	}
	if len(linkRecords) > 0 {
		if _, err := s.Supabase.Insert(ctx, "runtime_link_validations", linkRecords); err != nil {
			respondDetail(w, http.StatusBadRequest, "Ingest failed: %v", err)
			return
		}
	}

	urlDeltas := make([]supabase.Row, 0, len(req.URLsNew)+len(req.URLsRemoved))
	for _, u := range req.URLsNew {
		urlDeltas = append(urlDeltas, supabase.Row{
			"execution_id": executionID,
			"url":          u,
			"change_type":  "new",
		})
	}
	for _, u := range req.URLsRemoved {
		urlDeltas = append(urlDeltas, supabase.Row{
			"execution_id": executionID,
			"url":          u,
			"change_type":  "removed",
		})
	}
	if len(urlDeltas) > 0 {
		if _, err := s.Supabase.Insert(ctx, "runtime_url_deltas", urlDeltas); err != nil {
			respondDetail(w, http.StatusBadRequest, "Ingest failed: %v", err)
			return
		}
	}

	semanticRecords := make([]supabase.Row, 0, len(req.SemanticChanges))
	for _, c := range req.SemanticChanges {
		semanticRecords = append(semanticRecords, supabase.Row{
			"execution_id": executionID,
			"url":          c.URL,
			"change_type":  c.ChangeType,
			"field":        c.Field,
			"before_value": c.Before,
			"after_value":  c.After,
			"impact_score": c.ImpactScore,
		})
	}
	if len(semanticRecords) > 0 {
		if _, err := s.Supabase.Insert(ctx, "runtime_semantic_deltas", semanticRecords); err != nil {
			respondDetail(w, http.StatusBadRequest, "Ingest failed: %v", err)
			return
		}
	}

	alerts := buildRuntimeAlerts(executionID, req)
	alertsCreated := 0
	if len(alerts) > 0 {
		rows, err := s.Supabase.Insert(ctx, "runtime_alerts", alerts)
		if err != nil {
			respondDetail(w, http.StatusBadRequest, "Ingest failed: %v", err)
			return
		}
		alertsCreated = len(rows)
	}

	respondJSON(w, http.StatusOK, RuntimeIngestResponse{
		Status:        "ingested",
		ExecutionID:   executionID,
		AlertsCreated: alertsCreated,
		RecordsInserted: map[string]int{
			"executions":      1,
			"links":           len(linkRecords),
			"url_deltas":      len(urlDeltas),
			"semantic_deltas": len(semanticRecords),
			"alerts":          alertsCreated,
		},
	})
}

func buildRuntimeAlerts(executionID string, req RuntimeIngestRequest) []supabase.Row {
	var alerts []supabase.Row

	var broken []string
	for _, l := range req.Links {
		if l.IsBroken {
			broken = append(broken, l.URL)
		}
	}
	if len(broken) > 0 {
		alerts = append(alerts, supabase.Row{
			"execution_id": executionID,
			"type":         "link_broken",
			"severity":     "critical",
			"message":      fmt.Sprintf("%d enlaces rotos detectados", len(broken)),
			"payload":      map[string]any{"broken_links": broken},
		})
	}

	var critical []map[string]any
	for _, c := range req.SemanticChanges {
		if c.ChangeType == "critical" {
			critical = append(critical, map[string]any{
				"url":    c.URL,
				"field":  c.Field,
				"before": c.Before,
				"after":  c.After,
			})
		}
	}
	if len(critical) > 0 {
		alerts = append(alerts, supabase.Row{
			"execution_id": executionID,
			"type":         "semantic_change_critical",
			"severity":     "critical",
			"message":      fmt.Sprintf("%d cambios críticos detectados", len(critical)),
			"payload":      map[string]any{"changes": critical},
		})
	}
	return alerts
}

func (s *Server) handleRuntimeHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"service": "Runtime Validator",
		"status":  "operational",
		"version": Version,
	})
}
