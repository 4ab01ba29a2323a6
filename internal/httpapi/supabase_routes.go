package httpapi

import (
	"net/http"

	"github.com/SmarterCL/api.smarterbot.cl/internal/supabase"
)

type supabaseQueryRequest struct {
	Table   string            `json:"table"`
	Columns string            `json:"columns,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
	Order   string            `json:"order,omitempty"`
	Limit   int               `json:"limit,omitempty"`
}

type supabaseInsertRequest struct {
	Table string       `json:"table"`
	Row   supabase.Row `json:"row"`
}

type supabaseUpdateRequest struct {
	Table   string            `json:"table"`
	Filters map[string]string `json:"filters"`
	Values  supabase.Row      `json:"values"`
}

type supabaseDeleteRequest struct {
	Table   string            `json:"table"`
	Filters map[string]string `json:"filters"`
}

func (s *Server) supabaseReady(w http.ResponseWriter) bool {
	if !s.Supabase.Configured() {
		respondDetail(w, http.StatusServiceUnavailable, "Supabase not configured")
		return false
	}
	return true
}

func (s *Server) handleSupabaseQuery(w http.ResponseWriter, r *http.Request) {
	if !s.supabaseReady(w) {
		return
	}
	var req supabaseQueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Table == "" {
		respondDetail(w, http.StatusBadRequest, "table is required")
		return
	}
	rows, err := s.Supabase.Select(r.Context(), req.Table, supabase.SelectOptions{
		Columns: req.Columns,
		Filters: req.Filters,
		Order:   req.Order,
		Limit:   req.Limit,
	})
	if err != nil {
		respondDetail(w, http.StatusBadGateway, "Supabase error: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"rows":  emptyIfNil(rows),
		"count": len(rows),
	})
}

func (s *Server) handleSupabaseInsert(w http.ResponseWriter, r *http.Request) {
	if !s.supabaseReady(w) {
		return
	}
	var req supabaseInsertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Table == "" || len(req.Row) == 0 {
		respondDetail(w, http.StatusBadRequest, "table and row are required")
		return
	}
	rows, err := s.Supabase.Insert(r.Context(), req.Table, req.Row)
	if err != nil {
		respondDetail(w, http.StatusBadGateway, "Supabase error: %v", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"rows": emptyIfNil(rows)})
}

func (s *Server) handleSupabaseUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.supabaseReady(w) {
		return
	}
	var req supabaseUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Table == "" || len(req.Filters) == 0 || len(req.Values) == 0 {
		respondDetail(w, http.StatusBadRequest, "table, filters and values are required")
		return
	}
	rows, err := s.Supabase.Update(r.Context(), req.Table, req.Filters, req.Values)
	if err != nil {
		respondDetail(w, http.StatusBadGateway, "Supabase error: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rows": emptyIfNil(rows)})
}

func (s *Server) handleSupabaseDelete(w http.ResponseWriter, r *http.Request) {
	if !s.supabaseReady(w) {
		return
	}
	var req supabaseDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Table == "" || len(req.Filters) == 0 {
		respondDetail(w, http.StatusBadRequest, "table and filters are required")
		return
	}
	rows, err := s.Supabase.Delete(r.Context(), req.Table, req.Filters)
	if err != nil {
		respondDetail(w, http.StatusBadGateway, "Supabase error: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": len(rows)})
}
