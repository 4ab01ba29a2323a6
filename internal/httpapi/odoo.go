package httpapi

import (
	"errors"
	"net/http"

	"github.com/SmarterCL/api.smarterbot.cl/internal/odoo"
)

type odooSearchReadRequest struct {
	Model  string   `json:"model"`
	Domain []any    `json:"domain,omitempty"`
	Fields []string `json:"fields,omitempty"`
	Limit  int      `json:"limit,omitempty"`
}

type odooCreateRequest struct {
	Model  string         `json:"model"`
	Values map[string]any `json:"values"`
}

type odooWriteRequest struct {
	Model  string         `json:"model"`
	ID     int64          `json:"id"`
	Values map[string]any `json:"values"`
}

type odooUnlinkRequest struct {
	Model string `json:"model"`
	ID    int64  `json:"id"`
}

type odooCallRequest struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

func (s *Server) respondOdoo(w http.ResponseWriter, res *odoo.Result, err error) {
	if err != nil {
		if errors.Is(err, odoo.ErrNotConfigured) {
			respondDetail(w, http.StatusServiceUnavailable, "Odoo not configured")
			return
		}
		respondDetail(w, http.StatusBadGateway, "Odoo error: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleOdooSearchRead(w http.ResponseWriter, r *http.Request) {
	var req odooSearchReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Model == "" {
		respondDetail(w, http.StatusBadRequest, "model is required")
		return
	}
	if req.Limit < 0 || req.Limit > 500 {
		respondDetail(w, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}
	res, err := s.Odoo.SearchRead(r.Context(), req.Model, req.Domain, req.Fields, req.Limit)
	s.respondOdoo(w, res, err)
}

func (s *Server) handleOdooCreate(w http.ResponseWriter, r *http.Request) {
	var req odooCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Model == "" {
		respondDetail(w, http.StatusBadRequest, "model is required")
		return
	}
	if len(req.Values) == 0 {
		respondDetail(w, http.StatusBadRequest, "values is required")
		return
	}
	res, err := s.Odoo.Create(r.Context(), req.Model, req.Values)
	s.respondOdoo(w, res, err)
}

func (s *Server) handleOdooWrite(w http.ResponseWriter, r *http.Request) {
	var req odooWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Model == "" {
		respondDetail(w, http.StatusBadRequest, "model is required")
		return
	}
	if req.ID < 1 {
		respondDetail(w, http.StatusBadRequest, "id must be >= 1")
		return
	}
	if len(req.Values) == 0 {
		respondDetail(w, http.StatusBadRequest, "values is required")
		return
	}
	res, err := s.Odoo.Write(r.Context(), req.Model, req.ID, req.Values)
	s.respondOdoo(w, res, err)
}

func (s *Server) handleOdooUnlink(w http.ResponseWriter, r *http.Request) {
	var req odooUnlinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Model == "" {
		respondDetail(w, http.StatusBadRequest, "model is required")
		return
	}
	if req.ID < 1 {
		respondDetail(w, http.StatusBadRequest, "id must be >= 1")
		return
	}
	res, err := s.Odoo.Unlink(r.Context(), req.Model, req.ID)
	s.respondOdoo(w, res, err)
}

func (s *Server) handleOdooCall(w http.ResponseWriter, r *http.Request) {
	var req odooCallRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Model == "" || req.Method == "" {
		respondDetail(w, http.StatusBadRequest, "model and method are required")
		return
	}
	res, err := s.Odoo.Call(r.Context(), req.Model, req.Method, req.Params)
	s.respondOdoo(w, res, err)
}
