package httpapi

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SmarterCL/api.smarterbot.cl/internal/resend"
	"github.com/SmarterCL/api.smarterbot.cl/internal/supabase"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Phone   string `json:"phone,omitempty"`
	Source  string `json:"source,omitempty"`
}

func (c ContactRequest) validate() string {
	switch {
	case strings.TrimSpace(c.Name) == "" || len(c.Name) > 200:
		return "name is required (1-200 characters)"
	case !emailRx.MatchString(c.Email):
		return "email must be a valid address"
	case strings.TrimSpace(c.Message) == "" || len(c.Message) > 5000:
		return "message is required (1-5000 characters)"
	case len(c.Phone) > 50:
		return "phone must be at most 50 characters"
	case len(c.Source) > 100:
		return "source must be at most 100 characters"
	}
	return ""
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		respondDetail(w, http.StatusBadRequest, "%s", msg)
		return
	}
	if !s.Supabase.Configured() {
		respondDetail(w, http.StatusInternalServerError, "Database not configured")
		return
	}

	domain := r.Host
	if domain == "" {
		domain = "unknown"
	}

	_, err := s.Supabase.Insert(r.Context(), "contacts", supabase.Row{
		"name":    req.Name,
		"email":   req.Email,
		"message": req.Message,
		"phone":   nilIfEmpty(req.Phone),
		"source":  nilIfEmpty(req.Source),
		"domain":  domain,
		"status":  "new",
	})
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error: %v", err)
		return
	}

	// emails em background: falha de email nunca falha o contato
	go s.sendContactEmails(resend.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Phone:   req.Phone,
		Source:  req.Source,
	}, domain)

	respondJSON(w, http.StatusCreated, map[string]any{
		"ok":      true,
		"message": "Contact submitted successfully",
	})
}

func (s *Server) sendContactEmails(c resend.Contact, domain string) {
	if !s.Mailer.Configured() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if mail, err := resend.UserConfirmation(c); err == nil {
		if err := s.Mailer.Send(ctx, mail); err != nil {
			s.Logger.Warn().Err(err).Msg("contact_user_email_failed")
		}
	}
	if mail, err := resend.AdminNotification(c, s.AdminEmail, domain); err == nil {
		if err := s.Mailer.Send(ctx, mail); err != nil {
			s.Logger.Warn().Err(err).Msg("contact_admin_email_failed")
		}
	}
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	if !s.Supabase.Configured() {
		respondDetail(w, http.StatusInternalServerError, "Database not configured")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	opts := supabase.SelectOptions{
		Order: "created_at.desc",
		Limit: limit,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		opts.Filters = map[string]string{"status": status}
	}

	rows, err := s.Supabase.Select(r.Context(), "contacts", opts)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"contacts": emptyIfNil(rows),
		"count":    len(rows),
	})
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func emptyIfNil(rows []supabase.Row) []supabase.Row {
	if rows == nil {
		return []supabase.Row{}
	}
	return rows
}
