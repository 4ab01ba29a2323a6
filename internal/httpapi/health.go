package httpapi

import "net/http"

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"service":   "Smarter OS API",
		"status":    "operational",
		"version":   Version,
		"endpoints": []string{"/contact", "/health"},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"supabase": configuredLabel(s.Supabase.Configured()),
		"resend":   configuredLabel(s.Mailer.Configured()),
		"odoo":     configuredLabel(s.Odoo != nil && s.Odoo.Configured()),
	})
}
