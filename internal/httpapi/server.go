// Package httpapi registra as rotas do gateway: formulário de contato,
// passthroughs para os SaaS (Odoo, Supabase, Chatwoot, n8n, LLM) e a
// ingestão do Runtime Validator.
//
// Os handlers são colaboradores finos: validam entrada, chamam o cliente
// correspondente e traduzem falhas de upstream em respostas 5xx com
// {"detail": ...}.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SmarterCL/api.smarterbot.cl/internal/odoo"
	"github.com/SmarterCL/api.smarterbot.cl/internal/resend"
	"github.com/SmarterCL/api.smarterbot.cl/internal/supabase"
)

const Version = "1.0.0"

type Server struct {
	Supabase *supabase.Client
	Odoo     *odoo.Client
	Mailer   *resend.Sender

	AdminEmail string
	Logger     zerolog.Logger

	// Proxies opcionais; nil desliga a rota correspondente.
	Chatwoot http.Handler
	N8N      http.Handler
	LLM      http.Handler
}

// Routes registra todas as rotas no router dado.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Post("/contact", s.handleCreateContact)
	r.Get("/contacts", s.handleListContacts)

	r.Route("/odoo", func(r chi.Router) {
		r.Post("/search_read", s.handleOdooSearchRead)
		r.Post("/create", s.handleOdooCreate)
		r.Post("/write", s.handleOdooWrite)
		r.Post("/unlink", s.handleOdooUnlink)
		r.Post("/call", s.handleOdooCall)
	})

	r.Route("/supabase", func(r chi.Router) {
		r.Post("/query", s.handleSupabaseQuery)
		r.Post("/insert", s.handleSupabaseInsert)
		r.Post("/update", s.handleSupabaseUpdate)
		r.Post("/delete", s.handleSupabaseDelete)
	})

	r.Route("/mcp/runtime", func(r chi.Router) {
		r.Post("/ingest", s.handleRuntimeIngest)
		r.Get("/health", s.handleRuntimeHealth)
	})

	if s.Chatwoot != nil {
		r.Handle("/chatwoot/*", s.Chatwoot)
	}
	if s.N8N != nil {
		r.Handle("/n8n/*", s.N8N)
	}
	if s.LLM != nil {
		r.Handle("/v1/*", s.LLM)
	}
}
