// Package resend envia email transacional via a API do Resend.
//
// Envio é fire-and-forget: falha de email nunca derruba a request que o
// disparou; os erros são apenas logados pelo chamador.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.resend.com/emails"

// ErrNotConfigured indica falta de RESEND_API_KEY.
var ErrNotConfigured = errors.New("resend sender not configured")

type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type Sender struct {
	apiKey   string
	from     string
	endpoint string
	httpc    *http.Client
}

type Option func(*Sender)

// WithEndpoint troca o endpoint da API (testes).
func WithEndpoint(url string) Option {
	return func(s *Sender) { s.endpoint = url }
}

func New(apiKey, from string, opts ...Option) *Sender {
	s := &Sender{
		apiKey:   apiKey,
		from:     from,
		endpoint: defaultEndpoint,
		httpc:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sender) Configured() bool { return s != nil && s.apiKey != "" }

func (s *Sender) Send(ctx context.Context, mail Email) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if mail.From == "" {
		mail.From = s.from
	}

	b, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("resend: encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Contact é o contato do formulário, para montagem dos templates.
type Contact struct {
	Name    string
	Email   string
	Message string
	Phone   string
	Source  string
}

var userConfirmationTmpl = template.Must(template.New("user").Parse(`
<div style="font-family:Inter,system-ui,Segoe UI,Arial,sans-serif;max-width:600px;margin:0 auto">
    <h2 style="color:#2563eb">&iexcl;Gracias, {{.Name}}!</h2>
    <p>Recibimos tu mensaje y te responderemos muy pronto.</p>
    <div style="background:#f3f4f6;padding:1rem;border-radius:8px;margin:1rem 0">
        <p style="margin:0"><strong>Tu mensaje:</strong></p>
        <p style="margin:0.5rem 0 0 0;white-space:pre-wrap">{{.Message}}</p>
    </div>
    <p>Puedes acceder al panel central en <a href="https://app.smarterbot.cl" style="color:#2563eb">app.smarterbot.cl</a>.</p>
    <hr style="border:none;border-top:1px solid #e5e7eb;margin:2rem 0" />
    <p style="color:#6b7280;font-size:0.875rem">Smarter OS - Automatizaci&oacute;n inteligente</p>
</div>`))

var adminNotificationTmpl = template.Must(template.New("admin").Parse(`
<div style="font-family:Inter,system-ui,Segoe UI,Arial,sans-serif;max-width:600px;margin:0 auto">
    <h3 style="color:#2563eb">Nuevo contacto recibido</h3>
    <table style="width:100%;border-collapse:collapse">
        <tr><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb"><strong>Nombre:</strong></td><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb">{{.Contact.Name}}</td></tr>
        <tr><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb"><strong>Email:</strong></td><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb"><a href="mailto:{{.Contact.Email}}">{{.Contact.Email}}</a></td></tr>
        <tr><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb"><strong>WhatsApp:</strong></td><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb">{{if .Contact.Phone}}{{.Contact.Phone}}{{else}}-{{end}}</td></tr>
        <tr><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb"><strong>Source:</strong></td><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb">{{if .Contact.Source}}{{.Contact.Source}}{{else}}-{{end}}</td></tr>
        <tr><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb"><strong>Domain:</strong></td><td style="padding:0.5rem 0;border-bottom:1px solid #e5e7eb">{{.Domain}}</td></tr>
    </table>
    <div style="background:#f3f4f6;padding:1rem;border-radius:8px;margin:1rem 0">
        <p style="margin:0"><strong>Mensaje:</strong></p>
        <p style="margin:0.5rem 0 0 0;white-space:pre-wrap">{{.Contact.Message}}</p>
    </div>
</div>`))

// UserConfirmation monta o email de confirmação para quem preencheu o form.
func UserConfirmation(c Contact) (Email, error) {
	var buf bytes.Buffer
	if err := userConfirmationTmpl.Execute(&buf, c); err != nil {
		return Email{}, err
	}
	return Email{
		To:      []string{c.Email},
		Subject: "Gracias por contactar a Smarter OS",
		HTML:    buf.String(),
	}, nil
}

// AdminNotification monta o email de aviso para o admin.
func AdminNotification(c Contact, adminEmail, domain string) (Email, error) {
	var buf bytes.Buffer
	err := adminNotificationTmpl.Execute(&buf, struct {
		Contact Contact
		Domain  string
	}{c, domain})
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:      []string{adminEmail},
		Subject: fmt.Sprintf("Nuevo contacto: %s <%s>", c.Name, c.Email),
		HTML:    buf.String(),
	}, nil
}
