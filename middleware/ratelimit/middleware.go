package ratelimit

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/application"
	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/domain"
)

// KeyFunc extrai a chave de tenant de uma request.
// ok=false significa "sem chave": a request passa sem rate limit.
type KeyFunc func(r *http.Request) (key domain.Key, ok bool)

// tenantPrefixLen limita o tamanho do prefixo do token usado como tenant.
// Tokens diferentes com o mesmo prefixo caem no mesmo bucket: imprecisão
// aceita, não é controle de segurança.
const tenantPrefixLen = 16

// TenantKeyFunc deriva o tenant do header Authorization (Bearer <token>).
//
// O token não é validado nem decodificado; só o prefixo serve de chave de
// agrupamento. Sem header, ou com header que não é bearer, retorna ok=false
// e o tráfego não é limitado por esta camada.
func TenantKeyFunc() KeyFunc {
	return func(r *http.Request) (domain.Key, bool) {
		auth := strings.TrimSpace(r.Header.Get("Authorization"))
		if auth == "" {
			return "", false
		}

		scheme, token, found := strings.Cut(auth, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}

		token = strings.TrimSpace(token)
		if token == "" {
			return "", false
		}
		if len(token) > tenantPrefixLen {
			token = token[:tenantPrefixLen]
		}
		return domain.Key(token), true
	}
}

type Options struct {
	Store domain.CounterStore
	Stats domain.StatsStore
	KeyFn KeyFunc
	// ExemptPaths passam sem limite e sem tocar nenhum contador
	// (health check, raiz, docs, métricas).
	ExemptPaths  []string
	RejectStatus int
}

// Middleware aplica rate limit por tenant com janela fixa de 60s.
//
// Toda resposta não-bypass (admitida ou rejeitada) carrega os headers
// X-RateLimit-Limit, X-RateLimit-Remaining e X-RateLimit-Reset (epoch
// seconds). Rejeição responde RejectStatus com um corpo JSON {"detail": ...}
// e Remaining forçado a 0: rejeição é fluxo normal, nunca erro.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = TenantKeyFunc()
	}

	exempt := make(map[string]struct{}, len(opts.ExemptPaths))
	for _, p := range opts.ExemptPaths {
		exempt[p] = struct{}{}
	}

	svc := application.Service{Store: opts.Store}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key, ok := opts.KeyFn(r)
			if !ok {
				// tráfego sem credencial bearer não é limitado por esta camada
				next.ServeHTTP(w, r)
				return
			}

			dec := svc.Decide(key)
			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     key,
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", formatInt(dec.Limit))
			h.Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
			h.Set("X-RateLimit-Reset", formatInt64(dec.Reset))

			if !dec.Allowed {
				h.Set("Content-Type", "application/json")
				w.WriteHeader(opts.RejectStatus)
				_, _ = io.WriteString(w, `{"detail":"Rate limit exceeded: `+formatInt(dec.Limit)+` requests per minute"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
