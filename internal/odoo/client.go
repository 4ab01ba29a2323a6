// Package odoo implementa o cliente resiliente para a External JSON-2 API
// do Odoo 19: POST {base}/json/2/{model}/{method} com bearer token e header
// de database.
//
// Política de falhas:
//   - configuração incompleta: erro imediato, sem retry e sem ocupar o gate
//   - 5xx / erro de rede / timeout: transitório, retry com backoff exponencial
//   - 4xx: terminal, propaga sem retry
//
// A concorrência de saída é limitada por um semáforo contador; chamadas além
// do limite aguardam (FIFO best-effort) até liberar vaga.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/domain"
	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrNotConfigured indica falta de ODOO_URL/ODOO_DB/ODOO_API_KEY.
// Erro fatal da chamada, não transitório: nunca dispara retry.
var ErrNotConfigured = errors.New("odoo client not configured")

// StatusError carrega o status HTTP devolvido pelo Odoo.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("odoo: status %d: %s", e.Code, e.Body)
}

// Temporary informa se o erro é transitório (5xx) ou terminal (4xx).
func (e *StatusError) Temporary() bool { return e.Code >= 500 }

// DefaultSearchLimit é o teto default de registros em search_read.
const DefaultSearchLimit = 80

type Config struct {
	BaseURL  string
	Database string
	APIKey   string

	Timeout        time.Duration // default 10s
	MaxRetries     int           // default 3
	BackoffFactor  float64       // default 0.5 (segundos)
	MaxConcurrency int           // default 8

	// RPS limita a taxa de chamadas de saída para não estourar a cota da
	// API do Odoo. 0 desabilita o throttle.
	RPS float64
}

// Result é o envelope devolvido por toda operação bem-sucedida.
type Result struct {
	OK        bool            `json:"ok"`
	Data      json.RawMessage `json:"data"`
	LatencyMS int64           `json:"latency_ms"`
}

type Client struct {
	cfg      Config
	httpc    *http.Client
	gate     domain.SlotPool
	throttle *rate.Limiter
	logger   zerolog.Logger

	latency  prometheus.Histogram
	attempts *prometheus.CounterVec
}

// New aplica defaults e monta o cliente. Com reg == nil as métricas não são
// registradas (útil em testes).
func New(cfg Config, logger zerolog.Logger, reg prometheus.Registerer) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = 0.5
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}

	c := &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		gate:   infra.NewChanPool(cfg.MaxConcurrency),
		logger: logger,
		latency: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "gateway_odoo_call_latency_ms",
			Help:    "Round-trip latency of successful Odoo calls in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		attempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_odoo_call_attempts_total",
			Help: "Odoo call attempts by result.",
		}, []string{"result"}),
	}
	if cfg.RPS > 0 {
		c.throttle = rate.NewLimiter(rate.Limit(cfg.RPS), int(math.Max(1, math.Ceil(cfg.RPS))))
	}
	return c
}

func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.Database != "" && c.cfg.APIKey != ""
}

// Invoke executa method no model com o payload dado, mascarando falhas
// transitórias atrás de até MaxRetries retries com backoff
// BackoffFactor * 2^(attempt-1) segundos.
//
// O ctx do chamador vale apenas para a espera no semáforo (nenhuma vaga foi
// ocupada ainda). Os attempts em si rodam detached: desconexão do cliente
// original não aborta um retry em andamento, e o slot só libera quando o
// loop termina.
func (c *Client) Invoke(ctx context.Context, model, method string, payload map[string]any) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("odoo: encode payload: %w", err)
	}

	release, ok := c.gate.Acquire(ctx)
	if !ok {
		return nil, ctx.Err()
	}
	defer release()

	url := c.cfg.BaseURL + "/json/2/" + model + "/" + method

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries+1; attempt++ {
		if c.throttle != nil {
			if err := c.throttle.Wait(context.Background()); err != nil {
				return nil, err
			}
		}

		res, err := c.attempt(url, body)
		if err == nil {
			c.attempts.WithLabelValues("success").Inc()
			c.logger.Info().
				Str("model", model).
				Str("method", method).
				Int64("latency_ms", res.LatencyMS).
				Int("attempt", attempt).
				Msg("odoo_call")
			return res, nil
		}

		var se *StatusError
		if errors.As(err, &se) && !se.Temporary() {
			c.attempts.WithLabelValues("terminal").Inc()
			c.logger.Error().
				Str("model", model).
				Str("method", method).
				Int("status", se.Code).
				Msg("odoo_call_failed")
			return nil, err
		}

		c.attempts.WithLabelValues("transient").Inc()
		lastErr = err
		if attempt == c.cfg.MaxRetries+1 {
			break
		}
		time.Sleep(c.backoff(attempt))
	}

	c.logger.Error().
		Str("model", model).
		Str("method", method).
		Err(lastErr).
		Msg("odoo_call_failed")
	return nil, lastErr
}

func (c *Client) backoff(attempt int) time.Duration {
	return time.Duration(c.cfg.BackoffFactor * math.Pow(2, float64(attempt-1)) * float64(time.Second))
}

// attempt faz um único POST. Erros de rede/timeout voltam crus (transitórios);
// status >= 400 vira *StatusError.
func (c *Client) attempt(url string, body []byte) (*Result, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Odoo-Database", c.cfg.Database)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	latency := time.Since(start).Milliseconds()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	c.latency.Observe(float64(latency))
	return &Result{OK: true, Data: b, LatencyMS: latency}, nil
}

// SearchRead busca registros do model filtrados pelo domain do Odoo.
// limit <= 0 usa o default (80); o teto é validado pelo handler chamador.
func (c *Client) SearchRead(ctx context.Context, model string, filter []any, fields []string, limit int) (*Result, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if filter == nil {
		filter = []any{}
	}
	if fields == nil {
		fields = []string{}
	}
	return c.Invoke(ctx, model, "search_read", map[string]any{
		"domain": filter,
		"fields": fields,
		"limit":  limit,
	})
}

func (c *Client) Create(ctx context.Context, model string, values map[string]any) (*Result, error) {
	return c.Invoke(ctx, model, "create", map[string]any{"values": values})
}

func (c *Client) Write(ctx context.Context, model string, id int64, values map[string]any) (*Result, error) {
	return c.Invoke(ctx, model, "write", map[string]any{"ids": []int64{id}, "values": values})
}

func (c *Client) Unlink(ctx context.Context, model string, id int64) (*Result, error) {
	return c.Invoke(ctx, model, "unlink", map[string]any{"ids": []int64{id}})
}

// Call é a válvula de escape para métodos arbitrários do model.
func (c *Client) Call(ctx context.Context, model, method string, params map[string]any) (*Result, error) {
	if params == nil {
		params = map[string]any{}
	}
	return c.Invoke(ctx, model, method, params)
}
