// Package supabase é um cliente fino para a REST API (PostgREST) do Supabase.
//
// Cada chamada é transacional por si só; nenhuma consistência entre chamadas
// é assumida pelos chamadores. O protocolo é HTTP/JSON puro: filtros viram
// query string (coluna=eq.valor), ordenação usa a sintaxe nativa
// "coluna.desc" e inserts pedem return=representation para devolver as
// linhas criadas.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured indica falta de SUPABASE_URL/SUPABASE_SERVICE_ROLE.
var ErrNotConfigured = errors.New("supabase client not configured")

// StatusError carrega o status HTTP devolvido pelo PostgREST.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL string
	key     string
	httpc   *http.Client
}

func New(baseURL, serviceKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.key != ""
}

// SelectOptions descreve uma consulta: colunas, filtros de igualdade,
// ordenação ("coluna" ou "coluna.desc") e limite.
type SelectOptions struct {
	Columns string
	Filters map[string]string
	Order   string
	Limit   int
}

// Row é uma linha genérica devolvida pelo PostgREST.
type Row = map[string]any

func (c *Client) Select(ctx context.Context, table string, opts SelectOptions) ([]Row, error) {
	q := url.Values{}
	cols := opts.Columns
	if cols == "" {
		cols = "*"
	}
	q.Set("select", cols)
	for k, v := range opts.Filters {
		q.Set(k, "eq."+v)
	}
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	return c.do(ctx, http.MethodGet, table, q, nil)
}

// Insert grava rows (uma linha ou um slice de linhas) e devolve as linhas
// criadas.
func (c *Client) Insert(ctx context.Context, table string, rows any) ([]Row, error) {
	return c.do(ctx, http.MethodPost, table, url.Values{}, rows)
}

func (c *Client) Update(ctx context.Context, table string, filters map[string]string, values map[string]any) ([]Row, error) {
	q := url.Values{}
	for k, v := range filters {
		q.Set(k, "eq."+v)
	}
	return c.do(ctx, http.MethodPatch, table, q, values)
}

func (c *Client) Delete(ctx context.Context, table string, filters map[string]string) ([]Row, error) {
	q := url.Values{}
	for k, v := range filters {
		q.Set(k, "eq."+v)
	}
	return c.do(ctx, http.MethodDelete, table, q, nil)
}

func (c *Client) do(ctx context.Context, method, table string, q url.Values, body any) ([]Row, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("supabase: encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	u := c.baseURL + "/rest/v1/" + table
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	// PostgREST devolve sempre um array quando return=representation
	var rows []Row
	if err := json.Unmarshal(b, &rows); err != nil {
		// objeto único (ex: respostas de RPC)
		var one Row
		if err2 := json.Unmarshal(b, &one); err2 != nil {
			return nil, fmt.Errorf("supabase: decode response: %w", err)
		}
		rows = []Row{one}
	}
	return rows, nil
}
