package httpapi

import (
	"net/http"
	"strings"
	"testing"
)

func TestCreateContactValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body string
	}{
		{"sem nome", `{"email":"a@b.cl","message":"hola"}`},
		{"nome longo", `{"name":"` + strings.Repeat("x", 201) + `","email":"a@b.cl","message":"hola"}`},
		{"email invalido", `{"name":"Ana","email":"nope","message":"hola"}`},
		{"sem mensagem", `{"name":"Ana","email":"a@b.cl"}`},
		{"telefone longo", `{"name":"Ana","email":"a@b.cl","message":"hola","phone":"` + strings.Repeat("9", 51) + `"}`},
	}
	for _, tc := range cases {
		rec := env.do(t, http.MethodPost, "/contact", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: esperava 400, veio %d (%s)", tc.name, rec.Code, rec.Body.String())
		}
	}

	if got := env.rest.callsFor("contacts"); len(got) != 0 {
		t.Fatalf("entrada inválida não deveria tocar o banco: %d chamadas", len(got))
	}
}

func TestCreateContactInsertsAndResponds(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/contact",
		`{"name":"Ana","email":"ana@empresa.cl","message":"quiero una demo","source":"landing"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("esperava 201, veio %d (%s)", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if out["ok"] != true || out["message"] != "Contact submitted successfully" {
		t.Fatalf("resposta inesperada: %v", out)
	}

	calls := env.rest.callsFor("contacts")
	if len(calls) != 1 {
		t.Fatalf("esperava 1 insert, veio %d", len(calls))
	}
	if calls[0].Method != http.MethodPost {
		t.Fatalf("método errado: %s", calls[0].Method)
	}
	for _, want := range []string{`"status":"new"`, `"name":"Ana"`, `"source":"landing"`} {
		if !strings.Contains(calls[0].Body, want) {
			t.Fatalf("insert sem %s: %s", want, calls[0].Body)
		}
	}
}

func TestListContactsLimitAndFilter(t *testing.T) {
	env := newTestEnv(t)
	env.rest.rows["contacts"] = `[{"name":"Ana"},{"name":"Beto"}]`

	rec := env.do(t, http.MethodGet, "/contacts?limit=500&status=new", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("esperava 200, veio %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["count"].(float64) != 2 {
		t.Fatalf("count errado: %v", out["count"])
	}

	calls := env.rest.callsFor("contacts")
	if len(calls) != 1 {
		t.Fatalf("esperava 1 select, veio %d", len(calls))
	}
	q := calls[0].Query
	for _, want := range []string{"limit=100", "status=eq.new", "order=created_at.desc"} {
		if !strings.Contains(q, want) {
			t.Fatalf("query sem %s: %s", want, q)
		}
	}
}
