package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão de admissão do rate limit.
//
// Propositalmente "agnóstico de HTTP": Method/Path são strings genéricas.
//
// Observação: cuidado com cardinalidade: gravar tenant/path sem controle
// pode explodir o número de chaves/séries em Redis ou Prometheus.
type StatsEvent struct {
	// Key é o tenant da decisão. Vazio em caminhos de bypass (não gravado).
	Key     Key
	Allowed bool

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de admissão.
//
// Implementações podem gravar em Redis, Prometheus, memória, etc.
// O middleware trata erro como best-effort (não derruba a request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
