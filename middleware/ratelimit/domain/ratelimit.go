package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key identifica um tenant para fins de bucketing.
// É derivada de um prefixo do bearer token: agrupamento grosseiro,
// não um mecanismo de identidade/segurança.
type Key string

// WindowSeconds é o tamanho da janela fixa, alinhada ao epoch (não ao
// instante da primeira requisição do tenant).
const WindowSeconds = 60

// WindowIndex calcula o índice da janela que contém o instante t.
func WindowIndex(t time.Time) int64 { return t.Unix() / WindowSeconds }

// WindowReset retorna o epoch-seconds em que a janela que contém t termina.
func WindowReset(t time.Time) int64 { return (WindowIndex(t) + 1) * WindowSeconds }

// Decision é o resultado de uma tentativa de admissão.
type Decision struct {
	Allowed bool
	// Limit é o teto configurado de requisições por janela.
	Limit int
	// Remaining é quantas requisições ainda cabem na janela atual (piso 0).
	Remaining int
	// Reset é o epoch-seconds em que a janela atual termina.
	Reset int64
}

// CounterStore mantém contadores por (tenant, janela) e decide admissões.
//
// Take incrementa o contador quando admite; nunca incrementa quando rejeita.
// Observação: janela fixa, não sliding-log: um tenant pode emitir até o
// limite no fim da janela N e de novo no início da N+1. Imprecisão aceita.
type CounterStore interface {
	Take(Key) Decision
}
