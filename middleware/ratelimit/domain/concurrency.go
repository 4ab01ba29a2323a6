package domain

import "context"

// SlotPool representa um recurso com capacidade finita (requests em voo,
// chamadas de saída simultâneas, etc).
//
// A semântica é: Acquire bloqueia até conseguir uma vaga ou até o ctx
// encerrar. Ao adquirir, retorna uma função de release que deve ser chamada
// exatamente uma vez. Não há garantia de ordem entre goroutines em espera
// além da justiça default do runtime.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
