package infra

import (
	"sync"
	"time"

	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/domain"
)

// WindowStore é uma implementação de infra do CounterStore com janela fixa
// de 60s alinhada ao epoch: um contador por (tenant, janela), protegido por
// mutex, com limpeza periódica das janelas antigas.
//
// Estado apenas em memória: reiniciar o processo zera todos os contadores
// (aceitável para uma instância única, throttling best-effort).
type WindowStore struct {
	mu     sync.Mutex
	counts map[entryKey]int

	limit        int
	clock        domain.Clock
	cleanupEvery time.Duration
}

type entryKey struct {
	tenant string
	window int64
}

type WindowOption func(*WindowStore)

func WithClock(c domain.Clock) WindowOption {
	return func(s *WindowStore) { s.clock = c }
}

func WithCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

func NewWindowStore(limit int, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		counts:       make(map[entryKey]int),
		limit:        limit,
		clock:        SystemClock{},
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WindowStore) Limit() int { return s.limit }

// Take implementa domain.CounterStore.
//
// Semântica pós-incremento: o Remaining reportado usa a contagem anterior à
// requisição atual (limit - count - 1, piso 0). Rejeição não incrementa.
func (s *WindowStore) Take(key domain.Key) domain.Decision {
	now := s.clock.Now()
	win := domain.WindowIndex(now)
	reset := domain.WindowReset(now)
	k := entryKey{tenant: string(key), window: win}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.counts[k]
	if count >= s.limit {
		return domain.Decision{Allowed: false, Limit: s.limit, Remaining: 0, Reset: reset}
	}
	s.counts[k] = count + 1

	remaining := s.limit - count - 1
	if remaining < 0 {
		remaining = 0
	}
	return domain.Decision{Allowed: true, Limit: s.limit, Remaining: remaining, Reset: reset}
}

// Cleanup remove todo contador cuja janela não é mais a atual.
//
// Como a chave inclui o índice da janela, entradas velhas nunca voltam a ser
// lidas; o cleanup só evita crescimento sem limite da tabela.
func (s *WindowStore) Cleanup() {
	win := domain.WindowIndex(s.clock.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.counts {
		if k.window != win {
			delete(s.counts, k)
		}
	}
}

// Len retorna o número de contadores vivos (para testes/observabilidade).
func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}

// StartJanitor inicia uma goroutine que remove janelas antigas periodicamente.
// Pare cancelando o contexto.
func (s *WindowStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
