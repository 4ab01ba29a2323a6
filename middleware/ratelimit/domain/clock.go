package domain

import "time"

// Clock abstrai a fonte de tempo do limiter.
//
// Permite testes determinísticos de comportamento dependente de janela
// (rollover, sweep) sem sleeps.
type Clock interface {
	Now() time.Time
}
