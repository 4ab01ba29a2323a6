package infra

import (
	"context"

	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/domain"
)

type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um semáforo contador baseado em channel com capacidade max.
// Usado tanto para limitar requests em voo quanto chamadas de saída (ex: Odoo).
func NewChanPool(max int) domain.SlotPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}
