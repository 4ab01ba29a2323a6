package infra

import (
	"context"
	"errors"

	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/domain"
)

// MultiStatsStore propaga cada evento para vários stores (ex: Prometheus e
// Redis ao mesmo tempo). Erros são agregados; nenhum store impede os demais.
type MultiStatsStore struct {
	stores []domain.StatsStore
}

func NewMultiStatsStore(stores ...domain.StatsStore) *MultiStatsStore {
	out := make([]domain.StatsStore, 0, len(stores))
	for _, s := range stores {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiStatsStore{stores: out}
}

func (m *MultiStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	var errs []error
	for _, s := range m.stores {
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
