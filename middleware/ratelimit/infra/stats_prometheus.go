package infra

import (
	"context"

	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusStatsStore exporta decisões de admissão como contadores Prometheus.
//
// Label apenas por resultado (allowed/denied): nada de tenant ou path como
// label, pela mesma preocupação de cardinalidade do StatsEvent.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

// NewPrometheusStatsStore registra os contadores em reg.
// Com reg == nil os coletores são criados sem registro (útil em testes).
func NewPrometheusStatsStore(reg prometheus.Registerer) *PrometheusStatsStore {
	return &PrometheusStatsStore{
		decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_ratelimit_decisions_total",
			Help: "Rate limit admission decisions by outcome.",
		}, []string{"outcome"}),
	}
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := "denied"
	if ev.Allowed {
		outcome = "allowed"
	}
	s.decisions.WithLabelValues(outcome).Inc()
	return nil
}
