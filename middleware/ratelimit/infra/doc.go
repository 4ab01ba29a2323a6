// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - WindowStore: contadores por (tenant, janela de 60s) com mutex e janitor
//   - ChanPool: semáforo simples para limite de concorrência
//   - Memory/Redis/PrometheusStatsStore: persistência de estatísticas de admissão
package infra
