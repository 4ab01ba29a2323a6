// Package ratelimit fornece adapters HTTP (net/http) para rate limit por
// tenant e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa, semáforo, stats), detalhes de infraestrutura
//   - ratelimit (este pacote): middlewares HTTP + extração do tenant + tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Caminhos isentos (/, /health, /metrics, docs) passam direto
//  2. Extrai o tenant do bearer token (prefixo); sem bearer, passa sem limite
//  3. A camada application decide com janela fixa de 60s alinhada ao epoch
//  4. Se bloqueado, responde 429 com X-RateLimit-* e Remaining=0
//  5. Se permitido, seta X-RateLimit-* e chama o próximo handler
//
// Variáveis de ambiente do binário (cmd/api) controlam o comportamento,
// como RATE_LIMIT_PER_MINUTE, RATE_EXEMPT_PATHS, CONCURRENCY_MAX e
// CONCURRENCY_TIMEOUT.
package ratelimit
