package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SmarterCL/api.smarterbot.cl/internal/httpapi"
	"github.com/SmarterCL/api.smarterbot.cl/internal/odoo"
	"github.com/SmarterCL/api.smarterbot.cl/internal/resend"
	"github.com/SmarterCL/api.smarterbot.cl/internal/supabase"
	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit"
	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/domain"
	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/infra"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "smarter-api").Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.DefaultRegisterer

	server := &httpapi.Server{
		Supabase:   supabase.New(cfg.supabaseURL, cfg.supabaseKey, cfg.supabaseTimeout),
		Odoo: odoo.New(odoo.Config{
			BaseURL:        cfg.odooURL,
			Database:       cfg.odooDB,
			APIKey:         cfg.odooAPIKey,
			Timeout:        cfg.odooTimeout,
			MaxRetries:     cfg.odooMaxRetries,
			BackoffFactor:  cfg.odooBackoffFactor,
			MaxConcurrency: cfg.odooMaxConcurrency,
			RPS:            cfg.odooRPS,
		}, logger, reg),
		Mailer:     resend.New(cfg.resendAPIKey, cfg.resendFrom),
		AdminEmail: cfg.adminEmail,
		Logger:     logger,
	}

	if cfg.chatwootToken != "" && cfg.chatwootAccountID != "" {
		server.Chatwoot, err = httpapi.NewChatwootProxy(cfg.chatwootBaseURL, cfg.chatwootToken, cfg.chatwootAccountID, logger)
		if err != nil {
			log.Fatalf("invalid CHATWOOT_BASE_URL: %v", err)
		}
	}
	if cfg.n8nAPIKey != "" {
		server.N8N, err = httpapi.NewN8NProxy(cfg.n8nBaseURL, cfg.n8nAPIKey, logger)
		if err != nil {
			log.Fatalf("invalid N8N_BASE_URL: %v", err)
		}
	}
	if cfg.llmBaseURL != "" && cfg.llmAPIKey != "" {
		server.LLM, err = httpapi.NewLLMProxy(cfg.llmBaseURL, cfg.llmAPIKey, logger)
		if err != nil {
			log.Fatalf("invalid LLM_BASE_URL: %v", err)
		}
	}

	store := infra.NewWindowStore(cfg.rateLimit)
	store.StartJanitor(ctx)

	stats := []domain.StatsStore{infra.NewPrometheusStatsStore(reg)}
	if cfg.rateStatsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.rateStatsRedisAddr,
			Password: cfg.rateStatsRedisPassword,
			DB:       cfg.rateStatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancelPing()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		stats = append(stats, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.rateStatsPrefix),
			infra.WithStatsTTL(cfg.rateStatsTTL),
			infra.WithStatsTrackTenants(cfg.rateStatsTrackTenants),
		))
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(httpapi.RequestID)
	if cfg.rateEnabled {
		r.Use(ratelimit.Middleware(ratelimit.Options{
			Store:       store,
			Stats:       infra.NewMultiStatsStore(stats...),
			ExemptPaths: cfg.rateExemptPaths,
		}))
	}
	r.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	}))

	r.Handle("/metrics", promhttp.Handler())
	server.Routes(r)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", cfg.listenAddr).
		Bool("rate_enabled", cfg.rateEnabled).
		Int("rate_limit_per_minute", cfg.rateLimit).
		Bool("rate_stats_enabled", cfg.rateStatsEnabled).
		Int("concurrency_max", cfg.concurrencyMax).
		Msg("listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
