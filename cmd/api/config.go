package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type config struct {
	listenAddr string

	rateEnabled     bool
	rateLimit       int
	rateExemptPaths []string

	rateStatsEnabled       bool
	rateStatsRedisAddr     string
	rateStatsRedisPassword string
	rateStatsRedisDB       int
	rateStatsPrefix        string
	rateStatsTTL           time.Duration
	rateStatsTrackTenants  bool

	concurrencyMax     int
	concurrencyTimeout time.Duration

	corsOrigins []string

	supabaseURL     string
	supabaseKey     string
	supabaseTimeout time.Duration

	resendAPIKey string
	resendFrom   string
	adminEmail   string

	odooURL            string
	odooDB             string
	odooAPIKey         string
	odooTimeout        time.Duration
	odooMaxRetries     int
	odooBackoffFactor  float64
	odooMaxConcurrency int
	odooRPS            float64

	chatwootBaseURL   string
	chatwootToken     string
	chatwootAccountID string

	n8nBaseURL string
	n8nAPIKey  string

	llmBaseURL string
	llmAPIKey  string
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateLimit = getenvIntDefault("RATE_LIMIT_PER_MINUTE", 300)
	cfg.rateExemptPaths = splitCSV(getenvDefault("RATE_EXEMPT_PATHS", "/,/health,/metrics"))

	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.rateStatsRedisPassword = os.Getenv("RATE_STATS_REDIS_PASSWORD")
	cfg.rateStatsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "ratelimit:stats")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsTrackTenants = getenvBoolDefault("RATE_STATS_TRACK_TENANTS", false)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.corsOrigins = splitCSV(getenvDefault("CORS_ALLOWED_ORIGINS", "*"))

	cfg.supabaseURL = os.Getenv("SUPABASE_URL")
	cfg.supabaseKey = os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	cfg.supabaseTimeout = getenvDurationDefault("SUPABASE_TIMEOUT", 10*time.Second)

	cfg.resendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.resendFrom = getenvDefault("RESEND_FROM", "SmarterBot <no-reply@smarterbot.cl>")
	cfg.adminEmail = getenvDefault("ADMIN_EMAIL", "hola@smarterbot.cl")

	cfg.odooURL = os.Getenv("ODOO_URL")
	cfg.odooDB = os.Getenv("ODOO_DB")
	cfg.odooAPIKey = os.Getenv("ODOO_API_KEY")
	cfg.odooTimeout = getenvDurationDefault("ODOO_TIMEOUT", 10*time.Second)
	cfg.odooMaxRetries = getenvIntDefault("ODOO_MAX_RETRIES", 3)
	cfg.odooBackoffFactor = getenvFloatDefault("ODOO_BACKOFF_FACTOR", 0.5)
	cfg.odooMaxConcurrency = getenvIntDefault("ODOO_MAX_CONCURRENCY", 8)
	cfg.odooRPS = getenvFloatDefault("ODOO_RPS", 0)

	cfg.chatwootBaseURL = getenvDefault("CHATWOOT_BASE_URL", "https://chatwoot.smarterbot.cl")
	cfg.chatwootToken = os.Getenv("CHATWOOT_TOKEN")
	cfg.chatwootAccountID = os.Getenv("CHATWOOT_ACCOUNT_ID")

	cfg.n8nBaseURL = getenvDefault("N8N_BASE_URL", "https://n8n.smarterbot.cl")
	cfg.n8nAPIKey = os.Getenv("N8N_API_KEY")

	cfg.llmBaseURL = os.Getenv("LLM_BASE_URL")
	cfg.llmAPIKey = os.Getenv("LLM_API_KEY")

	if cfg.rateLimit <= 0 {
		return config{}, errors.New("RATE_LIMIT_PER_MINUTE must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.rateStatsEnabled && strings.TrimSpace(cfg.rateStatsRedisAddr) == "" {
		return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	return cfg, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
