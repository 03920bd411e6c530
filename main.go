package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"fundledger/internal/audit"
	"fundledger/internal/auth"
	"fundledger/internal/ledger/application"
	ledgerrepo "fundledger/internal/ledger/infrastructure/postgres"
	ledgerhttp "fundledger/internal/ledger/interfaces"
	"fundledger/internal/members"
	"fundledger/internal/notify"
	"fundledger/internal/observability/metrics"
	"fundledger/internal/scheduler"
	"fundledger/internal/settings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "fundledger").Logger()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	metrics.Init()

	ledgerSettings, err := settings.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("settings load failed")
	}

	investmentRepo := ledgerrepo.NewInvestmentRepository(db)
	topupRepo := ledgerrepo.NewTopupRepository(db)
	withdrawalRepo := ledgerrepo.NewWithdrawalRepository(db)
	runRepo := ledgerrepo.NewAccrualRunRepository(db)
	auditRepo := audit.NewRepository(db)
	directory := members.NewDirectory(db, ledgerSettings.DefaultInterestRate())

	var notifier application.Notifier
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.WebhookURL)
	}

	clock := application.SystemClock{}

	balanceService, err := application.NewBalanceService(investmentRepo, withdrawalRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("balance service init failed")
	}
	topupWorkflow, err := application.NewTopupWorkflow(topupRepo, directory, ledgerSettings, notifier, auditRepo, clock, log)
	if err != nil {
		log.Fatal().Err(err).Msg("topup workflow init failed")
	}
	withdrawalWorkflow, err := application.NewWithdrawalWorkflow(withdrawalRepo, balanceService, directory, ledgerSettings, notifier, auditRepo, clock, log)
	if err != nil {
		log.Fatal().Err(err).Msg("withdrawal workflow init failed")
	}
	accrualEngine, err := application.NewAccrualEngine(investmentRepo, runRepo, notifier, clock, log)
	if err != nil {
		log.Fatal().Err(err).Msg("accrual engine init failed")
	}
	statementService, err := application.NewStatementService(investmentRepo, topupRepo, withdrawalRepo, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("statement service init failed")
	}
	investmentService, err := application.NewInvestmentService(investmentRepo, auditRepo, clock, log)
	if err != nil {
		log.Fatal().Err(err).Msg("investment service init failed")
	}

	topupHandler, err := ledgerhttp.NewTopupHandler(topupWorkflow, topupRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("topup handler init failed")
	}
	withdrawalHandler, err := ledgerhttp.NewWithdrawalHandler(withdrawalWorkflow, withdrawalRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("withdrawal handler init failed")
	}
	memberHandler, err := ledgerhttp.NewMemberHandler(balanceService, statementService, topupRepo, withdrawalRepo, auditRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("member handler init failed")
	}
	accrualHandler, err := ledgerhttp.NewAccrualHandler(accrualEngine, runRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("accrual handler init failed")
	}
	investmentHandler, err := ledgerhttp.NewInvestmentHandler(investmentService)
	if err != nil {
		log.Fatal().Err(err).Msg("investment handler init failed")
	}

	sched := scheduler.New(log)
	accrualJob := scheduler.NewMonthlyAccrualJob(accrualEngine, cfg.AccrualTimeout)
	if err := sched.AddJob(cfg.AccrualSchedule, accrualJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.AccrualSchedule).Msg("accrual schedule invalid")
	}
	sched.Start()
	defer sched.Stop()

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/topups", topupHandler)
	mux.Handle("/api/v1/topups/", topupHandler)
	mux.Handle("/api/v1/withdrawals", withdrawalHandler)
	mux.Handle("/api/v1/withdrawals/", withdrawalHandler)
	mux.Handle("/api/v1/members/", memberHandler)
	mux.Handle("/api/v1/investments/", investmentHandler)
	mux.Handle("/api/v1/accrual/run", accrualHandler)
	mux.Handle("/api/v1/accrual/runs", accrualHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), log)}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	JWTSecret       string
	WebhookURL      string
	AccrualSchedule string
	AccrualTimeout  time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		WebhookURL:      getenvDefault("LEDGER_WEBHOOK_URL", ""),
		AccrualSchedule: getenvDefault("ACCRUAL_SCHEDULE", "0 0 1 * *"),
		AccrualTimeout:  getenvDuration("ACCRUAL_TIMEOUT", 30*time.Minute),
	}
	if cfg.DatabaseURL == "" {
		panic("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		panic("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", resp.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
