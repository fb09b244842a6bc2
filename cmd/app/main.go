// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consulting-portal/internal/config"
	"consulting-portal/internal/domain/ports/adapter"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/infra/adapters/authadmin"
	"consulting-portal/internal/infra/adapters/storage"
	tele "consulting-portal/internal/infra/adapters/telegram"
	"consulting-portal/internal/infra/adapters/whatsapp"
	"consulting-portal/internal/infra/api"
	"consulting-portal/internal/infra/catalog"
	pg "consulting-portal/internal/infra/db/postgres"
	"consulting-portal/internal/infra/i18n"
	"consulting-portal/internal/infra/logging"
	"consulting-portal/internal/infra/memstore"
	"consulting-portal/internal/infra/metrics"
	"consulting-portal/internal/infra/payment"
	red "consulting-portal/internal/infra/redis"
	"consulting-portal/internal/infra/sched"
	"consulting-portal/internal/infra/security"
	"consulting-portal/internal/infra/web"
	"consulting-portal/internal/usecase"

	"github.com/jackc/pgx/v4/pgxpool"
)

// set with -ldflags
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, in-memory stores)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go samplePoolStats(ctx, pool)

	// ---- Session state, throttle, locks ----
	var (
		sessions repository.SessionStateRepository
		attempts repository.AttemptStore
		locker   adapter.Locker
		limiter  api.Limiter
		roles    repository.RoleRepository = pg.NewRoleRepo(pool)
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		sessions = red.NewSessionStore(redisClient)
		attempts = red.NewAttemptStore(redisClient, cfg.Checkout.Throttle.IdleReset)
		locker = red.NewLocker(redisClient, cfg.Payment.Webhook.LockTTL)
		limiter = red.NewRateLimiter(redisClient)
		roles = pg.NewRoleRepoCacheDecorator(roles, redisClient, logger)
	} else {
		logger.Warn().Msg("redis.url empty; using in-memory stores (single instance only)")
		sessions = memstore.NewSessionStore()
		attempts = memstore.NewAttemptStore()
		locker = memstore.NewLocker()
		limiter = memstore.NewRateLimiter()
	}

	if cfg.Security.SessionKey != "" {
		sealer, err := security.NewSealer(cfg.Security.SessionKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("session encryption")
		}
		sessions = security.NewSealedSessionStore(sessions, sealer)
	} else if !cfg.Runtime.Dev {
		logger.Warn().Msg("security.session_key empty; checkout session documents are stored unencrypted")
	}

	// ---- Catalog & locale ----
	plans, err := catalog.Load(cfg.Checkout.PlansFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("plan catalog")
	}
	tr := i18n.MustDefault()

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	invoiceRepo := pg.NewInvoiceRepo(pool)
	eventRepo := pg.NewWebhookEventRepo(pool)
	convRepo := pg.NewConversationRepo(pool)
	msgRepo := pg.NewMessageRepo(pool)

	// ---- Adapters ----
	notifier, err := tele.NewNotifier(cfg.Notify, tele.NewNoopNotifier(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram notifier")
	}
	gateway, err := whatsapp.NewEvolutionGateway(cfg.WhatsApp.BaseURL, cfg.WhatsApp.Instance, cfg.WhatsApp.APIKey, cfg.WhatsApp.Timeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("whatsapp gateway")
	}
	authAdmin, err := authadmin.NewGoTrueAdmin(cfg.Auth.AdminURL, cfg.Auth.ServiceRoleKey, cfg.Auth.Timeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("auth admin")
	}
	objects, err := storage.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("object storage")
	}

	// ---- Use cases ----
	paymentUC := usecase.NewPaymentUseCase(plans, sessions, metrics.NewTracker(logger), logger)
	recoveryUC := usecase.NewRecoveryUseCase(sessions, cfg.Checkout.RecoveryWindow, logger)
	throttleUC := usecase.NewThrottleUseCase(attempts, usecase.ThrottlePolicy{
		MinInterval: cfg.Checkout.Throttle.MinInterval,
		IdleReset:   cfg.Checkout.Throttle.IdleReset,
		MaxAttempts: cfg.Checkout.Throttle.MaxAttempts,
	}, logger)
	webhookUC := usecase.NewWebhookUseCase(tm, eventRepo, invoiceRepo, subRepo, locker, notifier, tr, logger)
	messagingUC := usecase.NewMessagingUseCase(gateway, tm, convRepo, msgRepo, logger)
	adminUC := usecase.NewAdminUserUseCase(roles, authAdmin, logger)
	storageUC := usecase.NewStorageUseCase(objects, cfg.Storage.Buckets, cfg.Storage.ClientBucket, logger)

	// ---- HTTP ----
	proxies, err := api.NewProxyTrust(cfg.HTTP.TrustedProxies)
	if err != nil {
		logger.Fatal().Err(err).Msg("http.trusted_proxies")
	}
	authMgr := web.NewAuthManager(cfg.Auth.JWTSecret)
	verifier := payment.NewVerifier(cfg.Payment.Webhook.Token, cfg.Payment.Webhook.HMACSecret, cfg.Payment.Webhook.HMACHeader)
	router := api.NewRouter(cfg.HTTP, api.Deps{
		Checkout:  api.NewCheckoutHandler(paymentUC, recoveryUC, throttleUC, usecase.NewErrorMessages(tr), authMgr, cfg.HTTP.SecureCookies, logger),
		Webhook:   api.NewWebhookHandler(webhookUC, verifier, logger),
		Functions: api.NewFunctionsHandler(messagingUC, adminUC, storageUC, authMgr, logger),
		Limiter:   limiter,
		Proxies:   proxies,
		Logger:    logger,
	})
	server := api.NewServer(cfg.HTTP, router, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Dedup retention (hourly) ----
	pruner := sched.NewEventPruner(time.Hour, cfg.Payment.Webhook.Retention, eventRepo, logger)
	go func() { _ = pruner.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
	defer done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}

func samplePoolStats(ctx context.Context, pool *pgxpool.Pool) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s := pool.Stat()
			metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
		}
	}
}
