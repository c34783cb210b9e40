package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"portfolio-assistant/internal/application"
	"portfolio-assistant/internal/config"
	"portfolio-assistant/internal/domain/ports/adapter"
	aiAdapters "portfolio-assistant/internal/infra/adapters/ai"
	"portfolio-assistant/internal/infra/adapters/notify"
	pg "portfolio-assistant/internal/infra/db/postgres"
	"portfolio-assistant/internal/infra/logging"
	"portfolio-assistant/internal/infra/metrics"
	red "portfolio-assistant/internal/infra/redis"
	"portfolio-assistant/internal/infra/sched"
	"portfolio-assistant/internal/infra/security"
	"portfolio-assistant/internal/infra/web"
	"portfolio-assistant/internal/infra/worker"
	"portfolio-assistant/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	stateRepo := red.NewStateRepo(redisClient, cfg.Flow.StateTTL)
	replyCache := red.NewReplyCache(redisClient, cfg.Redis.TTL)
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Encryption ----
	var encSvc *security.EncryptionService
	if cfg.Security.EncryptionKey != "" {
		encSvc, err = security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption")
		}
	} else {
		logger.Warn().Msg("security.encryption_key not set; chat turns stored as plaintext")
	}

	// ---- Repositories ----
	sessionRepo := pg.NewSessionRepo(pool, encSvc)
	notifLogRepo := pg.NewNotificationLogRepo(pool)
	analyticsRepo := pg.NewAnalyticsRepo(pool)

	// ---- Notifier ----
	var notifier adapter.Notifier
	switch cfg.Notify.Mode {
	case "telegram":
		notifier, err = notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
		logger.Info().Msg("notifier: telegram")
	case "webhook":
		notifier, err = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.DispatchTimeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("webhook notifier")
		}
		logger.Info().Msg("notifier: webhook")
	default:
		notifier = notify.NewNoopNotifier()
		logger.Warn().Msg("notifier: noop (contact requests are logged, not delivered)")
	}

	// ---- AI adapter (OpenAI and/or Gemini behind a router) ----
	byProvider := map[string]adapter.AIServiceAdapter{}
	if cfg.AI.OpenAIKey != "" {
		a, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		byProvider["openai"] = a
	}
	if cfg.AI.GeminiKey != "" {
		a, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.DefaultModel, 1024)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		byProvider["gemini"] = a
	}
	var ai adapter.AIServiceAdapter
	if len(byProvider) > 0 {
		ai = aiAdapters.NewLimitedAI(
			aiAdapters.NewMultiAIAdapter("openai", byProvider, nil),
			cfg.AI.ConcurrentLimit,
		)
		logger.Info().Int("providers", len(byProvider)).Str("model", cfg.AI.DefaultModel).Msg("ai adapter ready")
	} else {
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("no AI provider configured; free-text questions get a canned reply")
	}

	// ---- Use cases ----
	notifUC := usecase.NewNotificationUseCase(notifier, notifLogRepo, cfg.Notify.DispatchTimeout, cfg.Runtime.Dev, logger)
	convUC := usecase.NewConversationUseCase(stateRepo, notifUC, logger)
	chatUC := usecase.NewChatUseCase(sessionRepo, ai, replyCache, cfg.AI.SystemPrompt, cfg.AI.DefaultModel, cfg.AI.HistoryTurns, cfg.AI.MaxPromptTokens, logger)
	analyticsUC := usecase.NewAnalyticsUseCase(analyticsRepo, sessionRepo, notifLogRepo, logger)

	// ---- Facade ----
	txm := pg.NewTxManager(pool)
	facade := application.NewAssistantFacade(convUC, chatUC, sessionRepo, txm, logger)

	// ---- Workers ----
	pool2 := worker.NewPool(cfg.Flow.EventWorkers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	retryWorker := sched.NewRetryWorker(cfg.Notify.RetryInterval, cfg.Notify.RetryBatch, notifUC, logger)
	go func() { _ = retryWorker.Run(ctx) }()

	reaper := sched.NewReaperWorker(cfg.Flow.ReaperInterval, cfg.Flow.RetentionDays, sessionRepo, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.SecureCookie, cfg.Admin.CookieDomain, cfg.Admin.SessionTTL)
	srv := web.NewServer(facade, analyticsUC, notifUC, auth, cfg.Admin.Password, locker, rateLimiter, logger)
	srv.SetPool(pool2)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
