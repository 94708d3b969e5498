// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"supplier-matching/internal/api"
	"supplier-matching/internal/common/aws"
	"supplier-matching/internal/common/camunda"
	"supplier-matching/internal/common/config"
	"supplier-matching/internal/common/database"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/common/observability"
	"supplier-matching/internal/matching"
	"supplier-matching/internal/service"
	"supplier-matching/internal/store"
	"supplier-matching/pkg/registry"

	gsm "supplier-matching/internal/workers/matching/generate-supplier-matches"
	nms "supplier-matching/internal/workers/matching/notify-matched-suppliers"
	rmf "supplier-matching/internal/workers/matching/record-match-feedback"
)

const serviceName = "supplier-matching"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting supplier matching worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.App, cfg.Tracing)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	obs := observability.New(serviceName)
	defer obs.Shutdown()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			MessageTTL:             time.Hour,
			RetryConfig:            camunda.DefaultRetryConfig,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	// --- Matching service ---
	deps := service.Dependencies{
		Repository: store.NewPostgresStore(pg),
		Engine: matching.NewEngine(matching.Options{
			Threshold:       cfg.Matching.Threshold,
			ExplanationTopN: cfg.Matching.ExplanationTopN,
			RankingLimit:    cfg.Matching.RankingLimit,
			Weights:         cfg.Matching.Weights,
		}),
		Search:        store.NewSupplierSearch(esClient.Client, cfg.Database.Elasticsearch.SupplierIndex),
		Cache:         store.NewCache(redis, time.Duration(cfg.Database.Redis.CacheTTL)*time.Second, log),
		Publisher:     zeebe,
		Observability: obs,
		Logger:        log,
	}

	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		notifier, err := aws.NewNotifier(ctx, aws.NotifierConfig{
			Region:       cfg.Notifications.AWS.Region,
			EmailEnabled: cfg.Notifications.Email.Enabled,
			FromEmail:    cfg.Notifications.Email.FromEmail,
			SMSEnabled:   cfg.Notifications.SMS.Enabled,
			SMSSenderID:  cfg.Notifications.SMS.SenderID,
		})
		if err != nil {
			zapLog.Warn("supplier notifications disabled", zap.Error(err))
		} else {
			deps.Notifier = notifier
		}
	}

	svc, err := service.NewMatchService(service.Config{
		CandidateLimit: cfg.Matching.CandidateLimit,
		Concurrency:    cfg.Matching.Concurrency,
		UseAdvanced:    cfg.Matching.UseAdvanced,
	}, deps)
	if err != nil {
		zapLog.Fatal("match service init failed", zap.Error(err))
	}

	// --- Register workers ---
	var workers []*camunda.CamundaWorker
	start := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), taskType, wcfg, handler, log))
	}

	start(gsm.TaskType, gsm.NewHandler(gsm.NewConfig(config.GetWorkerConfig(cfg, gsm.TaskType)), svc, log))
	start(rmf.TaskType, rmf.NewHandler(rmf.NewConfig(config.GetWorkerConfig(cfg, rmf.TaskType)), svc, log))
	start(nms.TaskType, nms.NewHandler(nms.NewConfig(config.GetWorkerConfig(cfg, nms.TaskType)), svc, log))

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	checkRegistry(cfg.Registry.Path, zapLog, gsm.TaskType, rmf.TaskType, nms.TaskType)

	// --- HTTP server: probes, metrics and the matching API ---
	routerCfg := api.RouterConfig{
		ServiceName: serviceName,
		CORSOrigins: cfg.API.CORSOrigins,
		Logger:      log,
		HealthHandler: api.NewHealthHandler(map[string]api.Check{
			"postgres":      pg.Ping,
			"redis":         redis.Ping,
			"elasticsearch": esClient.Ping,
			"zeebe":         zeebe.HealthCheck,
		}),
	}
	if cfg.API.Enabled {
		routerCfg.MatchHandler = api.NewMatchHandler(svc, log)
	}

	server := api.NewServer(cfg.API, api.NewRouter(routerCfg))
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", server.Addr()), zap.Bool("api", cfg.API.Enabled))
		if err := server.Start(); err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := redis.Close(); err != nil {
		zapLog.Error("Error closing Redis client", zap.Error(err))
	}
	if err := pg.Close(); err != nil {
		zapLog.Error("Error closing PostgreSQL client", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry warns about task types that have no registry entry. A missing
// registry file is not fatal.
func checkRegistry(path string, log *zap.Logger, taskTypes ...string) {
	if path == "" {
		return
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry is invalid", zap.Error(err))
	}
	for _, t := range reg.Missing(taskTypes...) {
		log.Warn("task type missing from activity registry", zap.String("taskType", t))
	}
}
