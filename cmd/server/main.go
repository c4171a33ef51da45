package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jewelry-backoffice/config"
	"jewelry-backoffice/internal/api"
	"jewelry-backoffice/internal/broker"
	"jewelry-backoffice/internal/redisclient"
	"jewelry-backoffice/internal/service"
	"jewelry-backoffice/internal/store"
	"jewelry-backoffice/internal/store/memstore"
	"jewelry-backoffice/internal/util"
	"jewelry-backoffice/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting jewelry back-office service",
		zap.String("env", cfg.Server.Env),
		zap.String("store", cfg.Database.Driver))

	if cfg.Observ.TracingEnabled {
		tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	var (
		repo   service.Repository
		checks = map[string]api.Pinger{}
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		mem := memstore.New()
		defer mem.Close()
		repo = mem
		logger.Warn("Using in-memory store, data is lost on exit")
	default:
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if cfg.Database.Migrate {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := db.Migrate(ctx)
			cancel()
			if err != nil {
				logger.Fatal("Failed to migrate database", zap.Error(err))
			}
		}
		repo = db
		checks["database"] = db
		logger.Info("Database connected")
	}

	var (
		cache   service.Cache
		tracker worker.AlertTracker
	)
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		cache = redisClient
		tracker = redisClient
		checks["redis"] = redisClient
		logger.Info("Redis connected")
	}

	var events service.EventPublisher = broker.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		events = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	ledger := service.NewStockLedger(repo, events)
	orderService := service.NewOrderService(repo, ledger, events)
	catalogService := service.NewCatalogService(repo)
	dashboardService := service.NewDashboardService(repo, cache,
		cfg.Business.LowStockThreshold,
		time.Duration(cfg.Business.DashboardCacheSeconds)*time.Second)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var alertWorker *worker.StockAlertWorker
	if cfg.Kafka.Enabled && tracker != nil {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		alertWorker = worker.NewStockAlertWorker(consumer, tracker, cfg.Business.LowStockThreshold)
		go func() {
			if err := alertWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Stock alert worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(orderService, catalogService, ledger, dashboardService, logger).
		WithRateLimit(cfg.Business.RateLimit)
	for name, p := range checks {
		handler.WithReadinessCheck(name, p)
	}
	if err := handler.SetupRoutes(router); err != nil {
		logger.Fatal("Failed to set up routes", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if alertWorker != nil {
		if err := alertWorker.Stop(); err != nil {
			logger.Error("Error stopping stock alert worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
