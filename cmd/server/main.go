package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apppred "github.com/retailops/backend/internal/application/prediction"
	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/infrastructure/cache"
	"github.com/retailops/backend/internal/infrastructure/config"
	"github.com/retailops/backend/internal/infrastructure/inference"
	"github.com/retailops/backend/internal/infrastructure/logger"
	"github.com/retailops/backend/internal/infrastructure/persistence"
	"github.com/retailops/backend/internal/infrastructure/scheduler"
	"github.com/retailops/backend/internal/infrastructure/telemetry"
	"github.com/retailops/backend/internal/interfaces/http/handler"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
	"github.com/retailops/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()
	zap.ReplaceGlobals(log)

	log.Info("Starting RetailOps Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	forecastRepo := persistence.NewForecastRepository(db.DB)
	modelRegistry := persistence.NewModelRegistry(db.DB)
	anomalyRepo := persistence.NewAnomalyRepository(db.DB)
	associationRepo := persistence.NewAssociationRepository(db.DB)
	recommendationRepo := persistence.NewRecommendationRepository(db.DB)

	// Cache tier (redis when configured, in-memory otherwise)
	forecastCache := cache.NewForecastCache(cfg, log)
	defer func() {
		if err := forecastCache.Close(); err != nil {
			log.Error("Error closing forecast cache", zap.Error(err))
		}
	}()

	inferenceClient := inference.NewHTTPClient(cfg.Inference,
		inference.WithInferenceLogger(log.Named("inference")))

	generator := prediction.NewSyntheticGenerator()

	orchestrator := apppred.NewOrchestrator(
		forecastRepo,
		anomalyRepo,
		associationRepo,
		modelRegistry,
		inferenceClient,
		generator,
		apppred.WithLogger(log.Named("orchestrator")),
		apppred.WithCache(forecastCache),
		apppred.WithDevelopmentMode(cfg.App.IsDevelopment()),
		apppred.WithStalenessWindow(cfg.Prediction.StalenessWindow),
		apppred.WithInferenceTimeout(cfg.Inference.Timeout),
	)
	if cfg.App.IsDevelopment() {
		log.Info("Development mode: predictions are served synthetically without inference")
	}

	// Use-case services
	salesService := apppred.NewSalesForecastService(orchestrator, log.Named("sales"))
	financeService := apppred.NewFinancialForecastService(orchestrator, log.Named("finance"))
	anomalyService := apppred.NewAnomalyService(orchestrator, log.Named("anomaly"))
	associationService := apppred.NewAssociationService(orchestrator, associationRepo, log.Named("association"))
	optimizationService := apppred.NewOptimizationService(orchestrator, recommendationRepo,
		apppred.WithOptimizationLogger(log.Named("optimization")))

	// Retention scheduler
	if cfg.Scheduler.Enabled {
		retention := scheduler.NewRetentionScheduler(scheduler.RetentionSchedulerConfig{
			Enabled:       true,
			PurgeInterval: cfg.Scheduler.PurgeInterval,
			RetentionAge:  time.Duration(cfg.Prediction.RetentionDays) * 24 * time.Hour,
		}, forecastRepo, associationRepo, log.Named("retention"))
		if err := retention.Start(context.Background()); err != nil {
			log.Fatal("Failed to start retention scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := retention.Stop(stopCtx); err != nil {
				log.Error("Error stopping retention scheduler", zap.Error(err))
			}
		}()
	}

	// HTTP layer
	predictionHandler := handler.NewPredictionHandler(
		salesService, financeService, anomalyService, associationService, optimizationService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(predictionHandler)
	r.Register(systemHandler)
	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
