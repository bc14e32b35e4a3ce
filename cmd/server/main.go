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

	"services/market-data-service/internal/client"
	"services/market-data-service/internal/config"
	"services/market-data-service/internal/handler"
	"services/market-data-service/internal/middleware"
	"services/market-data-service/internal/model"
	"services/market-data-service/internal/quota"
	"services/market-data-service/internal/repository"
	"services/market-data-service/internal/service"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	interval, err := model.ParseInterval(cfg.Provider.Interval)
	if err != nil {
		logger.Fatal("Invalid provider interval", zap.Error(err))
	}

	tier := model.CreditTier{
		DailyLimit:  cfg.Quota.DailyLimit,
		MinuteLimit: cfg.Quota.MinuteLimit,
		ResetTime:   cfg.Quota.ResetTime,
		PlanName:    cfg.Quota.Plan,
	}

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repository
	cacheRepo := repository.NewCacheRepository(db, logger)

	// Initialize quota accounting
	providerID := service.ProviderIdentity(interval)
	ledger := quota.NewLedger(providerID)
	tracker := quota.NewTracker(providerID, tier, ledger, cacheRepo, logger)

	// Initialize the provider client
	twelveDataClient := client.NewTwelveDataClient(cfg.Provider.BaseURL, cfg.Provider.APIKey, ledger, logger)

	// Initialize services
	configService := service.NewConfigService(cacheRepo, logger)
	marketDataService := service.NewMarketDataService(
		interval,
		tier,
		twelveDataClient,
		cacheRepo,
		configService,
		tracker,
		logger,
	)

	// Initialize handlers
	marketDataHandler := handler.NewMarketDataHandler(marketDataService, logger)
	intervalHandler := handler.NewIntervalHandler(logger)
	configHandler := handler.NewConfigHandler(configService, logger)

	// Start the drain and daily-reset timers
	timersCtx, stopTimers := context.WithCancel(context.Background())
	defer stopTimers()
	tracker.Start(timersCtx)

	// Set up HTTP server with Gin
	router := setupRouter(marketDataHandler, intervalHandler, configHandler, logger, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("provider", providerID))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop background timers, then drain what is still buffered
	stopTimers()
	drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	tracker.Drain(drainCtx)
	cancel()

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	marketDataHandler *handler.MarketDataHandler,
	intervalHandler *handler.IntervalHandler,
	configHandler *handler.ConfigHandler,
	logger *zap.Logger,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Market data routes
		marketData := v1.Group("/market-data")
		{
			marketData.GET("/time-series", marketDataHandler.GetTimeSeries)
			marketData.GET("/earliest-date/:symbol", marketDataHandler.GetEarliestDate)
		}

		// Symbol routes
		v1.GET("/symbols/available", marketDataHandler.GetAvailableSymbols)

		// Quota observability
		v1.GET("/quota", marketDataHandler.GetQuota)

		// Interval routes
		intervals := v1.Group("/intervals")
		{
			intervals.GET("", intervalHandler.GetIntervals)
			intervals.GET("/validate/:interval", intervalHandler.ValidateInterval)
		}

		// Service-to-service routes (requires service key)
		svc := v1.Group("/service")
		svc.Use(middleware.ServiceAuthMiddleware(cfg.ServiceKey, logger))
		{
			svc.GET("/config/:key", configHandler.GetConfig)
			svc.PUT("/config/:key", configHandler.SetConfig)
		}
	}
	return router
}
