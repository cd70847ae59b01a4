package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/tradingvision/config"
	_ "github.com/epeers/tradingvision/docs"
	"github.com/epeers/tradingvision/internal/cache"
	"github.com/epeers/tradingvision/internal/database"
	"github.com/epeers/tradingvision/internal/fmp"
	"github.com/epeers/tradingvision/internal/handlers"
	"github.com/epeers/tradingvision/internal/middleware"
	"github.com/epeers/tradingvision/internal/repository"
	"github.com/epeers/tradingvision/internal/scheduler"
	"github.com/epeers/tradingvision/internal/services"
	"github.com/epeers/tradingvision/internal/util"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title TradingVision Ingestion API
// @version 1.0
// @description Market-data ingestion, reconciliation and audit service
// @BasePath /
func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	symbolRepo := repository.NewSymbolRepository(db.Pool)
	holdingRepo := repository.NewHoldingRepository(db.Pool)
	auditRepo := repository.NewAuditRepository(db.Pool)
	quoteRepo := repository.NewQuoteRepository(db.Pool)

	// The audit service doubles as the provider client's telemetry sink.
	auditSvc := services.NewAuditService(auditRepo)

	// Initialize FMP client and caches
	fmpClient := fmp.NewClientWithBaseURL(cfg.FMPKey, cfg.FMPBaseURL, auditSvc)
	quoteCache := cache.NewQuoteCache(5 * time.Minute)

	// Initialize services
	profileSvc := services.NewProfileService(fmpClient, symbolRepo, cfg.ProfileDelay)
	importSvc := services.NewImportService(fmpClient, symbolRepo, holdingRepo, profileSvc)
	symbolSvc := services.NewSymbolService(fmpClient, symbolRepo, holdingRepo)
	quoteSvc := services.NewQuoteService(fmpClient, symbolRepo, quoteRepo, quoteCache)

	// Initialize handlers
	etfHandler := handlers.NewETFHandler(symbolSvc, importSvc)
	symbolHandler := handlers.NewSymbolHandler(symbolSvc, profileSvc, quoteSvc)
	loggingHandler := handlers.NewLoggingHandler(auditSvc)
	adminHandler := handlers.NewAdminHandler(importSvc, profileSvc, quoteSvc)

	// Background jobs
	sched := scheduler.New(auditSvc)
	sched.At("daily-quotes", util.NextMarketClose, func(ctx context.Context) error {
		_, err := quoteSvc.CollectDailyQuotes(ctx)
		return err
	})
	sched.At("daily-summary", util.NextMidnightUTC, func(ctx context.Context) error {
		// Roll up the day that just ended.
		_, err := auditSvc.GenerateDailySummary(ctx, time.Now().UTC().AddDate(0, 0, -1))
		return err
	})
	sched.Every("holdings-refresh", 7*24*time.Hour, func(ctx context.Context) error {
		_, err := importSvc.ImportAll(ctx)
		return err
	})
	sched.Every("rate-budget-check", time.Hour, func(ctx context.Context) error {
		return auditSvc.CheckCallBudget(ctx, cfg.CallBudget)
	})
	sched.Start(ctx)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ETF routes
	router.GET("/etfs", etfHandler.List)
	router.GET("/etfs/:id/holdings", etfHandler.GetHoldings)
	router.POST("/etfs/:id/import-holdings", etfHandler.ImportHoldings)
	router.PUT("/etfs/:id/holdings/:symbolId/tracking", etfHandler.UpdateTracking)
	router.DELETE("/etfs/:id/holdings/:symbolId", etfHandler.DeleteHolding)

	// Symbol routes
	router.GET("/symbols", symbolHandler.List)
	router.POST("/symbols", symbolHandler.Add)
	router.GET("/symbols/:id", symbolHandler.Get)
	router.PUT("/symbols/:id/status", symbolHandler.UpdateStatus)
	router.DELETE("/symbols/:id", symbolHandler.Delete)
	router.POST("/symbols/:id/import-profile", symbolHandler.ImportProfile)
	router.POST("/symbols/:id/fetch-historical", symbolHandler.FetchHistorical)
	router.GET("/quotes/:symbol", symbolHandler.GetQuote)

	// Logging routes
	router.GET("/logging/api-calls", loggingHandler.ApiCalls)
	router.GET("/logging/exceptions", loggingHandler.Exceptions)
	router.POST("/logging/exceptions/:id/resolve", loggingHandler.ResolveException)
	router.GET("/logging/daily-summary/:date", loggingHandler.DailySummary)
	router.POST("/logging/generate-daily-summary/:date", loggingHandler.GenerateSummary)
	router.GET("/logging/daily-summaries", loggingHandler.DailySummaries)
	router.GET("/logging/stats", loggingHandler.Stats)
	router.GET("/logging/dashboard", loggingHandler.Dashboard)

	// Admin routes
	router.POST("/admin/import-all-holdings", adminHandler.ImportAllHoldings)
	router.POST("/admin/backfill-profiles", adminHandler.BackfillProfiles)
	router.POST("/admin/collect-quotes", adminHandler.CollectQuotes)

	// API documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	sched.Stop()

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
