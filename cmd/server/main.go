package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/stockbook/backend/internal/application/catalog"
	inventoryapp "github.com/stockbook/backend/internal/application/inventory"
	"github.com/stockbook/backend/internal/infrastructure/config"
	"github.com/stockbook/backend/internal/infrastructure/event"
	"github.com/stockbook/backend/internal/infrastructure/logger"
	"github.com/stockbook/backend/internal/infrastructure/persistence"
	"github.com/stockbook/backend/internal/interfaces/http/handler"
	"github.com/stockbook/backend/internal/interfaces/http/middleware"
	"github.com/stockbook/backend/internal/interfaces/http/router"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
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

	log.Info("Starting stockbook backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.App.Env != "production" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	formulaRepo := persistence.NewGormFormulaRepository(db.DB)
	productionRepo := persistence.NewGormProductionLogRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	productService := catalogapp.NewProductService(productRepo)
	productService.SetEventPublisher(eventBus)

	recalculationService := inventoryapp.NewRecalculationService(scope, log)
	recalculationService.SetEventPublisher(eventBus)

	ledgerService := inventoryapp.NewLedgerService(scope, ledgerRepo, productRepo, log)
	formulaService := inventoryapp.NewFormulaService(scope, formulaRepo, recalculationService, log)

	productionService := inventoryapp.NewProductionService(scope, productionRepo, log)
	productionService.SetEventPublisher(eventBus)

	adjustmentService := inventoryapp.NewAdjustmentService(scope, log)
	adjustmentService.SetEventPublisher(eventBus)

	auditService := inventoryapp.NewAuditService(scope, ledgerRepo, log)

	// Handlers
	productHandler := handler.NewProductHandler(productService)
	formulaHandler := handler.NewFormulaHandler(formulaService)
	tradeHandler := handler.NewTradeHandler(ledgerService, productionService)
	productionHandler := handler.NewProductionHandler(productionService, recalculationService)
	stockHandler := handler.NewStockHandler(ledgerService, adjustmentService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS())

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Tenant())

	// Catalog domain (products, unit configuration)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.PUT("/products/:id/units", productHandler.ConfigureUnits)

	// Inventory domain (ledger, formulas, production, adjustments)
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.GET("/formulas/:product_id", formulaHandler.List)
	inventoryRoutes.PUT("/formulas", formulaHandler.Upsert)
	inventoryRoutes.DELETE("/formulas/:product_id/:ingredient_id", formulaHandler.Delete)
	inventoryRoutes.PUT("/formulas/:product_id/batch-size", formulaHandler.SetBatchSize)

	inventoryRoutes.POST("/opening-balances", tradeHandler.RecordOpening)
	inventoryRoutes.POST("/purchases", tradeHandler.RecordPurchase)
	inventoryRoutes.DELETE("/purchases/:id", tradeHandler.DeletePurchase)
	inventoryRoutes.POST("/sales", tradeHandler.RecordSale)
	inventoryRoutes.POST("/sales/repair", tradeHandler.RepairSale)
	inventoryRoutes.DELETE("/sales/:id", tradeHandler.DeleteSale)

	inventoryRoutes.POST("/production-logs", productionHandler.Record)
	inventoryRoutes.DELETE("/production-logs/:id", productionHandler.Delete)
	inventoryRoutes.GET("/products/:product_id/production-logs", productionHandler.List)
	inventoryRoutes.POST("/products/:product_id/recalculate", productionHandler.Recalculate)

	inventoryRoutes.GET("/stock/summary", stockHandler.Summary)
	inventoryRoutes.GET("/stock/ledger", stockHandler.Ledger)
	inventoryRoutes.GET("/stock/:product_id/balance", stockHandler.Balance)
	inventoryRoutes.GET("/stock/:product_id/ledger", stockHandler.Ledger)
	inventoryRoutes.POST("/adjustments", stockHandler.Adjust)
	inventoryRoutes.POST("/transfers", stockHandler.Transfer)

	inventoryRoutes.GET("/audit/orphans", auditHandler.ListOrphans)
	inventoryRoutes.POST("/audit/repair", auditHandler.Repair)

	r.Register(catalogRoutes).
		Register(inventoryRoutes)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
