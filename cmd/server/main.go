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
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/tileshop/backend/docs"
	catalogapp "github.com/tileshop/backend/internal/application/catalog"
	invoicingapp "github.com/tileshop/backend/internal/application/invoicing"
	partnerapp "github.com/tileshop/backend/internal/application/partner"
	"github.com/tileshop/backend/internal/infrastructure/auth"
	"github.com/tileshop/backend/internal/infrastructure/cache"
	"github.com/tileshop/backend/internal/infrastructure/config"
	"github.com/tileshop/backend/internal/infrastructure/event"
	"github.com/tileshop/backend/internal/infrastructure/export"
	"github.com/tileshop/backend/internal/infrastructure/logger"
	"github.com/tileshop/backend/internal/infrastructure/persistence"
	"github.com/tileshop/backend/internal/infrastructure/printing"
	"github.com/tileshop/backend/internal/infrastructure/telemetry"
	"github.com/tileshop/backend/internal/interfaces/http/handler"
	"github.com/tileshop/backend/internal/interfaces/http/middleware"
	"github.com/tileshop/backend/internal/interfaces/http/router"
)

//	@title			Tile Shop Invoicing API
//	@version		1.0
//	@description	Tiles, customers and GST-style invoices with printable PDFs and an XLSX register.

//	@host		localhost:8000
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("Failed to read .env: " + err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	providers, err := telemetry.NewProviders(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := providers.Logs.Bridge(baseLog, zapcore.InfoLevel)
	defer func() {
		_ = logger.Sync(log)
	}()
	zap.ReplaceGlobals(log)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		providers.Tracer.EnableSpanProfiles()
	}

	log.Info("Starting Tile Shop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("print_strategy", cfg.Printing.Strategy),
	)

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	log.Info("Database ready")

	invoiceMetrics, err := telemetry.NewInvoiceMetrics(providers.Meter.Meter("tileshop/invoicing"))
	if err != nil {
		log.Fatal("Failed to create invoice metrics", zap.Error(err))
	}

	lockFactory := cache.NewSequenceLockerFactory(cfg.Redis, cfg.Lock,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	)
	locker, redisClient, err := lockFactory.Create(ctx)
	if err != nil {
		log.Fatal("Failed to create invoice sequence lock", zap.Error(err))
	}

	renderer, err := newRenderer(cfg.Printing, invoiceMetrics, log)
	if err != nil {
		log.Fatal("Failed to initialize invoice renderer", zap.Error(err))
	}

	var archive printing.PDFStorage
	if cfg.Printing.ArchiveEnabled {
		archive, err = newArchive(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize PDF archive", zap.Error(err))
		}
	}

	loc := cfg.App.Location()

	tileRepo := persistence.NewGormTileRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	eventBus := event.NewInMemoryEventBus(log)

	tileService := catalogapp.NewTileService(tileRepo)
	customerService := partnerapp.NewCustomerService(customerRepo, invoiceRepo, eventBus)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, customerRepo, tileRepo, locker, eventBus,
		invoicingapp.WithMetrics(invoiceMetrics),
		invoicingapp.WithLogger(log),
		invoicingapp.WithLocation(loc),
	)
	documentService := invoicingapp.NewDocumentService(invoicingapp.DocumentServiceConfig{
		Finder:      invoiceService,
		InvoiceRepo: invoiceRepo,
		Renderer:    renderer,
		Strategy:    cfg.Printing.Strategy,
		Archive:     archive,
		Register:    export.NewRegisterWriter(loc),
		Metrics:     invoiceMetrics,
		Logger:      log,
		Location:    loc,
	})

	pendingHandler := partnerapp.NewPendingBalanceHandler(customerService, log)
	eventBus.Subscribe(pendingHandler)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	log.Info("Event handlers registered", zap.Strings("pending_balance_events", pendingHandler.EventTypes()))

	stopMaintenance, err := startMaintenance(ctx, cfg, customerService, log)
	if err != nil {
		log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
	}

	var (
		authenticator *auth.AdminAuthenticator
		authHandler   *handler.AuthHandler
		loginLimiter  *middleware.RateLimiter
	)
	if cfg.Auth.Enabled {
		var blacklist auth.TokenBlacklist
		if redisClient != nil {
			blacklist = auth.NewRedisTokenBlacklist(redisClient)
		}
		authenticator, err = auth.NewAdminAuthenticator(cfg.Auth, auth.NewJWTService(cfg.Auth), blacklist)
		if err != nil {
			log.Fatal("Failed to initialize admin auth", zap.Error(err))
		}
		authHandler = handler.NewAuthHandler(authenticator)
		loginLimiter = middleware.NewRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
		defer loginLimiter.Stop()
	} else {
		log.Warn("Admin authentication disabled, the API is open")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access database handle", zap.Error(err))
	}

	engineCfg := router.EngineConfig{
		HTTP:             cfg.HTTP,
		Swagger:          cfg.Swagger,
		Logger:           log,
		LoginLimiter:     loginLimiter,
		TracingEnabled:   providers.Tracer.IsEnabled(),
		ServiceName:      cfg.Telemetry.ServiceName,
		Meter:            providers.Meter.Meter("tileshop/http"),
		ProfilingEnabled: profiler.IsEnabled(),
	}
	if authenticator != nil {
		engineCfg.Authenticator = authenticator
	}
	engine := router.NewEngine(engineCfg, router.Handlers{
		System:   handler.NewSystemHandler(sqlDB, "1.0"),
		Auth:     authHandler,
		Tile:     handler.NewTileHandler(tileService),
		Customer: handler.NewCustomerHandler(customerService),
		Invoice:  handler.NewInvoiceHandler(invoiceService, documentService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopMaintenance(shutdownCtx)
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := renderer.Close(); err != nil {
		log.Error("Error closing renderer", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
