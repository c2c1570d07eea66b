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
	dashboardapp "github.com/labstock/backend/internal/application/dashboard"
	notificationapp "github.com/labstock/backend/internal/application/notification"
	procurementapp "github.com/labstock/backend/internal/application/procurement"
	stockapp "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/cache"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/labstock/backend/internal/infrastructure/event"
	"github.com/labstock/backend/internal/infrastructure/logger"
	"github.com/labstock/backend/internal/infrastructure/mail"
	"github.com/labstock/backend/internal/infrastructure/persistence"
	"github.com/labstock/backend/internal/infrastructure/scheduler"
	"github.com/labstock/backend/internal/infrastructure/storage"
	"github.com/labstock/backend/internal/infrastructure/telemetry"
	"github.com/labstock/backend/internal/interfaces/http/handler"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
	"github.com/labstock/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	// A missing .env is fine; the environment and config.toml still apply
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry: traces, metrics, log export and continuous profiling
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	})
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdown(log, "logger provider", loggerProvider.Shutdown)
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		_ = logger.Sync(log)
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if cfg.Telemetry.ProfilingEnabled {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting lab stock service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.Open(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	if err := telemetry.RegisterDBMetrics(db.DB, meter); err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}
	log.Info("Database connected successfully")

	stockMetrics, err := telemetry.NewStockMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create stock metrics", zap.Error(err))
	}

	repos := stockapp.Repositories{
		Items:         persistence.NewGormStockItemRepository(db.DB),
		Restocks:      persistence.NewGormRestockRepository(db.DB),
		Logs:          persistence.NewGormIssueLogRepository(db.DB),
		Notifications: persistence.NewGormNotificationRepository(db.DB),
		Inwards:       persistence.NewGormInwardRepository(db.DB),
		Requests:      persistence.NewGormLabRequestRepository(db.DB),
	}
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Per-item locking and MSDS storage
	locker, lockerCloser, err := cache.NewItemLocker(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create item locker", zap.Error(err))
	}
	defer func() {
		if err := lockerCloser.Close(); err != nil {
			log.Error("Error closing item locker", zap.Error(err))
		}
	}()

	documents, err := newDocumentStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}

	// Event bus: metrics and logging for level changes, email for notifications,
	// and an optional Kafka feed of every event
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch(4, 256))
	eventBus.Subscribe(stockapp.NewStockLevelChangedHandler(log).WithRecorder(stockMetrics))

	mailer, err := mail.New(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}
	eventBus.Subscribe(notificationapp.NewNotificationCreatedHandler(log).
		WithMailer(mailer, cfg.Mail.Recipients).
		WithRecorder(stockMetrics))

	if cfg.Kafka.Enabled {
		kafkaPublisher, err := event.NewKafkaPublisher(cfg.Kafka, log)
		if err != nil {
			log.Fatal("Failed to connect to Kafka", zap.Error(err))
		}
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("Error closing Kafka publisher", zap.Error(err))
			}
		}()
		eventBus.Subscribe(kafkaPublisher)
		log.Info("Publishing domain events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	registry := stockapp.NewRegistry(repos, txScope, func(svc *stockapp.StockService) {
		svc.SetEventPublisher(eventBus)
		svc.SetLocker(locker)
		svc.SetDocumentStorage(documents)
		svc.SetLogger(log)
		svc.SetRetryAttempts(cfg.Stock.RetryAttempts)
	})

	dashboardService := dashboardapp.NewDashboardService(repos.Items, repos.Restocks)
	dashboardService.SetLogger(log)
	expiryScanner := dashboardapp.NewExpiryScanService(repos.Items, repos.Restocks, repos.Notifications)
	expiryScanner.SetEventPublisher(eventBus)
	expiryScanner.SetRecorder(stockMetrics)
	expiryScanner.SetLogger(log)

	notificationService := notificationapp.NewNotificationService(repos.Notifications)
	inwardService := procurementapp.NewInwardService(repos.Inwards, repos.Items)
	inwardService.SetLogger(log)
	labRequestService := procurementapp.NewLabRequestService(repos.Requests, repos.Notifications)
	labRequestService.SetEventPublisher(eventBus)
	labRequestService.SetLogger(log)

	// Periodic expiry scan
	sched := scheduler.New(cfg.Scheduler, log)
	if cfg.Scheduler.Enabled {
		if err := sched.Register(scheduler.ExpiryScanJob(expiryScanner, cfg.Scheduler)); err != nil {
			log.Fatal("Failed to register expiry scan", zap.Error(err))
		}
		if err := sched.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := sched.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Duration("expiry_scan_interval", cfg.Scheduler.ExpiryScanInterval),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// HTTP handlers
	stockHandlers := make([]*handler.StockHandler, 0, len(registry.Services()))
	for _, svc := range registry.Services() {
		stockHandlers = append(stockHandlers, handler.NewStockHandler(svc))
	}
	handlers := router.Handlers{
		Stock:         stockHandlers,
		Dashboard:     handler.NewDashboardHandler(dashboardService, expiryScanner),
		Notifications: handler.NewNotificationHandler(notificationService),
		Inwards:       handler.NewInwardHandler(inwardService),
		Requests:      handler.NewLabRequestHandler(labRequestService),
		Health:        handler.NewHealthHandler(db, sched, Version),
	}

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

	// Middleware order: request logging and recovery first so every later failure
	// is logged with the request id, then tracing and metrics, then the
	// request guards.
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meter))
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		go rateLimiter.RunCleanup(cfg.HTTP.RateLimitWindow, stopCleanup)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}
	engine.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))

	// Health check outside API versioning, for load balancers
	engine.GET("/health", handlers.Health.Health)

	jwtConfig := middleware.DefaultJWTConfig(auth.NewJWTService(cfg.JWT))
	jwtConfig.Logger = log
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(middleware.JWTAuthMiddleware(jwtConfig)),
	)
	router.RegisterAPI(r, handlers, router.Guards{
		Staff: middleware.RequireRoles(auth.RoleAdmin, auth.RoleLabAssistant),
		Admin: middleware.RequireRoles(auth.RoleAdmin),
	})
	r.Setup()
	routes := r.Routes()
	for _, route := range routes {
		log.Debug("Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}
	log.Info("API routes registered", zap.Int("count", len(routes)))

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
		return
	}
	log.Info("Server exited gracefully")
}

// newDocumentStorage returns S3 storage when enabled and in-memory storage otherwise.
func newDocumentStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (stockapp.DocumentStorage, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, MSDS files are kept in memory")
		return storage.NewMemoryDocumentStorage("http://localhost:" + cfg.App.Port + "/documents"), nil
	}
	s3Storage, err := storage.NewS3DocumentStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithLinkTTL(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		return nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Using S3 document storage",
		zap.String("endpoint", cfg.Storage.Endpoint),
		zap.String("bucket", cfg.Storage.Bucket),
	)
	return s3Storage, nil
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	if err := fn(context.Background()); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
