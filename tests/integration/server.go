package integration

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	dashboardapp "github.com/labstock/backend/internal/application/dashboard"
	notificationapp "github.com/labstock/backend/internal/application/notification"
	procurementapp "github.com/labstock/backend/internal/application/procurement"
	stockapp "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/cache"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/labstock/backend/internal/infrastructure/event"
	"github.com/labstock/backend/internal/infrastructure/logger"
	"github.com/labstock/backend/internal/infrastructure/persistence"
	"github.com/labstock/backend/internal/infrastructure/scheduler"
	"github.com/labstock/backend/internal/infrastructure/storage"
	"github.com/labstock/backend/internal/interfaces/http/handler"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
	"github.com/labstock/backend/internal/interfaces/http/router"
	"github.com/labstock/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestServer is the full API over a real database, wired the way cmd/server wires it
// minus telemetry and external brokers.
type TestServer struct {
	DB        *TestDB
	Engine    *gin.Engine
	Registry  *stockapp.Registry
	Scanner   *dashboardapp.ExpiryScanService
	Events    *testutil.RecordingHandler
	Documents *storage.MemoryDocumentStorage
	Client    testutil.APIClient
	Tokens    testutil.Tokens
}

// NewTestServer builds the API over a fresh TestDB. The event bus dispatches
// synchronously so recorded events are visible when a request returns.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	tdb := NewTestDB(t)
	log := zap.NewNop()

	repos := stockapp.Repositories{
		Items:         persistence.NewGormStockItemRepository(tdb.DB),
		Restocks:      persistence.NewGormRestockRepository(tdb.DB),
		Logs:          persistence.NewGormIssueLogRepository(tdb.DB),
		Notifications: persistence.NewGormNotificationRepository(tdb.DB),
		Inwards:       persistence.NewGormInwardRepository(tdb.DB),
		Requests:      persistence.NewGormLabRequestRepository(tdb.DB),
	}

	bus := event.NewInMemoryEventBus(log)
	events := testutil.NewRecordingHandler()
	bus.Subscribe(events)
	bus.Subscribe(stockapp.NewStockLevelChangedHandler(log))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	documents := storage.NewMemoryDocumentStorage("http://docs.test")
	locker := cache.NewInMemoryItemLocker()
	registry := stockapp.NewRegistry(repos, persistence.NewGormTransactionScope(tdb.DB), func(svc *stockapp.StockService) {
		svc.SetEventPublisher(bus)
		svc.SetLocker(locker)
		svc.SetDocumentStorage(documents)
		svc.SetLogger(log)
	})

	scanner := dashboardapp.NewExpiryScanService(repos.Items, repos.Restocks, repos.Notifications)
	scanner.SetEventPublisher(bus)

	requests := procurementapp.NewLabRequestService(repos.Requests, repos.Notifications)
	requests.SetEventPublisher(bus)
	requests.SetLogger(log)

	stockHandlers := make([]*handler.StockHandler, 0)
	for _, svc := range registry.Services() {
		stockHandlers = append(stockHandlers, handler.NewStockHandler(svc))
	}
	db := &persistence.Database{DB: tdb.DB}
	handlers := router.Handlers{
		Stock:         stockHandlers,
		Dashboard:     handler.NewDashboardHandler(dashboardapp.NewDashboardService(repos.Items, repos.Restocks), scanner),
		Notifications: handler.NewNotificationHandler(notificationapp.NewNotificationService(repos.Notifications)),
		Inwards:       handler.NewInwardHandler(procurementapp.NewInwardService(repos.Inwards, repos.Items)),
		Requests:      handler.NewLabRequestHandler(requests),
		Health:        handler.NewHealthHandler(db, scheduler.New(config.SchedulerConfig{}, log), "test"),
	}

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.GET("/health", handlers.Health.Health)

	jwtConfig := middleware.DefaultJWTConfig(auth.NewJWTService(testutil.JWTConfig()))
	r := router.NewRouter(engine, router.WithMiddleware(middleware.JWTAuthMiddleware(jwtConfig)))
	router.RegisterAPI(r, handlers, router.Guards{
		Staff: middleware.RequireRoles(auth.RoleAdmin, auth.RoleLabAssistant),
		Admin: middleware.RequireRoles(auth.RoleAdmin),
	})
	r.Setup()

	tokens := testutil.NewTokens(t)
	return &TestServer{
		DB:        tdb,
		Engine:    engine,
		Registry:  registry,
		Scanner:   scanner,
		Events:    events,
		Documents: documents,
		Client:    testutil.APIClient{Handler: engine, Token: tokens.Assistant},
		Tokens:    tokens,
	}
}
