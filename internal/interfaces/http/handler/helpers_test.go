package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	appdashboard "github.com/labstock/backend/internal/application/dashboard"
	appnotification "github.com/labstock/backend/internal/application/notification"
	appprocurement "github.com/labstock/backend/internal/application/procurement"
	appstock "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/persistence"
	"github.com/labstock/backend/internal/infrastructure/persistence/models"
	"github.com/labstock/backend/internal/infrastructure/storage"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testUser     = "assistant@lab.edu"
	rolesHeader  = "X-Test-Roles"
	defaultRoles = auth.RoleLabAssistant
	testDocsURL  = "http://docs.test"
)

type testEnv struct {
	router *gin.Engine
	docs   *storage.MemoryDocumentStorage
}

// identity stands in for the JWT middleware: the caller is testUser with the
// comma-separated roles of the X-Test-Roles header.
func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := c.GetHeader(rolesHeader)
		if roles == "" {
			roles = defaultRoles
		}
		claims := &auth.Claims{Email: testUser, Roles: strings.Split(roles, ",")}
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTEmailKey, claims.Email)
		c.Set(middleware.JWTRolesKey, claims.Roles)
		c.Next()
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	middleware.SetupValidator()
	db := newTestDB(t)

	repos := appstock.Repositories{
		Items:         persistence.NewGormStockItemRepository(db),
		Restocks:      persistence.NewGormRestockRepository(db),
		Logs:          persistence.NewGormIssueLogRepository(db),
		Notifications: persistence.NewGormNotificationRepository(db),
		Inwards:       persistence.NewGormInwardRepository(db),
		Requests:      persistence.NewGormLabRequestRepository(db),
	}
	docs := storage.NewMemoryDocumentStorage(testDocsURL)
	registry := appstock.NewRegistry(repos, persistence.NewGormTransactionScope(db), func(s *appstock.StockService) {
		s.SetDocumentStorage(docs)
	})

	r := gin.New()
	api := r.Group("/api/v1", identity())
	for _, svc := range registry.Services() {
		registerStockRoutes(api, NewStockHandler(svc))
	}

	notifications := NewNotificationHandler(appnotification.NewNotificationService(repos.Notifications))
	api.GET("/notifications", notifications.List)
	api.DELETE("/notifications", notifications.DeleteMany)
	api.DELETE("/notifications/:id", notifications.Delete)

	inwards := NewInwardHandler(appprocurement.NewInwardService(repos.Inwards, repos.Items))
	api.POST("/inwards", inwards.Create)
	api.GET("/inwards", inwards.List)
	api.GET("/inwards/:id", inwards.Get)

	requests := NewLabRequestHandler(appprocurement.NewLabRequestService(repos.Requests, repos.Notifications))
	api.POST("/requests", requests.Create)
	api.GET("/requests", requests.List)
	api.GET("/requests/:id", requests.Get)
	api.PATCH("/requests/:id/review", requests.Review)

	dashboard := NewDashboardHandler(
		appdashboard.NewDashboardService(repos.Items, repos.Restocks),
		appdashboard.NewExpiryScanService(repos.Items, repos.Restocks, repos.Notifications),
	)
	api.GET("/dashboard", dashboard.Summary)
	api.POST("/dashboard/expiry-scan", dashboard.Scan)

	return &testEnv{router: r, docs: docs}
}

func registerStockRoutes(api *gin.RouterGroup, h *StockHandler) {
	desc := h.Descriptor()
	g := api.Group("/" + string(desc.Category))
	g.POST("/register", h.Register)
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/restock", h.Restock)
	g.GET("/restocks", h.ListRestocks)
	g.PATCH("/restock/:id", h.UpdateRestock)
	g.DELETE("/restock/:id", h.DeleteRestock)
	g.POST("/register-log", h.Issue)
	g.GET("/logs", h.ListLogs)
	g.PATCH("/logs/:id", h.UpdateLog)
	g.DELETE("/logs/:id", h.DeleteLog)
	if desc.IsReturnable {
		g.PATCH("/return-log/:id", h.Return)
	}
	if desc.RequiresHazardData {
		g.POST("/:id/msds", h.UploadMSDS)
		g.GET("/:id/msds", h.MSDSLink)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, path, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and its data into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	if out != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w, nil)
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}

func registerItem(t *testing.T, e *testEnv, category stock.Category, body map[string]any) appstock.ItemResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/"+string(category)+"/register", withRequiredFields(category, body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item appstock.ItemResponse
	decode(t, w, &item)
	return item
}

// withRequiredFields fills the unit and hazard fields a case does not care about.
func withRequiredFields(category stock.Category, body map[string]any) map[string]any {
	desc := stock.MustDescriptor(category)
	out := make(map[string]any, len(body)+2)
	if category != stock.CategoryBooks {
		out["unit_of_measure"] = "pcs"
	}
	if desc.RequiresHazardData {
		out["cas_no"] = "000-00-0"
	}
	for k, v := range body {
		out[k] = v
	}
	return out
}

type failingPinger struct{ err error }

func (p failingPinger) Ping(context.Context) error { return p.err }

var errDown = errors.New("connection refused")
