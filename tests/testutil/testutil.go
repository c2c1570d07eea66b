// Package testutil provides helpers shared by the integration suites: a sqlmock-backed
// GORM handle, bearer tokens for each lab role and polling assertions for
// asynchronous event handlers.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test identities.
const (
	AdminEmail     = "admin@lab.edu"
	AssistantEmail = "assistant@lab.edu"
	FacultyEmail   = "faculty@lab.edu"
)

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-dialect GORM handle over sqlmock. It is closed on cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() { _ = mockDB.Close() })
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// JWTConfig returns the signing settings shared by Tokens and the server under test.
func JWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                "integration-test-secret-at-least-32-bytes",
		Issuer:                "labstock-test",
		AccessTokenExpiration: time.Hour,
	}
}

// Tokens holds a bearer token per lab role.
type Tokens struct {
	Admin     string
	Assistant string
	Faculty   string
}

// NewTokens signs one token per role with JWTConfig.
func NewTokens(t *testing.T) Tokens {
	t.Helper()
	svc := auth.NewJWTService(JWTConfig())
	sign := func(email string, role string) string {
		token, _, err := svc.GenerateToken(email, email, []string{role})
		require.NoError(t, err)
		return token
	}
	return Tokens{
		Admin:     sign(AdminEmail, auth.RoleAdmin),
		Assistant: sign(AssistantEmail, auth.RoleLabAssistant),
		Faculty:   sign(FacultyEmail, auth.RoleFaculty),
	}
}

// RequireEventually polls condition until it holds or timeout passes.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}
	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}
