package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inwardBody struct {
	InwardCode string          `json:"inward_code" binding:"required,max=5"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Email      string          `json:"email" binding:"omitempty,email"`
}

func bindInward(t *testing.T, body string) error {
	t.Helper()
	SetupValidator()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/inwards", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req inwardBody
	return c.ShouldBindJSON(&req)
}

func TestFormatValidationErrors_FieldDetails(t *testing.T) {
	err := bindInward(t, `{"inward_code":"TOO-LONG","quantity":"0","email":"nope"}`)
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-1")
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)

	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at most 5 characters", fields["inward_code"])
	assert.Equal(t, "This field is required", fields["quantity"])
	assert.Equal(t, "Invalid email format", fields["email"])
}

func TestFormatValidationErrors_DecimalPresent(t *testing.T) {
	assert.NoError(t, bindInward(t, `{"inward_code":"IN-1","quantity":"2.5"}`))
}

func TestFormatValidationErrors_Malformed(t *testing.T) {
	resp := FormatValidationErrors(errors.New("unexpected EOF"), "")
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unexpected EOF")
	assert.Empty(t, resp.Error.Details)
}

func TestHandleValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-9")
	HandleValidationError(c, errors.New("bad json"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "req-9")
	assert.True(t, c.IsAborted())
}
