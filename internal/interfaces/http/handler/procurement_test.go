package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	appnotification "github.com/labstock/backend/internal/application/notification"
	appprocurement "github.com/labstock/backend/internal/application/procurement"
	appstock "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createInward(t *testing.T, e *testEnv, category stock.Category, item appstock.ItemResponse, code string) appprocurement.InwardResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/inwards", map[string]any{
		"inward_code": code,
		"class":       string(category),
		"item":        item.ID,
		"quantity":    5,
		"unit":        "L",
		"vendor":      "Sigma Supplies",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var inward appprocurement.InwardResponse
	decode(t, w, &inward)
	return inward
}

func TestInwardHandler(t *testing.T) {
	e := newTestEnv(t)
	item := registerItem(t, e, stock.CategoryChemicals, map[string]any{"item_name": "Methanol"})

	inward := createInward(t, e, stock.CategoryChemicals, item, "INW-001")
	assert.Equal(t, testUser, inward.CreatedBy)
	assert.Equal(t, item.ID, inward.ItemID)

	t.Run("duplicate code conflicts", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/api/v1/inwards", map[string]any{
			"inward_code": "INW-001",
			"class":       "chemicals",
			"item":        item.ID,
			"quantity":    1,
			"unit":        "L",
			"vendor":      "Other",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ALREADY_EXISTS", errorCode(t, w))
	})

	t.Run("item must belong to the class", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/api/v1/inwards", map[string]any{
			"inward_code": "INW-002",
			"class":       "books",
			"item":        item.ID,
			"quantity":    1,
			"unit":        "pcs",
			"vendor":      "Other",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("get and list", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/v1/inwards/"+inward.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = e.do(t, http.MethodGet, "/api/v1/inwards?vendor=sigma", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var inwards []appprocurement.InwardResponse
		resp := decode(t, w, &inwards)
		assert.Len(t, inwards, 1)
		assert.Equal(t, int64(1), resp.Meta.Total)

		w = e.do(t, http.MethodGet, "/api/v1/inwards/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLabRequestHandler(t *testing.T) {
	e := newTestEnv(t)
	month := time.Now().Format("200601")

	w := e.do(t, http.MethodPost, "/api/v1/requests", map[string]any{
		"model":               "requisition",
		"purpose":             "Titration practical",
		"date_of_requirement": "2026-12-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first appprocurement.LabRequestResponse
	decode(t, w, &first)
	assert.Equal(t, "REQ-"+month+"-001", first.Code)
	assert.Equal(t, testUser, first.RequestedBy)

	w = e.do(t, http.MethodPost, "/api/v1/requests", map[string]any{
		"model":               "Requisition",
		"purpose":             "Second batch",
		"date_of_requirement": "2026-12-02",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var second appprocurement.LabRequestResponse
	decode(t, w, &second)
	assert.Equal(t, "REQ-"+month+"-002", second.Code)

	w = e.do(t, http.MethodGet, "/api/v1/requests/"+first.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/requests", map[string]any{
		"model":               "wishlist",
		"purpose":             "x",
		"date_of_requirement": "2026-12-02",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST_MODEL", errorCode(t, w))
}

func createRequest(t *testing.T, e *testEnv, model string) appprocurement.LabRequestResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/requests", map[string]any{
		"model":               model,
		"purpose":             "Course",
		"date_of_requirement": "2026-04-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var request appprocurement.LabRequestResponse
	decode(t, w, &request)
	return request
}

func reviewRequest(t *testing.T, e *testEnv, id uuid.UUID, status string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPatch, "/api/v1/requests/"+id.String()+"/review",
		map[string]any{"status": status}, rolesHeader, auth.RoleAdmin)
}

func TestLabRequestHandler_Review(t *testing.T) {
	e := newTestEnv(t)
	approved := createRequest(t, e, "Requisition")
	rejected := createRequest(t, e, "OrderRequest")

	w := reviewRequest(t, e, approved.ID, "Approved")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp appprocurement.LabRequestResponse
	decode(t, w, &resp)
	assert.Equal(t, procurement.RequestApproved, resp.Status)
	assert.Equal(t, testUser, resp.ReviewedBy)

	w = reviewRequest(t, e, rejected.ID, "rejected")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	t.Run("a decided request stays decided", func(t *testing.T) {
		w := reviewRequest(t, e, approved.ID, "Rejected")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_STATE", errorCode(t, w))
	})

	t.Run("issued is not a review decision", func(t *testing.T) {
		w := reviewRequest(t, e, createRequest(t, e, "NewIndent").ID, "Issued")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_STATUS", errorCode(t, w))
	})

	t.Run("faculty see the decisions", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/v1/notifications", nil, rolesHeader, auth.RoleFaculty)
		require.Equal(t, http.StatusOK, w.Code)
		var inbox []appnotification.NotificationResponse
		decode(t, w, &inbox)
		types := make([]stock.NotificationType, 0, len(inbox))
		for _, n := range inbox {
			types = append(types, n.Type)
		}
		assert.ElementsMatch(t, []stock.NotificationType{stock.NotificationRequestApproved, stock.NotificationRequestRejected}, types)
	})

	t.Run("list by status", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/v1/requests?status=approved", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var list []appprocurement.LabRequestResponse
		resp := decode(t, w, &list)
		require.Len(t, list, 1)
		assert.Equal(t, approved.ID, list[0].ID)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})
}

func TestIssueAgainstLabRequest(t *testing.T) {
	e := newTestEnv(t)
	item := registerItem(t, e, stock.CategoryBooks, map[string]any{"item_name": "Lab Manual", "total_quantity": 4})
	issue := func(model string, requestID uuid.UUID) *httptest.ResponseRecorder {
		return e.do(t, http.MethodPost, "/api/v1/books/register-log", map[string]any{
			"item_id":         item.ID,
			"issued_quantity": 1,
			"request_model":   model,
			"request":         requestID,
			"date_issued":     "2026-03-01",
		})
	}

	w := issue("Requisition", uuid.New())
	assert.Equal(t, http.StatusNotFound, w.Code, "an unknown request is rejected")

	request := createRequest(t, e, "Requisition")

	w = issue("Requisition", request.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code, "a pending request is not issuable")
	assert.Equal(t, "INVALID_STATE", errorCode(t, w))

	require.Equal(t, http.StatusOK, reviewRequest(t, e, request.ID, "Approved").Code)

	w = issue("NewIndent", request.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code, "the request model must match the request")
	assert.Equal(t, "INVALID_REQUEST_MODEL", errorCode(t, w))

	w = issue("Requisition", request.ID)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/v1/requests/"+request.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored appprocurement.LabRequestResponse
	decode(t, w, &stored)
	assert.Equal(t, procurement.RequestIssued, stored.Status)

	w = e.do(t, http.MethodGet, "/api/v1/books/logs", nil)
	var logs []appstock.IssueLogResponse
	decode(t, w, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, request.Code, logs[0].RequestCode)

	w = e.do(t, http.MethodGet, "/api/v1/notifications?notification_type=request_issued", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var inbox []appnotification.NotificationResponse
	decode(t, w, &inbox)
	require.Len(t, inbox, 1)
	assert.Equal(t, request.ID, inbox[0].ItemID)
}
