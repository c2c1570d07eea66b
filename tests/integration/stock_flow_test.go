package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appnotification "github.com/labstock/backend/internal/application/notification"
	appprocurement "github.com/labstock/backend/internal/application/procurement"
	appstock "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format(time.DateOnly)
}

func (s *TestServer) register(t *testing.T, category stock.Category, body map[string]any) appstock.ItemResponse {
	t.Helper()
	w := s.Client.Do(t, http.MethodPost, "/api/v1/"+string(category)+"/register", withRequiredFields(category, body))
	testutil.RequireStatus(t, w, http.StatusCreated)
	var item appstock.ItemResponse
	testutil.Decode(t, w, &item)
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

func (s *TestServer) inward(t *testing.T, category stock.Category, item appstock.ItemResponse, code string, qty int) appprocurement.InwardResponse {
	t.Helper()
	w := s.Client.Do(t, http.MethodPost, "/api/v1/inwards", map[string]any{
		"inward_code": code,
		"class":       string(category),
		"item":        item.ID,
		"quantity":    qty,
		"unit":        "pcs",
		"vendor":      "Northwind Scientific",
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
	var inward appprocurement.InwardResponse
	testutil.Decode(t, w, &inward)
	return inward
}

func (s *TestServer) restock(t *testing.T, category stock.Category, body map[string]any) appstock.MutationResponse {
	t.Helper()
	w := s.Client.Do(t, http.MethodPost, "/api/v1/"+string(category)+"/restock", body)
	testutil.RequireStatus(t, w, http.StatusCreated)
	var result appstock.MutationResponse
	testutil.Decode(t, w, &result)
	return result
}

func (s *TestServer) issue(t *testing.T, category stock.Category, item appstock.ItemResponse, qty int) appstock.MutationResponse {
	t.Helper()
	w := s.Client.Do(t, http.MethodPost, "/api/v1/"+string(category)+"/register-log", map[string]any{
		"item_id":         item.ID,
		"issued_quantity": qty,
		"date_issued":     day(0),
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
	var result appstock.MutationResponse
	testutil.Decode(t, w, &result)
	return result
}

func (s *TestServer) notifications(t *testing.T, token string, query string) []appnotification.NotificationResponse {
	t.Helper()
	w := s.Client.As(token).Do(t, http.MethodGet, "/api/v1/notifications"+query, nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	var out []appnotification.NotificationResponse
	testutil.Decode(t, w, &out)
	return out
}

func types(ns []appnotification.NotificationResponse) []stock.NotificationType {
	out := make([]stock.NotificationType, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Type)
	}
	return out
}

func TestAuthentication(t *testing.T) {
	s := NewTestServer(t)

	t.Run("health needs no token", func(t *testing.T) {
		w := s.Client.As("").Do(t, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("api rejects anonymous callers", func(t *testing.T) {
		w := s.Client.As("").Do(t, http.MethodGet, "/api/v1/chemicals", nil)
		testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_INVALID")
	})

	t.Run("faculty reads but cannot register", func(t *testing.T) {
		faculty := s.Client.As(s.Tokens.Faculty)
		w := faculty.Do(t, http.MethodGet, "/api/v1/chemicals", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = faculty.Do(t, http.MethodPost, "/api/v1/chemicals/register", map[string]any{"item_name": "Acetone"})
		testutil.AssertErrorCode(t, w, http.StatusForbidden, "FORBIDDEN")
	})
}

func TestChemicalLifecycle(t *testing.T) {
	s := NewTestServer(t)

	item := s.register(t, stock.CategoryChemicals, map[string]any{
		"item_name":       "Acetone",
		"company":         "Merck",
		"cas_no":          "67-64-1",
		"min_stock_level": 10,
	})
	assert.Equal(t, "ACE-1001", item.ItemCode)
	assert.Equal(t, stock.StatusOutOfStock, item.Status)
	assert.True(t, item.CurrentQuantity.IsZero())
	assert.Empty(t, s.notifications(t, s.Tokens.Admin, ""), "registration creates no notifications")

	second := s.register(t, stock.CategoryChemicals, map[string]any{"item_name": "acetic acid"})
	assert.Equal(t, "ACE-1002", second.ItemCode)

	inward := s.inward(t, stock.CategoryChemicals, item, "INW-CHEM-1", 25)
	restocked := s.restock(t, stock.CategoryChemicals, map[string]any{
		"item_id":               item.ID,
		"inward_id":             inward.ID,
		"quantity_purchased":    25,
		"expiration_date":       day(180),
		"expiration_alert_date": day(150),
		"location":              "Cabinet A",
	})
	assert.True(t, restocked.Item.CurrentQuantity.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, stock.StatusInStock, restocked.Item.Status)
	assert.True(t, restocked.StockRecoveryNotificationSent)
	assert.ElementsMatch(t, []stock.NotificationType{stock.NotificationStockRecovered},
		types(s.notifications(t, s.Tokens.Admin, "")))

	issued := s.issue(t, stock.CategoryChemicals, item, 20)
	assert.Equal(t, stock.StatusLowStock, issued.Item.Status)
	assert.Equal(t, "assistant@lab.edu", issued.Log.UserEmail)
	assert.ElementsMatch(t, []stock.NotificationType{stock.NotificationLowStock},
		types(s.notifications(t, s.Tokens.Admin, "")))

	t.Run("faculty sees no stock alerts", func(t *testing.T) {
		assert.Empty(t, s.notifications(t, s.Tokens.Faculty, ""))
	})

	t.Run("overdraw is rejected", func(t *testing.T) {
		w := s.Client.Do(t, http.MethodPost, "/api/v1/chemicals/register-log", map[string]any{
			"item_id":         item.ID,
			"issued_quantity": 6,
			"date_issued":     day(0),
		})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "INSUFFICIENT_STOCK")
	})

	t.Run("issue everything left", func(t *testing.T) {
		out := s.issue(t, stock.CategoryChemicals, item, 5)
		assert.Equal(t, stock.StatusOutOfStock, out.Item.Status)
		assert.Contains(t, types(s.notifications(t, s.Tokens.Admin, "")), stock.NotificationOutOfStock)
	})

	t.Run("deleting the last log restores quantity", func(t *testing.T) {
		w := s.Client.Do(t, http.MethodGet, "/api/v1/chemicals/logs?item_code=ACE-1001", nil)
		testutil.RequireStatus(t, w, http.StatusOK)
		var logs []appstock.IssueLogResponse
		resp := testutil.Decode(t, w, &logs)
		require.Len(t, logs, 2)
		assert.Equal(t, int64(2), resp.Meta.Total)

		var five appstock.IssueLogResponse
		for _, l := range logs {
			if l.IssuedQuantity.Equal(decimal.NewFromInt(5)) {
				five = l
			}
		}
		w = s.Client.Do(t, http.MethodDelete, "/api/v1/chemicals/logs/"+five.ID.String(), nil)
		testutil.RequireStatus(t, w, http.StatusOK)
		var result appstock.MutationResponse
		testutil.Decode(t, w, &result)
		assert.True(t, result.Item.CurrentQuantity.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, stock.StatusLowStock, result.Item.Status)
	})

	t.Run("events reach subscribers", func(t *testing.T) {
		assert.Len(t, s.Events.OfType(stock.EventTypeStockItemRegistered), 2)
		assert.NotEmpty(t, s.Events.OfType(stock.EventTypeStockLevelChanged))
		assert.NotEmpty(t, s.Events.OfType(stock.EventTypeStockNotificationCreated))
	})

	t.Run("delete removes the item", func(t *testing.T) {
		w := s.Client.Do(t, http.MethodDelete, "/api/v1/chemicals/"+item.ID.String(), nil)
		testutil.RequireStatus(t, w, http.StatusOK)

		w = s.Client.Do(t, http.MethodGet, "/api/v1/chemicals/"+item.ID.String(), nil)
		testutil.AssertErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
	})
}

func TestEquipmentReturns(t *testing.T) {
	s := NewTestServer(t)

	item := s.register(t, stock.CategoryEquipments, map[string]any{
		"item_name":       "Centrifuge",
		"serial_number":   "SN-CEN-00042",
		"min_stock_level": 1,
	})
	inward := s.inward(t, stock.CategoryEquipments, item, "INW-EQ-1", 4)
	s.restock(t, stock.CategoryEquipments, map[string]any{
		"item_id":             item.ID,
		"inward_id":           inward.ID,
		"quantity_purchased":  4,
		"maintenance_date":    day(90),
		"maintenance_details": "Rotor inspection",
	})
	issued := s.issue(t, stock.CategoryEquipments, item, 3)
	require.NotNil(t, issued.Log)
	returnPath := "/api/v1/equipments/return-log/" + issued.Log.ID.String()

	t.Run("returned and lost must add up to issued", func(t *testing.T) {
		w := s.Client.Do(t, http.MethodPatch, returnPath, map[string]any{
			"returned_quantity":        1,
			"lost_or_damaged_quantity": 1,
			"date_returned":            day(0),
		})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "QUANTITY_MISMATCH")
	})

	t.Run("return puts the good units back", func(t *testing.T) {
		w := s.Client.Do(t, http.MethodPatch, returnPath, map[string]any{
			"returned_quantity":        2,
			"lost_or_damaged_quantity": 1,
			"date_returned":            day(0),
		})
		testutil.RequireStatus(t, w, http.StatusOK)
		var result appstock.MutationResponse
		testutil.Decode(t, w, &result)
		assert.True(t, result.Item.CurrentQuantity.Equal(decimal.NewFromInt(3)), result.Item.CurrentQuantity.String())
		assert.True(t, result.Log.ReturnedQuantity.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, stock.StatusInStock, result.Item.Status)
	})

	t.Run("chemicals have no return route", func(t *testing.T) {
		w := s.Client.Do(t, http.MethodPatch, "/api/v1/chemicals/return-log/"+issued.Log.ID.String(), map[string]any{})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRestockRequiresMatchingInward(t *testing.T) {
	s := NewTestServer(t)

	item := s.register(t, stock.CategoryConsumables, map[string]any{"item_name": "Nitrile Gloves"})
	other := s.register(t, stock.CategoryConsumables, map[string]any{"item_name": "Filter Paper"})

	w := s.Client.Do(t, http.MethodPost, "/api/v1/consumables/restock", map[string]any{
		"item_id":            item.ID,
		"quantity_purchased": 10,
	})
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "INVALID_INWARD")

	inward := s.inward(t, stock.CategoryConsumables, other, "INW-CON-1", 10)
	t.Run("duplicate inward code", func(t *testing.T) {
		w := s.Client.Do(t, http.MethodPost, "/api/v1/inwards", map[string]any{
			"inward_code": "INW-CON-1",
			"class":       "consumables",
			"item":        item.ID,
			"quantity":    1,
			"unit":        "box",
			"vendor":      "Acme",
		})
		testutil.AssertErrorCode(t, w, http.StatusConflict, "ALREADY_EXISTS")
	})

	result := s.restock(t, stock.CategoryConsumables, map[string]any{
		"item_code":          other.ItemCode,
		"inward_code":        inward.InwardCode,
		"quantity_purchased": 10,
	})
	assert.Equal(t, other.ID, result.Item.ID)
	assert.Equal(t, inward.ID, result.Restock.InwardID)
}

func TestExpiryScan(t *testing.T) {
	s := NewTestServer(t)

	item := s.register(t, stock.CategoryChemicals, map[string]any{"item_name": "Ethanol", "min_stock_level": 1})
	inward := s.inward(t, stock.CategoryChemicals, item, "INW-ETH-1", 10)
	s.restock(t, stock.CategoryChemicals, map[string]any{
		"item_id":               item.ID,
		"inward_id":             inward.ID,
		"quantity_purchased":    10,
		"expiration_date":       day(10),
		"expiration_alert_date": day(-1),
	})

	w := s.Client.Do(t, http.MethodPost, "/api/v1/dashboard/expiry-scan", nil)
	testutil.AssertErrorCode(t, w, http.StatusForbidden, "FORBIDDEN")

	admin := s.Client.As(s.Tokens.Admin)
	for range 2 {
		w = admin.Do(t, http.MethodPost, "/api/v1/dashboard/expiry-scan", nil)
		testutil.RequireStatus(t, w, http.StatusOK)
	}

	notes := s.notifications(t, s.Tokens.Admin, "?notification_type=near_expiry")
	require.Len(t, notes, 1, "repeated scans keep one notification per restock")
	assert.Equal(t, item.ID, notes[0].ItemID)

	w = admin.Do(t, http.MethodGet, "/api/v1/dashboard", nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	var summary struct {
		NearExpiryCount int64 `json:"near_expiry_count"`
		TotalCount      int64 `json:"total_count"`
	}
	testutil.Decode(t, w, &summary)
	assert.Equal(t, int64(1), summary.NearExpiryCount)
	assert.Equal(t, int64(1), summary.TotalCount)
}

func TestLabRequestCodesAreSequential(t *testing.T) {
	s := NewTestServer(t)
	faculty := s.Client.As(s.Tokens.Faculty)

	prefix := "REQ-" + time.Now().Format("200601") + "-"
	for i := 1; i <= 3; i++ {
		w := faculty.Do(t, http.MethodPost, "/api/v1/requests", map[string]any{
			"model":               "Requisition",
			"purpose":             "Practical class",
			"date_of_requirement": day(7),
		})
		testutil.RequireStatus(t, w, http.StatusCreated)
		var req appprocurement.LabRequestResponse
		testutil.Decode(t, w, &req)
		assert.Equal(t, fmt.Sprintf("%s%03d", prefix, i), req.Code)
		assert.Equal(t, "faculty@lab.edu", req.RequestedBy)
	}
}

func TestLabRequestWorkflow(t *testing.T) {
	s := NewTestServer(t)
	faculty := s.Client.As(s.Tokens.Faculty)
	admin := s.Client.As(s.Tokens.Admin)

	item := s.register(t, stock.CategoryGlasswares, map[string]any{
		"item_name":       "Burette 50ml",
		"total_quantity":  6,
		"min_stock_level": 1,
	})

	w := faculty.Do(t, http.MethodPost, "/api/v1/requests", map[string]any{
		"model":               "Requisition",
		"purpose":             "Titration practical",
		"date_of_requirement": day(3),
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
	var request appprocurement.LabRequestResponse
	testutil.Decode(t, w, &request)

	issue := func() *httptest.ResponseRecorder {
		return s.Client.Do(t, http.MethodPost, "/api/v1/glasswares/register-log", map[string]any{
			"item_id":         item.ID,
			"issued_quantity": 2,
			"request_model":   "Requisition",
			"request":         request.ID,
			"date_issued":     day(0),
		})
	}
	review := "/api/v1/requests/" + request.ID.String() + "/review"

	testutil.AssertErrorCode(t, issue(), http.StatusBadRequest, "INVALID_STATE")
	testutil.AssertErrorCode(t, faculty.Do(t, http.MethodPatch, review, map[string]any{"status": "Approved"}), http.StatusForbidden, "FORBIDDEN")

	w = admin.Do(t, http.MethodPatch, review, map[string]any{"status": "Approved", "remark": "Stock available"})
	testutil.RequireStatus(t, w, http.StatusOK)

	w = issue()
	testutil.RequireStatus(t, w, http.StatusCreated)

	w = faculty.Do(t, http.MethodGet, "/api/v1/requests/"+request.ID.String(), nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	var stored appprocurement.LabRequestResponse
	testutil.Decode(t, w, &stored)
	assert.Equal(t, procurement.RequestIssued, stored.Status)
	assert.Equal(t, "Stock available", stored.Remark)

	notes := s.notifications(t, s.Tokens.Faculty, "")
	assert.ElementsMatch(t, []stock.NotificationType{stock.NotificationRequestApproved, stock.NotificationRequestIssued}, types(notes))

	var workflow int
	for _, e := range s.Events.OfType(stock.EventTypeStockNotificationCreated) {
		if e.AggregateType() == stock.AggregateTypeLabRequest {
			workflow++
		}
	}
	assert.Equal(t, 2, workflow)
}
