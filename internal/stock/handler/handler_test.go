package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/events"
	"github.com/labstock/labstock-backend/internal/stock/handler"
	"github.com/labstock/labstock-backend/internal/stock/service"
	"github.com/labstock/labstock-backend/pkg/config"
	"github.com/labstock/labstock-backend/pkg/httputil"
	"github.com/labstock/labstock-backend/pkg/logger"
	"github.com/labstock/labstock-backend/pkg/testutil"
)

var now = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

var labelColumns = []string{"label_id", "batch_id", "tick", "loaded", "unloaded", "status"}

type apiResponse struct {
	Success bool               `json:"success"`
	Error   *httputil.ErrorBody `json:"error"`
}

func newRouter(t *testing.T) (http.Handler, *testutil.MockDB, *events.Bus) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	bus := events.NewBus(nil)
	cfg := config.StockConfig{ExpiringDays: 30, AnalysisDays: 30, RequestPrefix: "RQ", DeletePolicy: config.DeleteDraftOnly}
	engine := service.NewEngine(service.NewStores(mockDB.Wrapped()), bus, cfg, logger.Nop(),
		service.WithClock(func() time.Time { return now }))

	r := chi.NewRouter()
	r.Route("/api/v1/stock", func(r chi.Router) {
		handler.Routes(r, engine, nil, logger.Nop())
	})
	return r, mockDB, bus
}

func TestUnload_Success(t *testing.T) {
	router, mockDB, bus := newRouter(t)

	var unloaded []events.LabelUnloadedEvent
	events.On(bus, func(ctx context.Context, ev events.LabelUnloadedEvent) error {
		unloaded = append(unloaded, ev)
		return nil
	})

	mockDB.ExpectQuery("FROM labels WHERE label_id = $1").WithArgs(5).
		WillReturnRows(testutil.MockRows(labelColumns...).AddRow(5, 2, "000000000005", now.AddDate(0, 0, -3), nil, 1))
	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE labels SET status = $1, unloaded = $2 WHERE label_id = $3 AND status = $4").
		WithArgs(0, testutil.AnyTime{}, 5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("FROM batches WHERE batch_id = $1").WithArgs(2).
		WillReturnRows(testutil.MockRows("batch_id", "package_id", "lot", "expiration", "status").
			AddRow(2, 9, "L-77", now.AddDate(0, 6, 0), 1))
	mockDB.ExpectCommit()

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/stock/labels/5/unload", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var body struct {
		Data domain.Label `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &body)
	assert.Equal(t, domain.LabelUsed, body.Data.Status)
	require.NotNil(t, body.Data.Unloaded)

	require.Len(t, unloaded, 1)
	assert.Equal(t, int64(9), unloaded[0].PackageID)
	mockDB.ExpectationsWereMet(t)
}

func TestUnload_ErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"already unloaded", 0, domain.CodeLabelUnloaded},
		{"cancelled", -1, domain.CodeLabelCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockDB, _ := newRouter(t)
			mockDB.ExpectQuery("FROM labels WHERE label_id = $1").WithArgs(5).
				WillReturnRows(testutil.MockRows(labelColumns...).AddRow(5, 2, "000000000005", now, now, tt.status))

			rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/stock/labels/5/unload", nil))
			testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)

			var body apiResponse
			testutil.ParseJSONBody(t, rr, &body)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestGetByTick_NotFound(t *testing.T) {
	router, mockDB, _ := newRouter(t)
	mockDB.ExpectQuery("FROM labels WHERE tick = $1").WithArgs("NOPE").
		WillReturnRows(testutil.MockRows(labelColumns...))

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/stock/labels/tick/NOPE", nil))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestRequestEndpoints_RejectBeforeStore(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{
			name:   "unknown status filter",
			method: http.MethodGet,
			path:   "/api/v1/stock/requests?status=archived",
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
		{
			name:   "zero quantity",
			method: http.MethodPost,
			path:   "/api/v1/stock/requests/1/items",
			body:   map[string]interface{}{"package_id": 3, "quantity": 0},
			status: http.StatusUnprocessableEntity,
			code:   domain.CodeQuantityInvalid,
		},
		{
			name:   "missing package",
			method: http.MethodPost,
			path:   "/api/v1/stock/requests/1/items",
			body:   map[string]interface{}{"quantity": 2},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "invalid path id",
			method: http.MethodGet,
			path:   "/api/v1/stock/requests/abc",
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
		{
			name:   "cancel without note",
			method: http.MethodPost,
			path:   "/api/v1/stock/requests/1/items/4/cancel",
			body:   map[string]interface{}{"note": "  "},
			status: http.StatusUnprocessableEntity,
			code:   domain.CodeNoteRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockDB, _ := newRouter(t)

			rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(tt.method, tt.path, tt.body))
			testutil.AssertStatus(t, rr, tt.status)

			var body apiResponse
			testutil.ParseJSONBody(t, rr, &body)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestCatalogEndpoints_ValidateRecords(t *testing.T) {
	validPackage := func(overrides map[string]interface{}) map[string]interface{} {
		body := map[string]interface{}{
			"product_id": 1, "supplier_id": 2, "packaging": "box", "ordering": 0,
			"pieces_per_label": 1, "labels_per_unit": 1, "reorder": 0, "price": "4.20",
		}
		for k, v := range overrides {
			body[k] = v
		}
		return body
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		fields []string
	}{
		{
			name:   "blank product reference",
			method: http.MethodPost,
			path:   "/api/v1/stock/products",
			body:   map[string]interface{}{"reference": "  ", "description": "Ethanol"},
			fields: []string{"reference"},
		},
		{
			name:   "package counts",
			method: http.MethodPost,
			path:   "/api/v1/stock/packages",
			body:   validPackage(map[string]interface{}{"pieces_per_label": 0, "labels_per_unit": 0, "reorder": -1}),
			fields: []string{"pieces_per_label", "labels_per_unit", "reorder"},
		},
		{
			name:   "negative price",
			method: http.MethodPost,
			path:   "/api/v1/stock/packages",
			body:   validPackage(map[string]interface{}{"price": "-2.50"}),
			fields: []string{"price"},
		},
		{
			name:   "unknown ordering",
			method: http.MethodPut,
			path:   "/api/v1/stock/packages/4",
			body:   validPackage(map[string]interface{}{"ordering": 3}),
			fields: []string{"ordering"},
		},
		{
			name:   "package without product",
			method: http.MethodPost,
			path:   "/api/v1/stock/packages",
			body:   validPackage(map[string]interface{}{"product_id": 0}),
			fields: []string{"product_id"},
		},
		{
			name:   "blank category",
			method: http.MethodPut,
			path:   "/api/v1/stock/categories/3",
			body:   map[string]interface{}{"description": ""},
			fields: []string{"description"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockDB, _ := newRouter(t)

			rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(tt.method, tt.path, tt.body))
			testutil.AssertStatus(t, rr, http.StatusBadRequest)

			var body apiResponse
			testutil.ParseJSONBody(t, rr, &body)
			require.NotNil(t, body.Error)
			assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
			for _, field := range tt.fields {
				assert.Contains(t, body.Error.Details, field)
			}
			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestCatalogEndpoints_CreateProduct(t *testing.T) {
	router, mockDB, _ := newRouter(t)

	mockDB.ExpectQuery("INSERT INTO products (reference, description, enable) VALUES ($1, $2, $3) RETURNING product_id").
		WithArgs("ETOH-96", "Ethanol 96%", true).
		WillReturnRows(testutil.MockRows("product_id").AddRow(12))

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/stock/products",
		map[string]interface{}{"reference": "ETOH-96", "description": "Ethanol 96%", "enable": true}))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var body struct {
		Data domain.Product `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &body)
	assert.Equal(t, int64(12), body.Data.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestRecordDelivery_InputErrors(t *testing.T) {
	future := now.AddDate(1, 0, 0)
	tests := []struct {
		name string
		body map[string]interface{}
		code string
	}{
		{
			name: "no batch",
			body: map[string]interface{}{"item_id": 1, "quantity": 2},
			code: domain.CodeBatchRequired,
		},
		{
			name: "both batches",
			body: map[string]interface{}{
				"item_id": 1, "quantity": 2, "batch_id": 4,
				"new_batch": map[string]interface{}{"lot": "L1", "expiration": future},
			},
			code: domain.CodeBatchAmbiguous,
		},
		{
			name: "expired new batch",
			body: map[string]interface{}{
				"item_id": 1, "quantity": 2,
				"new_batch": map[string]interface{}{"lot": "L1", "expiration": now.AddDate(0, 0, -1)},
			},
			code: domain.CodeExpirationNotFuture,
		},
		{
			name: "expired date-only batch",
			body: map[string]interface{}{
				"item_id": 1, "quantity": 2,
				"new_batch": map[string]interface{}{"lot": "L1", "expiration": "2020-01-01"},
			},
			code: domain.CodeExpirationNotFuture,
		},
		{
			name: "zero labels",
			body: map[string]interface{}{"item_id": 1, "quantity": 2, "batch_id": 4, "label_count": 0},
			code: domain.CodeLabelCountInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockDB, _ := newRouter(t)

			rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/stock/deliveries", tt.body))
			testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)

			var body apiResponse
			testutil.ParseJSONBody(t, rr, &body)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestRecordDelivery_MalformedDates(t *testing.T) {
	bodies := map[string]map[string]interface{}{
		"expiration": {
			"item_id": 1, "quantity": 2,
			"new_batch": map[string]interface{}{"lot": "L1", "expiration": "01/01/2030"},
		},
		"delivered": {"item_id": 1, "quantity": 2, "batch_id": 4, "delivered": "yesterday"},
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			router, mockDB, _ := newRouter(t)

			rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/stock/deliveries", body))
			testutil.AssertStatus(t, rr, http.StatusBadRequest)
			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestAnalysis_WindowErrors(t *testing.T) {
	router, _, _ := newRouter(t)

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/stock/analysis/abc?from=2026-03-10&to=2026-03-01", nil))
	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
	testutil.AssertBodyContains(t, rr, domain.CodeWindowInvalid)

	rr = testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/stock/analysis/fefo?from=2026-03-01", nil))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/stock/analysis/abc?days=-3", nil))
	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
}

func TestAnalysis_ABC(t *testing.T) {
	router, mockDB, _ := newRouter(t)

	mockDB.ExpectQuery("SELECT p.package_id, COUNT(l.label_id) AS unloaded").
		WillReturnRows(testutil.MockRows("package_id", "unloaded").
			AddRow(1, 50).AddRow(2, 30).AddRow(3, 15).AddRow(4, 5))

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/stock/analysis/abc?days=30", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var body struct {
		Data struct {
			Packages []struct {
				PackageID int64  `json:"package_id"`
				Class     string `json:"class"`
			} `json:"packages"`
		} `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &body)
	require.Len(t, body.Data.Packages, 4)

	classes := make([]string, 0, 4)
	for _, p := range body.Data.Packages {
		classes = append(classes, p.Class)
	}
	assert.Equal(t, []string{"A", "A", "B", "C"}, classes)
}

func TestStock_ExpiringRejectsNegativeDays(t *testing.T) {
	router, _, _ := newRouter(t)

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/stock/stock/expiring?days=-1", nil))
	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
	testutil.AssertBodyContains(t, rr, domain.CodeWindowInvalid)
}

func TestLoadLabels_TickWithCount(t *testing.T) {
	router, _, _ := newRouter(t)

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/stock/batches/3/labels",
		map[string]interface{}{"tick": "PRINTED-1", "count": 3}))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestLoadLabels_ReservedTick(t *testing.T) {
	router, mockDB, _ := newRouter(t)

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/stock/batches/3/labels",
		map[string]interface{}{"tick": "000000000007"}))
	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
	testutil.AssertBodyContains(t, rr, domain.CodeTickReserved)
	mockDB.ExpectationsWereMet(t)
}
