package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-core/internal/analytics"
	"github.com/tair/pos-core/internal/cart"
	"github.com/tair/pos-core/internal/catalog"
	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/internal/inventory"
	"github.com/tair/pos-core/internal/notification"
	"github.com/tair/pos-core/internal/scanner"
	"github.com/tair/pos-core/internal/staff"
	"github.com/tair/pos-core/internal/store"
	"github.com/tair/pos-core/pkg/auth"
)

type brokenMirror struct{}

func (brokenMirror) Name() string                                       { return "broken" }
func (brokenMirror) UpsertProduct(context.Context, domain.Product) error { return errors.New("down") }
func (brokenMirror) DeleteProduct(context.Context, int64) error          { return errors.New("down") }
func (brokenMirror) InsertOrder(context.Context, domain.Order) error     { return errors.New("down") }
func (brokenMirror) InsertExpense(context.Context, domain.Expense) error { return errors.New("down") }
func (brokenMirror) DeleteExpense(context.Context, int64) error          { return errors.New("down") }

var testNow = time.Date(2024, 10, 15, 9, 5, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	store   *store.Store
}

func newTestServer(t *testing.T, mirrors ...store.Mirror) *testServer {
	t.Helper()
	auth.Configure("test-secret", time.Hour)

	s := store.New(store.Config{
		Mirrors:  mirrors,
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
	})
	s.Seed([]domain.Product{
		{ID: 101, Name: "Cola", SKU: "690123456789", Price: 3.00, Cost: 1.80, Stock: 10, AlertThreshold: 5, Category: domain.CategoryDrinks},
		{ID: 102, Name: "Water", SKU: "690123456790", Price: 2.00, Cost: 0.80, Stock: 1, AlertThreshold: 5, Category: domain.CategoryDrinks},
	}, nil)

	accounts := staff.NewMemoryRepository()
	_, err := staff.EnsureAccounts(context.Background(), accounts, staff.Defaults("admin-pass", "cashier-pass"))
	require.NoError(t, err)

	device := scanner.NewDevice(nil)
	h := NewHandler(
		catalog.NewCommandHandlers(s),
		catalog.NewQueryHandlers(s),
		staff.NewLoginHandler(accounts),
		cart.NewService(s, device, nil),
		inventory.NewReconciler(s, device, nil),
		analytics.NewEngine(s),
		notification.NewBuilder(s, notification.NewInbox(s, 0), nil, 0),
		s,
		NewMemoryLimiter(3, time.Minute),
	)
	return &testServer{handler: h.Router(), store: s}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var resp Response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec, resp := ts.do(t, "POST", "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := resp.Data.(map[string]interface{})
	return data["token"].(string)
}

// decodeData re-encodes the generic response payload into a typed value
func decodeData(t *testing.T, resp Response, dst interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	token := ts.login(t, "admin", "admin-pass")
	assert.NotEmpty(t, token)

	rec, resp := ts.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)

	rec, _ = ts.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin", "password": "admin-pass"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec, _ = ts.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin", "password": "admin-pass"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestAuthorization(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, "GET", "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = ts.do(t, "GET", "/api/products", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cashier := ts.login(t, "cashier", "cashier-pass")
	rec, _ = ts.do(t, "GET", "/api/products", cashier, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp := ts.do(t, "POST", "/api/products", cashier, map[string]interface{}{"name": "Tea", "price": 4})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", resp.Error)
}

func TestProductLifecycle(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", "admin-pass")

	rec, resp := ts.do(t, "POST", "/api/products", admin, map[string]interface{}{
		"name":     "Green tea",
		"sku":      "690000000001",
		"price":    4.5,
		"cost":     2,
		"stock":    12,
		"category": "drinks",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Product
	decodeData(t, resp, &created)
	assert.Equal(t, "Green tea", created.Name)
	assert.Equal(t, 12, created.Stock)

	rec, _ = ts.do(t, "POST", "/api/products", admin, map[string]interface{}{"name": "Copy", "sku": "690000000001", "price": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = ts.do(t, "POST", "/api/products", admin, map[string]interface{}{"name": "", "price": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = ts.do(t, "GET", "/api/products/lookup?code=690000000001", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found domain.Product
	decodeData(t, resp, &found)
	assert.Equal(t, created.ID, found.ID)

	rec, _ = ts.do(t, "GET", "/api/products/999999", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = ts.do(t, "PUT", "/api/products/999999", admin, map[string]interface{}{"name": "Ghost"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No such product, nothing updated", resp.Message)
}

func TestCheckoutFlow(t *testing.T) {
	ts := newTestServer(t)
	cashier := ts.login(t, "cashier", "cashier-pass")

	rec, resp := ts.do(t, "POST", "/api/carts", cashier, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var view cart.View
	decodeData(t, resp, &view)
	base := "/api/carts/" + view.ID.String()

	rec, _ = ts.do(t, "POST", base+"/lines", cashier, map[string]interface{}{"product_id": 101})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, resp = ts.do(t, "POST", base+"/scan", cashier, map[string]interface{}{"code": "690123456789"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var scanned struct {
		Scan cart.ScanResult `json:"scan"`
		Cart cart.View       `json:"cart"`
	}
	decodeData(t, resp, &scanned)
	assert.True(t, scanned.Scan.Matched)
	require.Len(t, scanned.Cart.Lines, 1)
	assert.Equal(t, 2, scanned.Cart.Lines[0].Quantity)

	rec, _ = ts.do(t, "POST", base+"/checkout", cashier, map[string]string{"payment_method": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = ts.do(t, "POST", base+"/checkout", cashier, map[string]string{"payment_method": "wechat"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, resp.Warning)
	var order domain.Order
	decodeData(t, resp, &order)
	assert.InDelta(t, 6.0, order.Amount, 1e-9)
	assert.Equal(t, domain.PaymentWeChat, order.PaymentMethod)

	cola, ok := ts.store.Product(101)
	require.True(t, ok)
	assert.Equal(t, 8, cola.Stock)

	rec, _ = ts.do(t, "GET", "/api/orders/"+order.ID[1:], cashier, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = ts.do(t, "GET", "/api/reports/today", cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var today analytics.DailyStat
	decodeData(t, resp, &today)
	assert.Equal(t, "2024-10-15", today.Date)
	assert.InDelta(t, 6.0, today.Sales, 1e-9)
	assert.InDelta(t, 2.4, today.Profit, 1e-9)
	assert.Equal(t, 1, today.OrderCount)
}

func TestCheckoutShortage(t *testing.T) {
	ts := newTestServer(t)
	cashier := ts.login(t, "cashier", "cashier-pass")

	openWithWater := func() string {
		_, resp := ts.do(t, "POST", "/api/carts", cashier, nil)
		var view cart.View
		decodeData(t, resp, &view)
		base := "/api/carts/" + view.ID.String()
		rec, _ := ts.do(t, "POST", base+"/lines", cashier, map[string]interface{}{"product_id": 102})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return base
	}
	first := openWithWater()
	second := openWithWater()

	rec, _ := ts.do(t, "POST", first+"/checkout", cashier, map[string]string{"payment_method": "cash"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := ts.do(t, "POST", second+"/checkout", cashier, map[string]string{"payment_method": "cash"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var shortages []store.StockShortage
	decodeData(t, resp, &shortages)
	require.Len(t, shortages, 1)
	assert.Equal(t, int64(102), shortages[0].ProductID)
	assert.Equal(t, 0, shortages[0].Available)
}

func TestMirrorFailureIsAWarning(t *testing.T) {
	ts := newTestServer(t, brokenMirror{})
	admin := ts.login(t, "admin", "admin-pass")

	rec, resp := ts.do(t, "POST", "/api/expenses", admin, map[string]interface{}{
		"name":     "October rent",
		"amount":   20,
		"category": "rent",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Warning)
	assert.Len(t, ts.store.Expenses(), 1)

	rec, resp = ts.do(t, "GET", "/api/admin/sync", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp.Warning)
}

func TestNotificationsFeed(t *testing.T) {
	ts := newTestServer(t)
	cashier := ts.login(t, "cashier", "cashier-pass")

	rec, resp := ts.do(t, "GET", "/api/notifications", cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var feed notification.Feed
	decodeData(t, resp, &feed)
	require.Equal(t, 1, feed.Total)
	assert.Equal(t, 1, feed.Unread)

	rec, _ = ts.do(t, "GET", "/api/notifications?filter=bogus", cashier, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = ts.do(t, "POST", "/api/notifications/read-all", cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"marked": float64(1)}, resp.Data)

	_, resp = ts.do(t, "GET", "/api/notifications", cashier, nil)
	decodeData(t, resp, &feed)
	assert.Equal(t, 0, feed.Unread)
}

func TestReportValidation(t *testing.T) {
	ts := newTestServer(t)
	cashier := ts.login(t, "cashier", "cashier-pass")

	rec, _ := ts.do(t, "GET", "/api/reports/range?start=2024-10-20&end=2024-10-01", cashier, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.do(t, "GET", "/api/reports/calendar?mode=decade", cashier, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := ts.do(t, "GET", "/api/reports/calendar?mode=month&date=2024-10-01", cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view analytics.CalendarView
	decodeData(t, resp, &view)
	assert.Len(t, view.Days, 31)
}

func TestRestockRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", "admin-pass")
	body := map[string]interface{}{"quantity": 3, "total_cost": 5.40}

	rec, resp := ts.do(t, "POST", "/api/products/99999999999999999999/restock", admin, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid product ID", resp.Error)

	rec, _ = ts.do(t, "GET", "/api/products/99999999999999999999", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.do(t, "DELETE", "/api/expenses/99999999999999999999", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.do(t, "POST", "/api/products/101/restock", admin,
		map[string]interface{}{"quantity": math.MaxInt, "total_cost": 5.40})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, ts.store.Expenses())
	p, _ := ts.store.Product(101)
	assert.Equal(t, 10, p.Stock)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rec, resp := ts.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	h := NewHandler(nil, nil, nil, nil, nil, nil, nil, nil, nil)
	h.AddHealthCheck("postgres", func(context.Context) error { return errors.New("connection refused") })
	rec = httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecoveryAndRequestID(t *testing.T) {
	panicking := RequestIDMiddleware(RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	panicking.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-Id", "till-7")
	rec = httptest.NewRecorder()
	panicking.ServeHTTP(rec, req)
	assert.Equal(t, "till-7", rec.Header().Get("X-Request-Id"))
}
