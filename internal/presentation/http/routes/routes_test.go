package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/masterstock-api/internal/application/service"
	"github.com/sangkips/masterstock-api/internal/config"
	"github.com/sangkips/masterstock-api/internal/infrastructure/memory"
	"github.com/sangkips/masterstock-api/internal/presentation/http/handler"
	"github.com/sangkips/masterstock-api/internal/presentation/http/middleware"
	"github.com/sangkips/masterstock-api/pkg/metrics"
	"github.com/sangkips/masterstock-api/pkg/printer"
	"github.com/sangkips/masterstock-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	spool  *bytes.Buffer
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func newTestServer(t *testing.T, limits middleware.RateLimiterConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zaptest.NewLogger(t)
	m := metrics.New("test")
	catalog := memory.NewCatalogStore()
	ledger := memory.NewSaleLedger()
	users := memory.NewUserRepository()
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	userService := service.NewUserService(users, log)
	require.NoError(t, userService.EnsureUsers(context.Background(), []service.SeedUser{
		{Username: "Easytech", Password: "easytech123", IsSuperAdmin: true},
		{Username: "cashier1", Password: "cashier123"},
	}))

	authService := service.NewAuthService(users, jwtManager, log)
	catalogService := service.NewCatalogService(catalog, log, m)
	salesService := service.NewSalesService(catalog, ledger, utils.NewSaleIDGenerator(time.Now), time.Now, "Main Street Store", log, m)

	spool := &bytes.Buffer{}
	printerService := service.NewPrinterService(printer.NewWriterPrinter(spool), printer.TypeFile, printer.Width58mm, log)
	receiptService := service.NewReceiptService(catalog, ledger, printerService, service.ReceiptOptions{
		StoreName:    "EASYTECH MASTER STOCK",
		ReturnPolicy: "Return Policy: Items can be returned within 30 days with receipt.",
	}, false, log, m)

	limiter := middleware.NewUserRateLimiter(limits)
	t.Cleanup(limiter.Stop)

	router := Setup(&Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Product: handler.NewProductHandler(catalogService),
		Cart:    handler.NewCartHandler(salesService, receiptService),
		Sale:    handler.NewSaleHandler(salesService, receiptService),
		User:    handler.NewUserHandler(userService, authService),
		System:  handler.NewSystemHandler(service.NewSystemService(catalog, ledger, salesService, log, m)),
		Printer: handler.NewPrinterHandler(printerService),
	}, &Deps{
		JWTManager:      jwtManager,
		Cfg:             &config.Config{App: config.AppConfig{Name: "masterstock-test"}},
		IdempotencyRepo: memory.NewIdempotencyRepository(),
		RateLimiter:     limiter,
		Metrics:         m,
		Logger:          log,
	})

	return &testServer{t: t, router: router, spool: spool}
}

func (s *testServer) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(s.t, w, &data)
	return data.AccessToken
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func generousLimits() middleware.RateLimiterConfig {
	return middleware.RateLimiterConfigFor(1000, 1)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, generousLimits())

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "masterstock-test")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAuthGuards(t *testing.T) {
	s := newTestServer(t, generousLimits())

	w := s.do(http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "cashier1", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", decodeEnvelope(t, w).Message)

	cashier := s.login("cashier1", "cashier123")
	w = s.do(http.MethodPost, "/api/v1/products", cashier, map[string]interface{}{"name": "Cable", "price": "10", "quantity": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/admin/reset", cashier, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/profile", cashier, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"cashier1"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t, generousLimits())
	admin := s.login("Easytech", "easytech123")
	cashier := s.login("cashier1", "cashier123")

	w := s.do(http.MethodPost, "/api/v1/products", admin, map[string]interface{}{"name": "Cable", "price": "10", "quantity": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &product)

	w = s.do(http.MethodPost, "/api/v1/cart/items", cashier, map[string]string{"product_id": product.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/v1/cart/items/"+product.ID, cashier, map[string]int{"quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPut, "/api/v1/cart/discount", cashier, map[string]string{"amount": "5"})
	require.Equal(t, http.StatusOK, w.Code)

	var cart service.CartSummary
	decodeData(t, w, &cart)
	assert.Equal(t, "20", cart.Subtotal.String())
	assert.Equal(t, "15", cart.Total.String())

	w = s.do(http.MethodPost, "/api/v1/cart/checkout", cashier, nil, "Idempotency-Key", "k-0")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "insufficient payment", decodeEnvelope(t, w).Message)

	w = s.do(http.MethodPut, "/api/v1/cart/payment", cashier, map[string]string{"amount": "20"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/cart/checkout", cashier, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "checkout requires an idempotency key")

	first := s.do(http.MethodPost, "/api/v1/cart/checkout", cashier, nil, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	var result struct {
		Sale struct {
			ID      string `json:"id"`
			Total   string `json:"total"`
			Change  string `json:"change"`
			Cashier string `json:"cashier"`
		} `json:"sale"`
		Receipt struct {
			Text string `json:"text"`
		} `json:"receipt"`
	}
	decodeData(t, first, &result)
	assert.True(t, strings.HasPrefix(result.Sale.ID, "SALE-"))
	assert.Equal(t, "15", result.Sale.Total)
	assert.Equal(t, "5", result.Sale.Change)
	assert.Equal(t, "cashier1", result.Sale.Cashier)
	assert.Contains(t, result.Receipt.Text, "EASYTECH MASTER STOCK")

	replay := s.do(http.MethodPost, "/api/v1/cart/checkout", cashier, nil, "Idempotency-Key", "k-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, first.Body.String(), replay.Body.String())

	w = s.do(http.MethodGet, "/api/v1/sales", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	decodeData(t, w, &page)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Pagination.Total)

	w = s.do(http.MethodGet, "/api/v1/products/"+product.ID, cashier, nil)
	assert.Contains(t, w.Body.String(), `"quantity":3`)

	w = s.do(http.MethodGet, "/api/v1/sales/"+result.Sale.ID+"/receipt/pdf", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=sales_ticket_"+result.Sale.ID+".pdf", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w = s.do(http.MethodPost, "/api/v1/sales/"+result.Sale.ID+"/receipt/print", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"printed":true`)
	assert.Contains(t, s.spool.String(), result.Sale.ID)

	w = s.do(http.MethodGet, "/api/v1/sales/SALE-0/receipt", cashier, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectOutOfStockProduct(t *testing.T) {
	s := newTestServer(t, generousLimits())
	admin := s.login("Easytech", "easytech123")

	w := s.do(http.MethodPost, "/api/v1/products", admin, map[string]interface{}{"name": "Hub", "price": "20", "quantity": 0})
	require.Equal(t, http.StatusCreated, w.Code)
	var product struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &product)

	w = s.do(http.MethodPost, "/api/v1/cart/items", admin, map[string]string{"product_id": product.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/products", admin, map[string]interface{}{"name": "", "price": "-1", "quantity": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, decodeEnvelope(t, w).Errors)
}

func TestAdminUsers(t *testing.T) {
	s := newTestServer(t, generousLimits())
	admin := s.login("Easytech", "easytech123")

	w := s.do(http.MethodPost, "/api/v1/admin/users", admin, map[string]interface{}{"username": "", "password": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "please fill in all fields", decodeEnvelope(t, w).Message)

	w = s.do(http.MethodPost, "/api/v1/admin/users", admin, map[string]interface{}{"username": "cashier1", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/admin/users", admin, map[string]interface{}{"username": "cashier2", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	var user struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &user)

	w = s.do(http.MethodDelete, "/api/v1/admin/users/"+user.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/admin/users/not-a-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/v1/admin/super-admin/password", admin, map[string]string{"new_password": "a", "confirm_password": "b"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "passwords do not match", decodeEnvelope(t, w).Message)
}

func TestRateLimitPerUser(t *testing.T) {
	s := newTestServer(t, middleware.RateLimiterConfigFor(1, 60))
	cashier := s.login("cashier1", "cashier123")

	w := s.do(http.MethodGet, "/api/v1/cart", cashier, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/cart", cashier, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestPrinterRoutes(t *testing.T) {
	s := newTestServer(t, generousLimits())
	admin := s.login("Easytech", "easytech123")
	cashier := s.login("cashier1", "cashier123")

	w := s.do(http.MethodGet, "/api/v1/printer/status", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"file"`)

	w = s.do(http.MethodPost, "/api/v1/printer/test", cashier, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/printer/test", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"printed":true`)
	assert.Contains(t, s.spool.String(), "PRINTER TEST")
}
