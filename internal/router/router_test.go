package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/leafcart/internal/config"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testJWTSecret = "router-test-secret"

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type routerTestEnv struct {
	engine *gin.Engine
	db     *gorm.DB
	c      *provider.Container
}

func setupRouterTest(t *testing.T) *routerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		UserJWT:  config.JWTConfig{SecretKey: testJWTSecret},
		Order:    config.OrderConfig{OrderNoNode: 2},
		Currency: config.CurrencyConfig{Base: "RUB", Supported: []string{"RUB", "USD", "EUR"}},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	c, err := provider.NewContainer(cfg, db)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(c.Close)

	return &routerTestEnv{engine: SetupRouter(cfg, c), db: db, c: c}
}

func (e *routerTestEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, LoyaltyLevel: "Bronze"}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (e *routerTestEnv) createProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{Name: name, Price: models.MoneyFromInt(price), IsActive: true}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := e.c.InventoryService.EnsureRecord(product.ID, stock, 0); err != nil {
		t.Fatalf("create inventory failed: %v", err)
	}
	return product
}

func signToken(t *testing.T, userID uint, role string) string {
	t.Helper()
	claims := UserClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

func (e *routerTestEnv) do(t *testing.T, method, path, token string, body interface{}, headers map[string]string) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func checkoutBody(promo string) map[string]interface{} {
	return map[string]interface{}{
		"delivery": map[string]interface{}{
			"method":         "standard",
			"recipient_name": "Anna",
			"phone":          "+70000000000",
			"address":        "Lenina 1",
			"city":           "Moscow",
		},
		"promo_code": promo,
	}
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	env := setupRouterTest(t)
	user := env.createUser(t, "http-buyer@example.com")
	product := env.createProduct(t, "Sencha", 225, 5)
	token := signToken(t, user.ID, "customer")

	resp := env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	}, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("add cart item failed: %d %s", resp.StatusCode, resp.Msg)
	}

	headers := map[string]string{"Idempotency-Key": "http-flow-1"}
	resp = env.do(t, http.MethodPost, "/api/v1/orders", token, checkoutBody(""), headers)
	if resp.StatusCode != 0 {
		t.Fatalf("create order failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var order models.Order
	if err := json.Unmarshal(resp.Data, &order); err != nil {
		t.Fatalf("decode order failed: %v", err)
	}
	if order.Total.String() != "325.00" {
		t.Fatalf("total want 325.00 got %s", order.Total.String())
	}

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), token, nil, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("get order failed: %d %s", resp.StatusCode, resp.Msg)
	}

	other := env.createUser(t, "stranger@example.com")
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), signToken(t, other.ID, "customer"), nil, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("foreign order should be 404, got %d", resp.StatusCode)
	}
}

func TestCreateOrderOutOfStockReturnsConflict(t *testing.T) {
	env := setupRouterTest(t)
	user := env.createUser(t, "conflict@example.com")
	product := env.createProduct(t, "Matcha", 300, 2)
	token := signToken(t, user.ID, "customer")

	env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product_id": product.ID,
		"quantity":   3,
	}, nil)

	headers := map[string]string{"Idempotency-Key": "conflict-1"}
	resp := env.do(t, http.MethodPost, "/api/v1/orders", token, checkoutBody(""), headers)
	if resp.StatusCode != 409 {
		t.Fatalf("status_code want 409 got %d", resp.StatusCode)
	}
	if resp.Msg != "Product Matcha is out of stock" {
		t.Fatalf("unexpected message: %s", resp.Msg)
	}
}

func TestCreateOrderUnknownPromoReturnsConflict(t *testing.T) {
	env := setupRouterTest(t)
	user := env.createUser(t, "promo@example.com")
	product := env.createProduct(t, "Oolong", 500, 2)
	token := signToken(t, user.ID, "customer")

	env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	}, nil)

	headers := map[string]string{"Idempotency-Key": "promo-1"}
	resp := env.do(t, http.MethodPost, "/api/v1/orders", token, checkoutBody("NOPE"), headers)
	if resp.StatusCode != 409 {
		t.Fatalf("status_code want 409 got %d", resp.StatusCode)
	}
	if resp.Msg != "Promo code not found" {
		t.Fatalf("unexpected message: %s", resp.Msg)
	}
}

func TestCreateOrderWithoutIdempotencyKeyIsRejected(t *testing.T) {
	env := setupRouterTest(t)
	user := env.createUser(t, "nokey@example.com")
	product := env.createProduct(t, "Sencha", 225, 5)
	token := signToken(t, user.ID, "customer")

	env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	}, nil)

	resp := env.do(t, http.MethodPost, "/api/v1/orders", token, checkoutBody(""), nil)
	if resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}
	if resp.Msg != "idempotency key is required" {
		t.Fatalf("unexpected message: %s", resp.Msg)
	}
	var count int64
	if err := env.db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected request should not create an order, got %d", count)
	}
}

func TestUserRoutesRequireToken(t *testing.T) {
	env := setupRouterTest(t)

	resp := env.do(t, http.MethodGet, "/api/v1/cart", "", nil, nil)
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodGet, "/api/v1/cart", "not-a-jwt", nil, nil)
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func TestAdminRoutesEnforceRoles(t *testing.T) {
	env := setupRouterTest(t)
	product := env.createProduct(t, "Puer", 900, 4)

	customer := signToken(t, 10, "customer")
	resp := env.do(t, http.MethodGet, "/api/v1/admin/orders", customer, nil, nil)
	if resp.StatusCode != 403 {
		t.Fatalf("customer should be forbidden, got %d", resp.StatusCode)
	}

	auditor := signToken(t, 11, "readonly_auditor")
	resp = env.do(t, http.MethodGet, "/api/v1/admin/orders", auditor, nil, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("auditor should read orders, got %d %s", resp.StatusCode, resp.Msg)
	}
	adjustPath := fmt.Sprintf("/api/v1/admin/inventory/%d/adjust", product.ID)
	resp = env.do(t, http.MethodPost, adjustPath, auditor, map[string]interface{}{"delta": 3}, nil)
	if resp.StatusCode != 403 {
		t.Fatalf("auditor should not adjust stock, got %d", resp.StatusCode)
	}

	manager := signToken(t, 12, "inventory_manager")
	resp = env.do(t, http.MethodPost, adjustPath, manager, map[string]interface{}{"delta": 3, "change_type": "restock"}, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("inventory manager adjust failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var inv models.Inventory
	if err := json.Unmarshal(resp.Data, &inv); err != nil {
		t.Fatalf("decode inventory failed: %v", err)
	}
	if inv.Quantity != 7 {
		t.Fatalf("quantity want 7 got %d", inv.Quantity)
	}

	admin := signToken(t, 13, "admin")
	resp = env.do(t, http.MethodPost, "/api/v1/admin/promo-codes", admin, map[string]interface{}{
		"code":           "spring10",
		"discount_type":  "percentage",
		"discount_value": "10",
	}, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("admin create promo failed: %d %s", resp.StatusCode, resp.Msg)
	}
	resp = env.do(t, http.MethodPost, "/api/v1/admin/promo-codes", admin, map[string]interface{}{
		"code":           "SPRING10",
		"discount_type":  "percentage",
		"discount_value": "10",
	}, nil)
	if resp.StatusCode != 409 {
		t.Fatalf("duplicate promo want 409 got %d", resp.StatusCode)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	env := setupRouterTest(t)

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status want 200 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status want 200 got %d", w.Code)
	}
}

func TestMain(m *testing.M) {
	logger.L = zap.NewNop()
	os.Exit(m.Run())
}
