package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-api/internal/core/domain"
	"github.com/sweetshop/inventory-api/internal/core/ports"
)

// stubAuth resolves "admin-token" and "user-token" to fixed accounts.
type stubAuth struct{}

func (stubAuth) Register(_ context.Context, in ports.RegisterInput) (string, *domain.User, error) {
	return "user-token", &domain.User{ID: "u2", Username: in.Username, Role: domain.RoleUser}, nil
}

func (stubAuth) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, domain.ErrInvalidCredentials
}

func (stubAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	switch token {
	case "admin-token":
		return &domain.User{ID: "u1", Username: "admin", Role: domain.RoleAdmin}, nil
	case "user-token":
		return &domain.User{ID: "u2", Username: "alice", Role: domain.RoleUser}, nil
	default:
		return nil, domain.ErrInvalidToken
	}
}

// memProducts is a minimal in-memory ProductService.
type memProducts struct {
	mu    sync.Mutex
	items map[string]*domain.Product
}

func newMemProducts() *memProducts {
	return &memProducts{items: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "Gummy Bears", Category: domain.CategoryCandy, Price: 2.5, Quantity: 10},
	}}
}

func (m *memProducts) List(context.Context, ports.ListProductsInput) (*ports.ListProductsResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := &ports.ListProductsResult{}
	for _, p := range m.items {
		clone := *p
		res.Items = append(res.Items, &clone)
	}
	res.Count = len(res.Items)
	return res, nil
}

func (m *memProducts) Get(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memProducts) Create(_ context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &domain.Product{ID: "p" + string(rune('0'+len(m.items)+1)), Name: in.Name, Category: domain.Category(in.Category), Price: *in.Price}
	m.items[p.ID] = p
	return p, nil
}

func (m *memProducts) Update(context.Context, string, ports.UpdateProductInput) (*domain.Product, error) {
	return nil, errors.New("not implemented")
}

func (m *memProducts) Delete(context.Context, string) (*domain.Product, error) {
	return nil, errors.New("not implemented")
}

func (m *memProducts) Purchase(_ context.Context, id string, quantity int) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if !p.CanPurchase(quantity) {
		return nil, domain.NewInsufficientStockError(p.Quantity)
	}
	p.Quantity -= quantity
	clone := *p
	return &clone, nil
}

func (m *memProducts) Restock(context.Context, string, int) (*domain.Product, error) {
	return nil, errors.New("not implemented")
}

func newTestRouter(products *memProducts, reg *prometheus.Registry) *echo.Echo {
	return NewRouter(Deps{
		AuthService:    stubAuth{},
		ProductService: products,
		Logger:         zerolog.Nop(),
		Registry:       reg,
	})
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_CreateRequiresAdmin(t *testing.T) {
	products := newMemProducts()
	e := newTestRouter(products, nil)
	body := `{"name":"Fudge","category":"candy","price":3}`

	if rec := do(e, http.MethodPost, "/products", "", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/products", "user-token", body); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", rec.Code)
	}
	if len(products.items) != 1 {
		t.Fatalf("inventory must be unchanged, got %d items", len(products.items))
	}

	rec := do(e, http.MethodPost, "/products", "admin-token", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_InvalidTokenMessage(t *testing.T) {
	e := newTestRouter(newMemProducts(), nil)

	rec := do(e, http.MethodGet, "/auth/me", "garbage", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "Invalid token." {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestRouter_PublicListAndGet(t *testing.T) {
	e := newTestRouter(newMemProducts(), nil)

	if rec := do(e, http.MethodGet, "/products", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/products/p1", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/products/missing", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get missing: expected 404, got %d", rec.Code)
	}
}

func TestRouter_PurchaseFlow(t *testing.T) {
	products := newMemProducts()
	e := newTestRouter(products, nil)

	if rec := do(e, http.MethodPost, "/products/p1/purchase", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous purchase: expected 401, got %d", rec.Code)
	}

	rec := do(e, http.MethodPost, "/products/p1/purchase", "user-token", `{"quantity":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("purchase: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/products/p1/purchase", "user-token", `{"quantity":100}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversell: expected 400, got %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["available"] != float64(8) {
		t.Fatalf("expected available=8, got %v", body)
	}
	if products.items["p1"].Quantity != 8 {
		t.Fatalf("expected stock 8, got %d", products.items["p1"].Quantity)
	}
}

func TestRouter_RestockRequiresAdmin(t *testing.T) {
	e := newTestRouter(newMemProducts(), nil)

	if rec := do(e, http.MethodPost, "/products/p1/restock", "user-token", `{"quantity":5}`); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newTestRouter(newMemProducts(), reg)

	if rec := do(e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}

	do(e, http.MethodPost, "/products/p1/purchase", "user-token", "")
	rec := do(e, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sweetshop_purchases_total") {
		t.Fatalf("expected business metric in output")
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	e := newTestRouter(newMemProducts(), nil)

	if rec := do(e, http.MethodGet, "/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
