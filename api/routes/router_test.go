package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mercaline/storefront-backend/internal/catalog"
	checkoutsvc "github.com/mercaline/storefront-backend/internal/checkout"
	"github.com/mercaline/storefront-backend/internal/orders"
	"github.com/mercaline/storefront-backend/pkg/config"
	"github.com/mercaline/storefront-backend/pkg/db/models"
	"github.com/mercaline/storefront-backend/pkg/logger"
	"github.com/mercaline/storefront-backend/pkg/redis"
	"github.com/mercaline/storefront-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

// CreateItem implements [catalog.Service].
func (s stubCatalogService) CreateItem(ctx context.Context, input catalog.CreateItemInput) (*models.Item, error) {
	panic("unimplemented")
}

// UpdateItem implements [catalog.Service].
func (s stubCatalogService) UpdateItem(ctx context.Context, id uuid.UUID, input catalog.UpdateItemInput) (*models.Item, error) {
	panic("unimplemented")
}

// DeleteItem implements [catalog.Service].
func (s stubCatalogService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

// GetItem implements [catalog.Service].
func (s stubCatalogService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	panic("unimplemented")
}

func (s stubCatalogService) ListItems(ctx context.Context) ([]models.Item, error) {
	return []models.Item{}, nil
}

// CreateDiscount implements [catalog.Service].
func (s stubCatalogService) CreateDiscount(ctx context.Context, input catalog.CreateDiscountInput) (*models.Discount, error) {
	panic("unimplemented")
}

// DeleteDiscount implements [catalog.Service].
func (s stubCatalogService) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (s stubCatalogService) ListDiscounts(ctx context.Context) ([]models.Discount, error) {
	return []models.Discount{}, nil
}

// CreateTax implements [catalog.Service].
func (s stubCatalogService) CreateTax(ctx context.Context, input catalog.CreateTaxInput) (*models.Tax, error) {
	panic("unimplemented")
}

// DeleteTax implements [catalog.Service].
func (s stubCatalogService) DeleteTax(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (s stubCatalogService) ListTaxes(ctx context.Context) ([]models.Tax, error) {
	return []models.Tax{}, nil
}

type stubOrderService struct{}

// CreateOrder implements [orders.Service].
func (s stubOrderService) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

// GetOrder implements [orders.Service].
func (s stubOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*orders.OrderDetail, error) {
	panic("unimplemented")
}

func (s stubOrderService) ListOrders(ctx context.Context) ([]orders.OrderDetail, error) {
	return []orders.OrderDetail{}, nil
}

type stubCheckoutService struct{}

// CreateItemSession implements [checkout.Service].
func (s stubCheckoutService) CreateItemSession(ctx context.Context, itemID uuid.UUID, origin string) (*checkoutsvc.SessionResult, error) {
	panic("unimplemented")
}

// CreateOrderSession implements [checkout.Service].
func (s stubCheckoutService) CreateOrderSession(ctx context.Context, orderID uuid.UUID, origin string) (*checkoutsvc.SessionResult, error) {
	panic("unimplemented")
}

// CreateItemIntent implements [checkout.Service].
func (s stubCheckoutService) CreateItemIntent(ctx context.Context, itemID uuid.UUID) (*checkoutsvc.IntentResult, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(cfg *config.Config, gatherer prometheus.Gatherer) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},         // db.Pinger
		(*redis.Client)(nil), // *redis.Client
		gatherer,
		stubCatalogService{},
		stubOrderService{},
		stubCheckoutService{},
	)
}

func TestHealthLiveReportsEnvironment(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Storefront-Env"); got != "test" {
		t.Fatalf("expected env header test got %q", got)
	}
}

func TestHealthReadySkipsNilDependencies(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready probe got %d", resp.Code)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	checks := body.Data.(map[string]any)["checks"].(map[string]any)
	if checks["redis"] != "skipped" {
		t.Fatalf("expected nil redis to be skipped got %v", checks["redis"])
	}
	if checks["database"] != "up" {
		t.Fatalf("expected database up got %v", checks["database"])
	}
}

func TestPublicListRoutesRegistered(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	for _, path := range []string{"/api/v1/items", "/api/v1/orders", "/api/admin/v1/discounts", "/api/admin/v1/taxes"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route got %d", resp.Code)
	}
}

func TestMetricsRouteRegisteredWithGatherer(t *testing.T) {
	router := newTestRouter(testConfig(), prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}

	router = newTestRouter(testConfig(), nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without gatherer got %d", resp.Code)
	}
}

func TestCheckoutRouteRejectsGet(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/items/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET on checkout got %d", resp.Code)
	}
}
