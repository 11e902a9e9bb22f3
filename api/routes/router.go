package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercaline/storefront-backend/api/controllers"
	"github.com/mercaline/storefront-backend/api/middleware"
	"github.com/mercaline/storefront-backend/internal/catalog"
	checkoutsvc "github.com/mercaline/storefront-backend/internal/checkout"
	"github.com/mercaline/storefront-backend/internal/orders"
	"github.com/mercaline/storefront-backend/pkg/config"
	"github.com/mercaline/storefront-backend/pkg/db"
	"github.com/mercaline/storefront-backend/pkg/logger"
	"github.com/mercaline/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	catalogService catalog.Service,
	orderService orders.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(catalogService, logg))
			r.Get("/{itemId}", controllers.ItemDetail(catalogService, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(orderService, logg))
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/items/{itemId}", controllers.ItemCheckout(checkoutService, logg))
			r.Post("/items/{itemId}/intent", controllers.ItemIntent(checkoutService, logg))
			r.Post("/orders/{orderId}", controllers.OrderCheckout(checkoutService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateItem(catalogService, logg))
			r.Patch("/{itemId}", controllers.AdminUpdateItem(catalogService, logg))
			r.Delete("/{itemId}", controllers.AdminDeleteItem(catalogService, logg))
		})
		r.Route("/discounts", func(r chi.Router) {
			r.Get("/", controllers.AdminListDiscounts(catalogService, logg))
			r.Post("/", controllers.AdminCreateDiscount(catalogService, logg))
			r.Delete("/{discountId}", controllers.AdminDeleteDiscount(catalogService, logg))
		})
		r.Route("/taxes", func(r chi.Router) {
			r.Get("/", controllers.AdminListTaxes(catalogService, logg))
			r.Post("/", controllers.AdminCreateTax(catalogService, logg))
			r.Delete("/{taxId}", controllers.AdminDeleteTax(catalogService, logg))
		})
		r.Post("/orders", controllers.AdminCreateOrder(orderService, logg))
	})

	return r
}
