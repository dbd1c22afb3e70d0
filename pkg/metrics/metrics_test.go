package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/17", nil))

	body := scrape(t)
	assert.Contains(t, body, `route="/api/orders/{id}"`)
	assert.Contains(t, body, `status="418"`)
	assert.NotContains(t, body, `/api/orders/17`)
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	metrics.StockClamped.Inc()
	metrics.OrdersCreated.Inc()

	body := scrape(t)
	assert.Contains(t, body, "storefront_inventory_stock_clamped_total")
	assert.Contains(t, body, "storefront_orders_created_total")
}
