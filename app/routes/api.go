// Package routes wires the storefront's HTTP surface onto the router.
package routes

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// RegisterAPI mounts /health, /metrics, the /api resources and, for the
// local disk, the uploaded images.
func RegisterAPI(r *router.Router, rt *app.Runtime) {
	uploadDir := config.UploadDir()
	catalog := services.NewCatalog(rt.DB, rt.Disk, rt.Cache, services.CatalogOptions{
		UploadDir:      uploadDir,
		MaxUploadBytes: config.UploadMaxBytes(),
		CacheTTL:       config.ProductCacheTTL(),
	})
	orders := services.NewOrders(rt.DB, rt.Cache)

	health := controllers.NewHealthController(rt.Ready)
	products := controllers.NewProductController(catalog, config.UploadMaxBytes())
	orderCtrl := controllers.NewOrderController(orders)

	r.Get("/health", "health", ctx.Wrap(health.Show))
	r.Get("/metrics", "metrics", metrics.Handler())

	if local, ok := rt.Disk.(*storage.LocalDisk); ok {
		dir := filepath.Join(local.Root(), uploadDir)
		r.Handle("/"+uploadDir+"/*", http.StripPrefix("/"+uploadDir+"/", http.FileServer(http.Dir(dir))))
	}

	writes := middleware.NewRateLimiter(config.WriteRateLimit(), time.Minute).Handler
	api := r.Group("/api", middleware.RequireStorage(rt.Available))

	api.Get("/products", "products.index", ctx.Wrap(products.Index))
	api.Post("/products", "products.store", ctx.Wrap(products.Store), writes)
	api.Get("/products/{id}", "products.show", ctx.Wrap(products.Show))
	api.Put("/products/{id}", "products.update", ctx.Wrap(products.Update), writes)
	api.Delete("/products/{id}", "products.destroy", ctx.Wrap(products.Destroy), writes)

	api.Get("/orders", "orders.index", ctx.Wrap(orderCtrl.Index))
	api.Post("/orders", "orders.store", ctx.Wrap(orderCtrl.Store), writes)
	api.Get("/orders/number/{number}", "orders.by_number", ctx.Wrap(orderCtrl.ShowByNumber))
	api.Get("/orders/{id}", "orders.show", ctx.Wrap(orderCtrl.Show))
	api.Patch("/orders/{id}/status", "orders.status", ctx.Wrap(orderCtrl.UpdateStatus), writes)
	api.Delete("/orders/{id}", "orders.destroy", ctx.Wrap(orderCtrl.Destroy), writes)
}
