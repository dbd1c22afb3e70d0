package app

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// buildHandler installs the global middleware, then the caller's routes.
func buildHandler(a *Application, rt *Runtime) http.Handler {
	r := router.New()

	// chi requires middleware before routes. Outermost first:
	//  1. Prometheus metrics  (total latency)
	//  2. Request ID          (before anything logs)
	//  3. Logger              (request-scoped logger with request_id)
	//  4. Recovery            (panics become a 500 envelope)
	//  5. CORS
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.CORSOptionsFromConfig()))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w)
	})

	a.register(r, rt)
	return r.Handler()
}
