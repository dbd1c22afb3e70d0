// Package app assembles the storefront process: it boots the storage
// layer, builds the HTTP handler from route callbacks, and runs the HTTP
// and gRPC listeners until shutdown.
//
//	func main() {
//	    app.New().
//	        Routes(routes.RegisterAPI).
//	        Serve(context.Background(), app.OptionsFromConfig())
//	}
//
// The process keeps serving when the database is unreachable at boot, so
// /health stays reachable and reports "degraded". A background loop keeps
// trying to reach the database and swaps in a fully wired handler once it
// answers.
package app

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/router"
)

// RouteFunc registers routes against a booted runtime.
type RouteFunc func(r *router.Router, rt *Runtime)

// Application holds the route callbacks for a storefront process.
type Application struct {
	routesFns []RouteFunc
}

// New creates an empty Application.
func New() *Application {
	return &Application{}
}

// Routes adds a route-registration callback. Callbacks run in order each
// time a handler is built.
func (a *Application) Routes(fn RouteFunc) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Router builds the router for rt without global middleware. Used by
// route:list, which must work without a database.
func (a *Application) Router(rt *Runtime) *router.Router {
	r := router.New()
	a.register(r, rt)
	return r
}

func (a *Application) register(r *router.Router, rt *Runtime) {
	for _, fn := range a.routesFns {
		fn(r, rt)
	}
}

// Handler builds the full HTTP handler for rt.
func (a *Application) Handler(rt *Runtime) http.Handler {
	return buildHandler(a, rt)
}

// Serve boots the runtime and blocks serving HTTP and gRPC until ctx is
// cancelled or the process receives SIGINT/SIGTERM.
func (a *Application) Serve(ctx context.Context, opts Options) error {
	rt, err := Boot(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := newSwapHandler(a.Handler(rt))
	if !rt.Available() {
		go rt.reconnect(ctx, opts, func(next *Runtime) {
			h.swap(a.Handler(next))
		})
	}
	return startServer(ctx, h, rt, opts)
}
