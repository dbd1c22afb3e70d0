package app

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/shashiranjanraj/storefront/internal/server"
)

// startServer hands the built handler to internal/server, which owns the
// listen and shutdown lifecycle.
func startServer(ctx context.Context, h http.Handler, rt *Runtime, opts Options) error {
	return server.Run(ctx, server.Config{
		HTTPAddr: opts.HTTPAddr,
		GRPCAddr: opts.GRPCAddr,
		Handler:  h,
		Ready:    rt.Ready,
	})
}

// swapHandler serves through whichever handler was installed last.
type swapHandler struct {
	cur atomic.Pointer[http.Handler]
}

func newSwapHandler(h http.Handler) *swapHandler {
	s := &swapHandler{}
	s.swap(h)
	return s
}

func (s *swapHandler) swap(h http.Handler) { s.cur.Store(&h) }

func (s *swapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.cur.Load()).ServeHTTP(w, r)
}
