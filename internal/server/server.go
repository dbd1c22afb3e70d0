// Package server owns the listen and shutdown lifecycle of the storefront
// process: one HTTP listener and one gRPC listener, stopped together.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	grpcserver "github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Config describes what to serve and where.
type Config struct {
	HTTPAddr string
	// GRPCAddr may be empty to skip the gRPC listener.
	GRPCAddr string
	Handler  http.Handler
	Ready    func(context.Context) bool
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then drains
// in-flight requests.
func Run(ctx context.Context, cfg Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", cfg.HTTPAddr, err)
	}
	return serve(ctx, lis, cfg)
}

func serve(ctx context.Context, lis net.Listener, cfg Config) error {
	srv := &http.Server{
		Handler:           cfg.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if cfg.GRPCAddr != "" {
		gs, err := grpcserver.Start(cfg.GRPCAddr, cfg.Ready)
		if err != nil {
			_ = lis.Close()
			return err
		}
		defer grpcserver.Stop(gs)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
