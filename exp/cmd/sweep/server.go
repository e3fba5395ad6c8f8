package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"exp/internal/config"
	"exp/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// serve runs one sweep and then serves the chart directory and /metrics until ctx ends.
func serve(ctx context.Context, cfg config.Config) error {
	reg := prometheus.NewRegistry()
	prom := metrics.NewPrometheus()
	if err := prom.Register(reg); err != nil {
		return err
	}
	page, err := runSweep(ctx, cfg, prom)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.Handle("/", http.FileServer(http.Dir(cfg.Output.Charts)))
	srv := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info().Str("addr", cfg.Metrics.Addr).Str("page", page).Msg("Serving charts and metrics")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
