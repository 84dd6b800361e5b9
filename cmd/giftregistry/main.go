package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/giftregistry/internal/auth"
	"github.com/mmynk/giftregistry/internal/config"
	"github.com/mmynk/giftregistry/internal/metrics"
	"github.com/mmynk/giftregistry/internal/repository"
	"github.com/mmynk/giftregistry/internal/storage"
	"github.com/mmynk/giftregistry/internal/storage/postgres"
	"github.com/mmynk/giftregistry/internal/storage/sqlite"
	"github.com/mmynk/giftregistry/pkg/logging"
)

// app is what the bootstrap hands to outer layers (transport, jobs); main
// itself only reads the pool and registry.
type app struct {
	pool          *storage.Pool
	repos         *repository.Set
	authenticator *auth.PasswordAuthenticator
	registry      *prometheus.Registry
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Connecting to database...")
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer a.pool.Close()
	slog.Info("Database migrations completed successfully", "dialect", a.pool.Dialect().Name())

	if cfg.MetricsAddr == "" {
		slog.Info("Gift registry storage ready")
		return
	}

	if err := serveMetrics(ctx, cfg.MetricsAddr, a.registry); err != nil {
		slog.Error("Metrics server failed", "error", err)
		os.Exit(1)
	}
}

// newApp opens the pool DATABASE_URL points at and builds the repositories.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	pool, err := openPool(ctx, cfg.DatabaseURL, cfg.PoolOptions())
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterPool(reg, pool.DB(), pool.Dialect().Name())

	repos := repository.NewSet(pool,
		repository.WithLogger(logger),
		repository.WithMetrics(metrics.NewRepository(reg)),
	)

	return &app{
		pool:          pool,
		repos:         repos,
		authenticator: auth.NewPasswordAuthenticator(repos.Users),
		registry:      reg,
	}, nil
}

func openPool(ctx context.Context, databaseURL string, opts storage.PoolOptions) (*storage.Pool, error) {
	if postgres.IsURL(databaseURL) {
		return postgres.Open(ctx, databaseURL, opts)
	}
	return sqlite.Open(ctx, sqlite.PathFromURL(databaseURL), opts)
}

// serveMetrics exposes /metrics until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Metrics server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s/metrics", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("Metrics server stopped")
	return nil
}
