package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/audit"
	"github.com/SscSPs/bookkeeping_engine/internal/core/services"
	"github.com/SscSPs/bookkeeping_engine/internal/handlers"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/SscSPs/bookkeeping_engine/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "install the default fiscal year and chart of accounts into an empty store")
	return cmd
}

func runServe(ctx context.Context, seed bool) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx = middleware.WithLogger(ctx, logger)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("driver", cfg.DBDriver), slog.String("error", err.Error()))
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cache, err := services.NewBalanceCache(cfg.BalanceCacheSize, m)
	if err != nil {
		return err
	}
	opts := []services.ServiceOption{services.WithMetrics(m)}
	if cfg.AuditNATSURL != "" {
		publisher, closeNATS, err := audit.Connect(ctx, cfg.AuditNATSURL)
		if err != nil {
			logger.Error("Failed to connect audit stream", slog.String("error", err.Error()))
			return err
		}
		defer closeNATS()
		opts = append(opts, services.WithAuditPublisher(publisher))
	}
	container := services.NewServiceContainer(store, cache, opts...)

	if seed {
		if _, err := services.NewSeeder(container).Seed(ctx, time.Now(), "system"); err != nil {
			logger.Error("Failed to seed store", slog.String("error", err.Error()))
			return err
		}
	}

	lim, err := middleware.NewMemoryLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		return err
	}
	handlers.RegisterRoutes(r, cfg, container, handlers.RouteDeps{
		Metrics:  m,
		Gatherer: reg,
		Limiter:  lim,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
