package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"mrzreader/internal/api"
	"mrzreader/internal/api/handler/v1handler"
	"mrzreader/internal/config"
	"mrzreader/pkg/logger"
	"mrzreader/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// setupMetrics installs the global meter provider backed by the Prometheus
// registry and creates the pipeline instruments.
func setupMetrics(ctx context.Context) *metrics.Pipeline {
	exp, err := otelprom.New(otelprom.WithRegisterer(prometheus.DefaultRegisterer))
	if err != nil {
		logger.Fatal(ctx, "could not create otel exporter", zap.Error(err))
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)))

	pipelineMetrics, err := metrics.NewPipeline()
	if err != nil {
		logger.Fatal(ctx, "could not create pipeline metrics", zap.Error(err))
	}

	return pipelineMetrics
}

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...")
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the MRZ reading API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			pipelineMetrics := setupMetrics(ctx)
			reader := getReader(ctx, cfg, pipelineMetrics)

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps: v1handler.Deps{Reader: reader},
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
