// Package main runs the product catalog service: REST and gRPC APIs over the configured store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abgdnv/productcatalog/internal/app"
	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/events"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/pkg/bootstrap"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	pkgnats "github.com/abgdnv/productcatalog/pkg/nats"
	"github.com/abgdnv/productcatalog/pkg/server"
	"github.com/abgdnv/productcatalog/pkg/telemetry"
	"github.com/nats-io/nats.go"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalog"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, opens the store and starts the HTTP, gRPC and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	g, gCtx := errgroup.WithContext(ctx)

	// tracing is optional, metrics are always collected
	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down tracer provider")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shutdown tracer provider: %w", err)
			}
			return nil
		})
	}
	var meterOpts []sdkmetric.Option
	if cfg.Telemetry.Enabled && cfg.Telemetry.Metrics.PushEnabled() {
		reader, err := telemetry.NewOtlpMetricReader(ctx, cfg.Telemetry.Metrics)
		if err != nil {
			return err
		}
		meterOpts = append(meterOpts, sdkmetric.WithReader(reader))
	}
	metrics, err := telemetry.NewMeterProvider(serviceName, meterOpts...)
	if err != nil {
		return fmt.Errorf("failed to create meter provider: %w", err)
	}

	repo, closeStore, err := app.SetupStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := setupPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := app.SetupDependencies(repo, logger,
		service.WithPublisher(publisher),
		service.WithMeterProvider(metrics.Provider),
	)
	deps.MetricsHandler = metrics.Handler()
	deps.MeterProvider = metrics.Provider

	if err := app.SeedStore(ctx, deps.ProductService, cfg.Store.Seed, logger); err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}

	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	pprofServer := server.NewPprofServer(cfg.PProf, cfg.HTTPServer.Timeout.ReadHeader)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the gRPC server
	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	// gracefully shutdown gRPC server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	// flush metrics on exit
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return metrics.Provider.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupPublisher connects to NATS JetStream when enabled and makes sure the catalog stream exists.
// Without NATS, events are discarded.
func setupPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}

	nc, err := bootstrap.Retry(ctx, cfg.NATS.ConnectRetry, logger, "nats", func() (*nats.Conn, error) {
		return pkgnats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	})
	if err != nil {
		return nil, nil, err
	}
	js, err := pkgnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}

	streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()
	if err := pkgnats.EnsureStream(streamCtx, js, events.StreamName, events.SubjectWildcard); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS JetStream", slog.String("url", cfg.NATS.Url), slog.String("stream", events.StreamName))

	closer := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("failed to drain NATS connection", slog.Any("error", err))
		}
	}
	return pkgnats.NewNatsPublisher(js), closer, nil
}
