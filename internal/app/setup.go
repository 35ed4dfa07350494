// Package app wires the catalog service: store selection, service, HTTP and gRPC servers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/internal/store"
	grpcImpl "github.com/abgdnv/productcatalog/internal/transport/grpc"
	"github.com/abgdnv/productcatalog/internal/transport/rest"
	catalogv1 "github.com/abgdnv/productcatalog/pkg/api/catalog/v1"
	"github.com/abgdnv/productcatalog/pkg/bootstrap"
	"github.com/abgdnv/productcatalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// MeterProvider backs the HTTP middleware metrics. Nil means the global provider.
	MeterProvider metric.MeterProvider
}

func SetupDependencies(repo store.ProductStore, logger *slog.Logger, opts ...service.Option) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(repo, logger, opts...),
		Logger:         logger,
	}
}

// SetupStore opens the configured product store. The postgres and mongo drivers connect
// (retrying for the configured window), postgres optionally migrates, and the returned
// closer releases the connection. The closer is never nil.
func SetupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	switch {
	case cfg.Store.UsesDatabase():
		return setupPgStore(ctx, cfg, logger)
	case cfg.Store.UsesMongo():
		return setupMongoStore(ctx, cfg, logger)
	default:
		logger.Info("Using in-memory product store")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func setupPgStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	dbPool, err := bootstrap.Retry(ctx, cfg.Database.ConnectRetry, logger, "postgres", func() (*pgxpool.Pool, error) {
		return bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")

	if cfg.Store.Migrate {
		if err := store.Migrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, nil, err
		}
		logger.Info("Database migrations applied")
	}
	return store.NewPgStore(dbPool), dbPool.Close, nil
}

func setupMongoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	client, err := bootstrap.Retry(ctx, cfg.Mongo.ConnectRetry, logger, "mongo", func() (*mongo.Client, error) {
		return bootstrap.NewMongoClient(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Successfully connected to MongoDB!", slog.String("database", cfg.Mongo.Database))

	closer := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error("failed to disconnect from MongoDB", slog.Any("error", err))
		}
	}
	return store.NewMongoStore(client.Database(cfg.Mongo.Database)), closer, nil
}

// SeedStore loads the seed file at path through products.Create, so seed entries obey the
// same validation as API writes. An invalid entry aborts seeding. An empty path is a no-op.
func SeedStore(ctx context.Context, products service.ProductService, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	seed, err := store.LoadSeed(path)
	if err != nil {
		return err
	}
	inserted, err := store.Seed(ctx, products.Create, seed)
	if err != nil {
		return err
	}
	logger.Info("Seed data loaded", "file", path, "inserted", inserted, "skipped", len(seed)-inserted)
	return nil
}

// SetupHttpHandler builds the instrumented router with all catalog routes.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mp := deps.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	mux := server.NewChiRouter(deps.Logger, mp)
	wireRoutes(mux, deps)
	return server.Instrument(mux, "catalog.http")
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the catalog.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer initializes the gRPC server for the catalog.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	catalogRegisterFunc := func(s *grpc.Server) {
		catalogv1.RegisterProductCatalogServer(s, grpcImpl.NewServer(deps.ProductService, deps.Logger))
	}
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, catalogRegisterFunc)
}
