// Package client is a gRPC client for the product catalog.
package client

import (
	"context"
	"fmt"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	catalogv1 "github.com/abgdnv/productcatalog/pkg/api/catalog/v1"
	"github.com/abgdnv/productcatalog/pkg/client/grpc/interceptors"
	"github.com/abgdnv/productcatalog/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Client struct {
	conn   *grpc.ClientConn
	api    catalogv1.ProductCatalogClient
	health healthpb.HealthClient
}

// New connects to the catalog at cfg.Addr. Every call is bounded by cfg.Timeout,
// retried on transient failures and guarded by a circuit breaker.
// Extra dial options are appended after the defaults.
func New(cfg config.GrpcClientConfig, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(
			interceptors.UnaryClientTimeoutInterceptor(cfg.Timeout),
			interceptors.NewRetryInterceptor(cfg.Resilience.Retry),
			interceptors.NewCircuitBreaker(cfg.Resilience.CircuitBreaker),
		),
	}
	conn, err := grpc.NewClient(cfg.Addr, append(dialOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client connection: %w", err)
	}
	return &Client{
		conn:   conn,
		api:    catalogv1.NewProductCatalogClient(conn),
		health: healthpb.NewHealthClient(conn),
	}, nil
}

// Get fetches one product. Returns errors.ErrProductNotFound when the catalog has no such id.
func (c *Client) Get(ctx context.Context, id int64) (*catalogv1.Product, error) {
	res, err := c.api.GetProduct(ctx, wrapperspb.Int64(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	p, err := catalogv1.FromStruct(res)
	if err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", id, err)
	}
	return &p, nil
}

// List fetches all products.
func (c *Client) List(ctx context.Context) ([]catalogv1.Product, error) {
	res, err := c.api.ListProducts(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := make([]catalogv1.Product, 0, len(res.GetValues()))
	for _, v := range res.GetValues() {
		p, err := catalogv1.FromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

// Healthy asks the standard health service whether the catalog is serving.
func (c *Client) Healthy(ctx context.Context) error {
	res, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("catalog is %s", res.GetStatus())
	}
	return nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
