// Package grpc provides a gRPC server for the product catalog.
package grpc

import (
	"context"
	"log/slog"

	"github.com/abgdnv/productcatalog/internal/store"
	catalogv1 "github.com/abgdnv/productcatalog/pkg/api/catalog/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ProductService is the part of the catalog service exposed over gRPC.
type ProductService interface {
	List(ctx context.Context) ([]store.Product, error)
	GetByID(ctx context.Context, id int64) (*store.Product, error)
}

type Server struct {
	service ProductService
	logger  *slog.Logger
}

var _ catalogv1.ProductCatalogServer = (*Server)(nil)

func NewServer(service ProductService, logger *slog.Logger) *Server {
	return &Server{service: service, logger: logger.With("component", "grpc")}
}

func (s *Server) GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	if id < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid product ID: %d", id)
	}

	found, err := s.service.GetByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "service.GetByID failed", "ID", id, "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}
	if found == nil {
		return nil, status.Errorf(codes.NotFound, "product %d not found", id)
	}
	return catalogv1.ToStruct(toMessage(*found)), nil
}

func (s *Server) ListProducts(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := s.service.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "service.List failed", "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}

	values := make([]*structpb.Value, 0, len(list))
	for _, p := range list {
		values = append(values, structpb.NewStructValue(catalogv1.ToStruct(toMessage(p))))
	}
	return &structpb.ListValue{Values: values}, nil
}

func toMessage(p store.Product) catalogv1.Product {
	return catalogv1.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
	}
}
