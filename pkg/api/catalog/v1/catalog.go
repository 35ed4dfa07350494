// Package catalogv1 describes the catalog.v1.ProductCatalog gRPC service.
// Messages are protobuf well-known types, so no generated message code is needed:
// a product travels as a Struct with the keys id, name, price and quantity.
package catalogv1

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "catalog.v1.ProductCatalog"

	GetProductFullMethodName   = "/catalog.v1.ProductCatalog/GetProduct"
	ListProductsFullMethodName = "/catalog.v1.ProductCatalog/ListProducts"
)

// Product is the client-side view of a catalog product.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Quantity int32
}

// ToStruct encodes a product. The id and price are sent as decimal strings, since a Struct
// number is a float64 and cannot hold every int64 or decimal exactly.
func ToStruct(p Product) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":       structpb.NewStringValue(strconv.FormatInt(p.ID, 10)),
		"name":     structpb.NewStringValue(p.Name),
		"price":    structpb.NewStringValue(p.Price.String()),
		"quantity": structpb.NewNumberValue(float64(p.Quantity)),
	}}
}

// FromStruct decodes a product encoded by ToStruct.
func FromStruct(s *structpb.Struct) (Product, error) {
	fields := s.GetFields()
	id, err := strconv.ParseInt(fields["id"].GetStringValue(), 10, 64)
	if err != nil {
		return Product{}, fmt.Errorf("invalid id: %w", err)
	}
	price, err := decimal.NewFromString(fields["price"].GetStringValue())
	if err != nil {
		return Product{}, fmt.Errorf("invalid price: %w", err)
	}
	return Product{
		ID:       id,
		Name:     fields["name"].GetStringValue(),
		Price:    price,
		Quantity: int32(fields["quantity"].GetNumberValue()),
	}, nil
}

// ProductCatalogServer is the server API for the ProductCatalog service.
type ProductCatalogServer interface {
	GetProduct(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	ListProducts(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

func RegisterProductCatalogServer(s grpc.ServiceRegistrar, srv ProductCatalogServer) {
	s.RegisterService(&ProductCatalog_ServiceDesc, srv)
}

func _ProductCatalog_GetProduct_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductCatalogServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetProductFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductCatalogServer).GetProduct(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func _ProductCatalog_ListProducts_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductCatalogServer).ListProducts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ListProductsFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductCatalogServer).ListProducts(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ProductCatalog_ServiceDesc is the grpc.ServiceDesc for the ProductCatalog service.
var ProductCatalog_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProductCatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProduct",
			Handler:    _ProductCatalog_GetProduct_Handler,
		},
		{
			MethodName: "ListProducts",
			Handler:    _ProductCatalog_ListProducts_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

// ProductCatalogClient is the client API for the ProductCatalog service.
type ProductCatalogClient interface {
	GetProduct(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListProducts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

type productCatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewProductCatalogClient(cc grpc.ClientConnInterface) ProductCatalogClient {
	return &productCatalogClient{cc}
}

func (c *productCatalogClient) GetProduct(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetProductFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *productCatalogClient) ListProducts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListProductsFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
