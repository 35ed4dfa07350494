// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/events"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/abgdnv/productcatalog/internal/service"

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// List returns all products in store order.
	List(ctx context.Context) ([]store.Product, error)

	// GetByID retrieves a single product by its unique identifier.
	// Returns a nil product and a nil error if no product exists with the given ID.
	GetByID(ctx context.Context, id int64) (*store.Product, error)

	// Create validates the product and adds it to the store.
	// The store may assign product.ID.
	Create(ctx context.Context, product *store.Product) error

	// Update validates the product and replaces the one stored under id.
	Update(ctx context.Context, id int64, product store.Product) error

	// Remove deletes a product by its ID.
	Remove(ctx context.Context, id int64) error

	// ValidateProduct checks the business invariants of a product.
	ValidateProduct(product store.Product) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	logger     *slog.Logger
	publisher  messaging.Publisher
	tracer     trace.Tracer
	failures   metric.Int64Counter
}

var _ ProductService = (*Service)(nil)

type options struct {
	publisher      messaging.Publisher
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures a Service.
type Option func(*options)

// WithPublisher sets the publisher that receives events after successful mutations.
func WithPublisher(p messaging.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// NewService creates a new instance of ProductService with the provided repository.
// Tracing and metrics default to the global OpenTelemetry providers; events are dropped
// unless a publisher is configured.
func NewService(repo store.ProductStore, logger *slog.Logger, opts ...Option) *Service {
	o := options{
		publisher:      messaging.NopPublisher{},
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger = logger.With("component", "service")
	failures, err := o.meterProvider.Meter(instrumentationName).Int64Counter(
		"catalog.validation.failures",
		metric.WithDescription("Number of products rejected by validation"),
	)
	if err != nil {
		logger.Warn("failed to create validation failure counter", "error", err)
		failures = noop.Int64Counter{}
	}

	return &Service{
		repository: repo,
		logger:     logger,
		publisher:  o.publisher,
		tracer:     o.tracerProvider.Tracer(instrumentationName),
		failures:   failures,
	}
}

// List returns all products. Store errors are returned unchanged.
func (s *Service) List(ctx context.Context) ([]store.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.List")
	defer span.End()

	products, err := s.repository.List(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return products, nil
}

// GetByID retrieves a product by its ID.
// A missing product is reported as (nil, nil); other store errors are returned unchanged.
func (s *Service) GetByID(ctx context.Context, id int64) (*store.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetByID", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, nil
		}
		recordError(span, err)
		return nil, err
	}
	return product, nil
}

// Create validates the product and inserts it.
// Returns *errors.ValidationError without touching the store when product is nil or invalid.
func (s *Service) Create(ctx context.Context, product *store.Product) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer span.End()

	if product == nil {
		err := &perrors.ValidationError{Field: "product", Reason: "product is required"}
		recordError(span, err)
		return err
	}
	if err := s.validate(ctx, *product); err != nil {
		recordError(span, err)
		return err
	}
	if err := s.repository.Insert(ctx, product); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int64("product.id", product.ID))

	s.publish(ctx, events.ProductCreatedEvent{Product: *product, OccurredAt: time.Now().UTC()})
	return nil
}

// Update validates the product and passes id and product to the store as given.
func (s *Service) Update(ctx context.Context, id int64, product store.Product) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := s.validate(ctx, product); err != nil {
		recordError(span, err)
		return err
	}
	if err := s.repository.Update(ctx, id, product); err != nil {
		recordError(span, err)
		return err
	}

	product.ID = id
	s.publish(ctx, events.ProductUpdatedEvent{Product: product, OccurredAt: time.Now().UTC()})
	return nil
}

// Remove deletes the product stored under id.
func (s *Service) Remove(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Remove", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := s.repository.Delete(ctx, id); err != nil {
		recordError(span, err)
		return err
	}

	s.publish(ctx, events.ProductRemovedEvent{ProductID: id, OccurredAt: time.Now().UTC()})
	return nil
}

// ValidateProduct checks price first, then quantity, and reports the first violation.
func (s *Service) ValidateProduct(product store.Product) error {
	if product.Price.IsNegative() {
		return &perrors.ValidationError{Field: "price", Reason: "price must be non-negative"}
	}
	if product.Quantity < 0 {
		return &perrors.ValidationError{Field: "quantity", Reason: "quantity must be non-negative"}
	}
	return nil
}

func (s *Service) validate(ctx context.Context, product store.Product) error {
	err := s.ValidateProduct(product)
	var vErr *perrors.ValidationError
	if errors.As(err, &vErr) {
		s.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("field", vErr.Field)))
		s.logger.WarnContext(ctx, "product validation failed",
			"field", vErr.Field,
			"reason", vErr.Reason,
			"product_id", product.ID,
		)
	}
	return err
}

func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
