// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ProductRequest is the body of create and update requests.
// Sign checks on price and quantity are left to the service.
type ProductRequest struct {
	ID       int64            `json:"id"       validate:"gte=0"`
	Name     string           `json:"name"     validate:"max=100"`
	Price    *decimal.Decimal `json:"price"    validate:"required"`
	Quantity *int32           `json:"quantity" validate:"required"`
}

func (p ProductRequest) toProduct() store.Product {
	return store.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    *p.Price,
		Quantity: *p.Quantity,
	}
}

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of Handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetByID)
			r.Put("/", h.Update)
			r.Delete("/", h.Remove)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// List retrieves all products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// GetByID retrieves a product by its ID.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	found, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	if found == nil {
		h.logger.DebugContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	product := req.toProduct()
	if err := h.service.Create(r.Context(), &product); err != nil {
		h.respondServiceError(w, r, err, product.ID, "create")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", product.ID, "Name", product.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, product)
}

// Update replaces the product identified by the path id. The id in the body is ignored.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	product := req.toProduct()
	product.ID = id
	if err := h.service.Update(r.Context(), id, product); err != nil {
		h.respondServiceError(w, r, err, id, "update")
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", id, "Name", product.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, product)
}

// Remove deletes a product by its ID.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, id, "delete")
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decode reads and shape-checks the request body. On failure it writes a 400 response.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return req, false
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return req, false
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	return req, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, id int64, op string) {
	var vErr *perrors.ValidationError
	switch {
	case errors.As(err, &vErr):
		web.RespondFieldError(w, h.logger, http.StatusBadRequest, vErr.Field, vErr.Reason)
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id, "op", op)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
	case errors.Is(err, perrors.ErrProductExists):
		h.logger.WarnContext(r.Context(), "Product already exists", "ID", id)
		web.RespondError(w, h.logger, http.StatusConflict, fmt.Sprintf("Product with ID %d already exists", id))
	default:
		h.logger.ErrorContext(r.Context(), "Error processing product", "ID", id, "op", op, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s product", op))
	}
}
