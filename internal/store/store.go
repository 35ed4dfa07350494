// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog record.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int32           `json:"quantity"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// List returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	List(ctx context.Context) ([]Product, error)

	// GetByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	GetByID(ctx context.Context, id int64) (*Product, error)

	// Insert adds a new product. A zero ID is replaced by the next free ID, which is
	// written back into product.
	// Returns ErrProductExists if a product with the given ID is already stored.
	Insert(ctx context.Context, product *Product) error

	// Update replaces the product stored under id. The stored record takes id as its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, product Product) error

	// Delete removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id int64) error
}
