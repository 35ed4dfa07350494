package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	listQuery = `SELECT id, name, price::text, quantity FROM products ORDER BY id`

	getByIDQuery = `SELECT id, name, price::text, quantity FROM products WHERE id = $1`

	insertQuery = `INSERT INTO products (name, price, quantity)
VALUES ($1, $2::numeric, $3)
RETURNING id`

	insertWithIDQuery = `INSERT INTO products (id, name, price, quantity)
VALUES ($1, $2, $3::numeric, $4)`

	updateQuery = `UPDATE products SET name = $2, price = $3::numeric, quantity = $4 WHERE id = $1`

	deleteQuery = `DELETE FROM products WHERE id = $1`

	// syncSequenceQuery moves the id sequence past explicitly inserted ids.
	syncSequenceQuery = `SELECT setval(pg_get_serial_sequence('products', 'id'), GREATEST((SELECT MAX(id) FROM products), 1))`

	uniqueViolation = "23505"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

var _ ProductStore = (*PgStore)(nil)

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// List retrieves all products ordered by ID.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) List(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) GetByID(ctx context.Context, id int64) (*Product, error) {
	rows, err := p.db.Query(ctx, getByIDQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// Insert adds a new product. When product.ID is zero the database assigns it.
// Returns ErrProductExists if the explicit ID is already taken.
func (p *PgStore) Insert(ctx context.Context, product *Product) error {
	if product.ID == 0 {
		err := p.db.QueryRow(ctx, insertQuery, product.Name, product.Price.String(), product.Quantity).Scan(&product.ID)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	}

	_, err := p.db.Exec(ctx, insertWithIDQuery, product.ID, product.Name, product.Price.String(), product.Quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return perrors.ErrProductExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	if _, err := p.db.Exec(ctx, syncSequenceQuery); err != nil {
		return fmt.Errorf("failed to sync product id sequence: %w", err)
	}
	return nil
}

// Update replaces the product stored under id.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, product Product) error {
	tag, err := p.db.Exec(ctx, updateQuery, id, product.Name, product.Price.String(), product.Quantity)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// Delete removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Delete(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, deleteQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (Product, error) {
	var (
		product Product
		price   string
	)
	if err := row.Scan(&product.ID, &product.Name, &price, &product.Quantity); err != nil {
		return Product{}, err
	}
	var err error
	product.Price, err = decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("invalid price %q: %w", price, err)
	}
	return product, nil
}
