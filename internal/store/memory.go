package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
)

// MemoryStore implements ProductStore using an in-memory map.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]Product
	lastID   int64
}

var _ ProductStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]Product),
	}
}

// List returns a snapshot of all products ordered by ID.
func (s *MemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b Product) int { return cmp.Compare(a.ID, b.ID) })
	return list, nil
}

// GetByID retrieves a product by its ID.
func (s *MemoryStore) GetByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

// Insert stores the product, assigning the next ID when product.ID is zero.
func (s *MemoryStore) Insert(_ context.Context, product *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == 0 {
		product.ID = s.lastID + 1
	}
	if _, exists := s.products[product.ID]; exists {
		return perrors.ErrProductExists
	}
	s.lastID = max(s.lastID, product.ID)
	s.products[product.ID] = *product
	return nil
}

// Update replaces the product stored under id.
func (s *MemoryStore) Update(_ context.Context, id int64, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return perrors.ErrProductNotFound
	}
	product.ID = id
	s.products[id] = product
	return nil
}

// Delete removes the product stored under id.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}
