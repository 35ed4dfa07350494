package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Quantity int32  `yaml:"quantity"`
}

// LoadSeed reads seed products from a YAML file.
func LoadSeed(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed products from YAML. Every product needs a unique positive id,
// which is what lets a restart recognise products it has already seeded.
func ParseSeed(data []byte) ([]Product, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	products := make([]Product, 0, len(f.Products))
	seen := make(map[int64]bool, len(f.Products))
	for i, sp := range f.Products {
		if sp.ID <= 0 {
			return nil, fmt.Errorf("seed product #%d (%q): id is required", i, sp.Name)
		}
		if seen[sp.ID] {
			return nil, fmt.Errorf("seed product #%d (%q): duplicate id %d", i, sp.Name, sp.ID)
		}
		seen[sp.ID] = true
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return nil, fmt.Errorf("seed product #%d: invalid price %q: %w", i, sp.Price, err)
		}
		products = append(products, Product{
			ID:       sp.ID,
			Name:     sp.Name,
			Price:    price,
			Quantity: sp.Quantity,
		})
	}
	return products, nil
}

// Seed passes each product to create and returns how many were added.
// create is usually a ProductService.Create, so seed data is validated like any other write.
// Products whose ID is already stored are skipped.
func Seed(ctx context.Context, create func(context.Context, *Product) error, products []Product) (int, error) {
	inserted := 0
	for _, p := range products {
		err := create(ctx, &p)
		if errors.Is(err, perrors.ErrProductExists) {
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
		inserted++
	}
	return inserted, nil
}
