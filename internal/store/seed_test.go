package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
products:
  - id: 1
    name: Keyboard
    price: "49.90"
    quantity: 10
  - id: 2
    name: Mouse
    price: "19.5"
    quantity: 3
`

func TestLoadSeed(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	// when
	products, err := LoadSeed(path)

	// then
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "Keyboard", products[0].Name)
	assert.True(t, decimal.RequireFromString("49.9").Equal(products[0].Price))
	assert.Equal(t, int32(10), products[0].Quantity)
	assert.Equal(t, int64(2), products[1].ID)
}

func TestLoadSeed_Errors(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("products:\n  - id: 1\n    name: Bad\n    price: abc\n"))
	assert.ErrorContains(t, err, "invalid price")

	_, err = ParseSeed([]byte("products: ["))
	assert.ErrorContains(t, err, "failed to parse seed file")
}

func TestParseSeed_IDs(t *testing.T) {
	tests := []struct {
		name    string
		seed    string
		wantErr string
	}{
		{
			name:    "missing id",
			seed:    "products:\n  - {name: Mouse, price: \"19.5\", quantity: 3}\n",
			wantErr: "id is required",
		},
		{
			name:    "negative id",
			seed:    "products:\n  - {id: -4, name: Mouse, price: \"19.5\", quantity: 3}\n",
			wantErr: "id is required",
		},
		{
			name: "duplicate id",
			seed: "products:\n" +
				"  - {id: 3, name: Mouse, price: \"19.5\", quantity: 3}\n" +
				"  - {id: 3, name: Pad, price: \"5\", quantity: 1}\n",
			wantErr: "duplicate id 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.seed))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSeed_Idempotent(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewMemoryStore()
	products, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)

	// when
	first, err := Seed(ctx, s.Insert, products)
	require.NoError(t, err)

	// then
	assert.Equal(t, 2, first)
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// every product is skipped on the second run
	second, err := Seed(ctx, s.Insert, products)
	require.NoError(t, err)
	assert.Equal(t, 0, second)
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSeed_CreateFails(t *testing.T) {
	// given
	ctx := context.Background()
	products, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	rejected := perrors.ErrValidation
	var calls int
	create := func(_ context.Context, p *Product) error {
		calls++
		if p.ID == 2 {
			return rejected
		}
		return nil
	}

	// when
	n, err := Seed(ctx, create, products)

	// then
	require.ErrorIs(t, err, rejected)
	assert.ErrorContains(t, err, "Mouse")
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, calls)
}
