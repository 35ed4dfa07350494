package catalogv1

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestProductStruct(t *testing.T) {
	p := Product{ID: 12, Name: "test", Price: decimal.RequireFromString("19.99"), Quantity: 4}

	s := ToStruct(p)
	assert.Equal(t, "12", s.Fields["id"].GetStringValue())
	assert.Equal(t, "19.99", s.Fields["price"].GetStringValue())

	got, err := FromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Equal(t, p.Quantity, got.Quantity)
}

func TestProductStruct_LargeID(t *testing.T) {
	tests := []struct {
		name string
		id   int64
	}{
		{name: "above float64 precision", id: 1<<53 + 1},
		{name: "max int64", id: math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromStruct(ToStruct(Product{ID: tt.id, Price: decimal.Zero}))
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
		})
	}
}

func TestFromStruct_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]*structpb.Value
		wantErr string
	}{
		{
			name:    "price",
			fields:  map[string]*structpb.Value{"id": structpb.NewStringValue("1"), "price": structpb.NewStringValue("abc")},
			wantErr: "invalid price",
		},
		{
			name:    "missing id",
			fields:  map[string]*structpb.Value{"price": structpb.NewStringValue("1")},
			wantErr: "invalid id",
		},
		{
			name:    "numeric id",
			fields:  map[string]*structpb.Value{"id": structpb.NewNumberValue(1), "price": structpb.NewStringValue("1")},
			wantErr: "invalid id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromStruct(&structpb.Struct{Fields: tt.fields})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
