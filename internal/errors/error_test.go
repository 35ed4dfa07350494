package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("create: %w", &ValidationError{Field: "price", Reason: "price must be non-negative"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrProductNotFound)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "price", vErr.Field)
	assert.Equal(t, "price must be non-negative", vErr.Error())
}
