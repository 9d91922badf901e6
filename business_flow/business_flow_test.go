package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"already international", "+919876543210", "+919876543210"},
		{"bare national number", "9876543210", "+919876543210"},
		{"with spaces and dashes", "98765 432-10", "+919876543210"},
		{"with parentheses", "(98765) 43210", "+919876543210"},
		{"double zero prefix", "00919876543210", "+919876543210"},
		{"plus kept after cleanup", "+91 98765 43210", "+919876543210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.phone, "+91"))
		})
	}
}

func TestValidatePagination(t *testing.T) {
	page, pageSize, err := ValidatePagination(0, 0, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)

	page, pageSize, err = ValidatePagination(3, 50, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, pageSize)

	_, _, err = ValidatePagination(-1, 10, 20, 100)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, _, err = ValidatePagination(1, 500, 20, 100)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}
