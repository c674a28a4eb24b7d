package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidCategory(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		expected bool
	}{
		{
			name:     "standard",
			category: CategoryStandard,
			expected: true,
		},
		{
			name:     "plus",
			category: CategoryPlus,
			expected: true,
		},
		{
			name:     "premium",
			category: CategoryPremium,
			expected: true,
		},
		{
			name:     "out of range",
			category: Category(3),
			expected: false,
		},
		{
			name:     "far out of range",
			category: Category(255),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidCategory(tt.category))
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  Category
		expectErr bool
	}{
		{
			name:     "standard",
			input:    "standard",
			expected: CategoryStandard,
		},
		{
			name:     "plus",
			input:    "plus",
			expected: CategoryPlus,
		},
		{
			name:     "premium",
			input:    "premium",
			expected: CategoryPremium,
		},
		{
			name:      "unknown",
			input:     "gold",
			expectErr: true,
		},
		{
			name:      "empty",
			input:     "",
			expectErr: true,
		},
		{
			name:      "case sensitive",
			input:     "Premium",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCategoryRoundTrip(t *testing.T) {
	for _, c := range []Category{CategoryStandard, CategoryPlus, CategoryPremium} {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseFlagID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  string
		expectErr bool
	}{
		{
			name:     "small id",
			input:    "1",
			expected: "1",
		},
		{
			name:     "zero",
			input:    "0",
			expected: "0",
		},
		{
			name:     "large 256-bit id",
			input:    "115792089237316195423570985008687907853269984665640564039457584007913129639935",
			expected: "115792089237316195423570985008687907853269984665640564039457584007913129639935",
		},
		{
			name:      "negative",
			input:     "-1",
			expectErr: true,
		},
		{
			name:      "not a number",
			input:     "abc",
			expectErr: true,
		},
		{
			name:      "empty",
			input:     "",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlagID(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "42", FlagKey(big.NewInt(42)))
	assert.Equal(t, "", FlagKey(nil))
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x396343362be2A4dA1cE0C1C210945346fb82Aa49")
	require.NoError(t, err)
	assert.Equal(t, "0x396343362be2A4dA1cE0C1C210945346fb82Aa49", addr.String())

	_, err = ParseAddress("not-an-address")
	assert.Error(t, err)

	_, err = ParseAddress("")
	assert.Error(t, err)
}

func TestIsZeroAddress(t *testing.T) {
	zero, err := ParseAddress(ETHEREUM_ZERO_ADDRESS)
	require.NoError(t, err)
	assert.True(t, IsZeroAddress(zero))

	addr, err := ParseAddress("0x396343362be2A4dA1cE0C1C210945346fb82Aa49")
	require.NoError(t, err)
	assert.False(t, IsZeroAddress(addr))
}
