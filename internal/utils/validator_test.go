// internal/utils/validator_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTxHash(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"0x" + strings.Repeat("ab", 32), true},
		{"0x" + strings.Repeat("AB", 32), true},
		{"0x" + strings.Repeat("ab", 31), false},
		{"0x" + strings.Repeat("ab", 33), false},
		{strings.Repeat("ab", 33), false},
		{"0x" + strings.Repeat("zz", 32), false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsTxHash(tt.input), "input %q", tt.input)
	}
}

func TestIsEthAddress(t *testing.T) {
	assert.True(t, IsEthAddress("0x1111111111111111111111111111111111111111"))
	assert.True(t, IsEthAddress("0xAbCd111111111111111111111111111111111111"))
	assert.False(t, IsEthAddress("0x11111111111111111111111111111111111111"))
	assert.False(t, IsEthAddress("1111111111111111111111111111111111111111"))
	assert.False(t, IsEthAddress(""))
}

func TestValidateStructCustomTags(t *testing.T) {
	type payload struct {
		TxHash string `validate:"required,tx_hash"`
		Wallet string `validate:"required,eth_address"`
	}

	err := ValidateStruct(&payload{
		TxHash: "0x" + strings.Repeat("ab", 32),
		Wallet: "0x1111111111111111111111111111111111111111",
	})
	assert.NoError(t, err)

	err = ValidateStruct(&payload{TxHash: "nope", Wallet: "also-nope"})
	require.Error(t, err)

	validationErrors := GetValidationErrors(err)
	require.Len(t, validationErrors, 2)
	assert.Equal(t, "tx_hash", validationErrors[0].Tag)
	assert.Equal(t, "eth_address", validationErrors[1].Tag)
}
