// internal/payments/obligation_test.go
package payments

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	artistAddr   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	platformAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestComputeSplitWithPlatformWallet(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	feeRate := decimal.RequireFromString("0.02")

	obligations := ComputeSplit(price, feeRate, artistAddr, &platformAddr)

	require.Len(t, obligations, 2)

	assert.Equal(t, RoleArtist, obligations[0].Role)
	assert.Equal(t, artistAddr, obligations[0].Recipient)
	assert.True(t, obligations[0].AmountUSD.Equal(decimal.RequireFromString("9.80")), "artist amount = %s", obligations[0].AmountUSD)
	assert.Equal(t, AssetUSDC, obligations[0].Asset)

	assert.Equal(t, RolePlatform, obligations[1].Role)
	assert.Equal(t, platformAddr, obligations[1].Recipient)
	assert.True(t, obligations[1].AmountUSD.Equal(decimal.RequireFromString("0.20")), "platform amount = %s", obligations[1].AmountUSD)
}

func TestComputeSplitWithoutPlatformWallet(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	feeRate := decimal.RequireFromString("0.02")

	obligations := ComputeSplit(price, feeRate, artistAddr, nil)

	require.Len(t, obligations, 1)
	assert.Equal(t, RoleArtist, obligations[0].Role)
	assert.True(t, obligations[0].AmountUSD.Equal(price), "artist keeps the full price when no platform wallet is set")
}

func TestComputeSplitAmountsSumToPrice(t *testing.T) {
	price := decimal.RequireFromString("33.33")
	feeRate := decimal.RequireFromString("0.03")

	obligations := ComputeSplit(price, feeRate, artistAddr, &platformAddr)

	sum := decimal.Zero
	for _, o := range obligations {
		sum = sum.Add(o.AmountUSD)
	}
	assert.True(t, sum.Equal(price), "split must not create or destroy value: %s != %s", sum, price)
}

func TestTokenUnits(t *testing.T) {
	tests := []struct {
		amount string
		units  int64
	}{
		{"9.80", 9_800_000},
		{"0.20", 200_000},
		{"10.00", 10_000_000},
		{"0.000001", 1},
	}

	for _, tt := range tests {
		o := Obligation{AmountUSD: decimal.RequireFromString(tt.amount)}
		assert.Equal(t, big.NewInt(tt.units), o.TokenUnits(), "amount %s", tt.amount)
	}
}

func TestTokenUnitsRoundsDown(t *testing.T) {
	// Sub-unit fractions are dropped so the on-chain requirement never
	// exceeds the nominal USD amount.
	o := Obligation{AmountUSD: decimal.RequireFromString("1.0000019")}
	assert.Equal(t, big.NewInt(1_000_001), o.TokenUnits())
}
