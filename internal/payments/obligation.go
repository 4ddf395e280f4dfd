// internal/payments/obligation.go
package payments

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type Asset string

const (
	AssetUSDC   Asset = "USDC"
	AssetNative Asset = "ETH"
)

type Role string

const (
	RoleArtist   Role = "artist"
	RolePlatform Role = "platform"
)

// usdcDecimals is the on-chain precision of the settlement token.
const usdcDecimals = 6

// Obligation is a required payment a transaction must satisfy before it
// is considered valid: this recipient must receive at least this amount
// of this asset.
type Obligation struct {
	Role      Role            `json:"role"`
	Recipient common.Address  `json:"recipient"`
	AmountUSD decimal.Decimal `json:"amount_usd"`
	Asset     Asset           `json:"asset"`
}

// TokenUnits converts the USD amount to integer token units, rounding
// down so the on-chain total never exceeds the nominal price.
func (o Obligation) TokenUnits() *big.Int {
	return o.AmountUSD.Shift(usdcDecimals).Floor().BigInt()
}

// ComputeSplit builds the obligation set for a purchase from the stored
// session price and the configured fee rate. When no platform wallet is
// configured the set degrades to the artist obligation alone.
func ComputeSplit(priceUSD, feeRate decimal.Decimal, artistWallet common.Address, platformWallet *common.Address) []Obligation {
	if platformWallet == nil {
		return []Obligation{{
			Role:      RoleArtist,
			Recipient: artistWallet,
			AmountUSD: priceUSD,
			Asset:     AssetUSDC,
		}}
	}

	fee := priceUSD.Mul(feeRate)
	return []Obligation{
		{
			Role:      RoleArtist,
			Recipient: artistWallet,
			AmountUSD: priceUSD.Sub(fee),
			Asset:     AssetUSDC,
		},
		{
			Role:      RolePlatform,
			Recipient: *platformWallet,
			AmountUSD: fee,
			Asset:     AssetUSDC,
		},
	}
}
