// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PLATFORM_FEE_RATE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Payment.PlatformFeeRate.Equal(decimal.RequireFromString("0.03")), "default fee rate = %s", cfg.Payment.PlatformFeeRate)
	assert.Equal(t, uint64(1), cfg.Chain.MinConfirmations)
}

func TestLoadParsesFeeRate(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PLATFORM_FEE_RATE", "0.05")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Payment.PlatformFeeRate.Equal(decimal.RequireFromString("0.05")))
}

func TestLoadNormalizesPlatformWallet(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PLATFORM_WALLET_ADDRESS", "0xABCD111111111111111111111111111111111111")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0xabcd111111111111111111111111111111111111", cfg.Payment.PlatformWallet)
}

func TestValidateRejectsFeeRateOutOfRange(t *testing.T) {
	cfg := &Config{Environment: "development"}

	cfg.Payment.PlatformFeeRate = decimal.RequireFromString("1.0")
	assert.Error(t, cfg.Validate())

	cfg.Payment.PlatformFeeRate = decimal.RequireFromString("-0.01")
	assert.Error(t, cfg.Validate())

	cfg.Payment.PlatformFeeRate = decimal.RequireFromString("0.99")
	assert.NoError(t, cfg.Validate())
}

func TestValidateProductionRequirements(t *testing.T) {
	cfg := &Config{Environment: "production"}
	cfg.JWT.SecretKey = "your-secret-key-change-in-production"
	cfg.Payment.PlatformFeeRate = decimal.RequireFromString("0.03")

	assert.Error(t, cfg.Validate(), "the default JWT secret must not survive into production")
}
