// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateJWT(userID, "0xAbCd111111111111111111111111111111111111", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "0xabcd111111111111111111111111111111111111", claims.WalletAddress, "wallets are normalized to lower case")
	assert.Equal(t, "side-b", claims.Issuer)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("secret-one")
	token, err := GenerateJWT(uuid.New(), "0x1111111111111111111111111111111111111111", 1)
	require.NoError(t, err)

	SetJWTSecret("secret-two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	SetJWTSecret("test-secret")
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}
