// internal/services/story_registrar_test.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValenteCreativo/Side-B-sub000/internal/config"
	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
)

func testSession() *models.Session {
	return &models.Session{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Title:     "Basement Tapes Vol. 2",
		Owner: models.User{
			WalletAddress: "0x1111111111111111111111111111111111111111",
		},
	}
}

func TestHTTPStoryRegistrarRegistersSession(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assets", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(StoryRegistration{
			AssetID: "asset-123",
			TxHash:  "0xfeed",
		})
	}))
	defer server.Close()

	registrar := NewHTTPStoryRegistrar(config.StoryConfig{
		RegistryURL: server.URL,
		APIKey:      "test-key",
	})

	session := testSession()
	registration, err := registrar.RegisterSession(context.Background(), session)

	require.NoError(t, err)
	assert.Equal(t, "asset-123", registration.AssetID)
	assert.Equal(t, "0xfeed", registration.TxHash)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, session.Title, gotPayload["title"])
	assert.Equal(t, session.Owner.WalletAddress, gotPayload["owner_wallet"])
}

func TestHTTPStoryRegistrarRejectsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	registrar := NewHTTPStoryRegistrar(config.StoryConfig{RegistryURL: server.URL})

	_, err := registrar.RegisterSession(context.Background(), testSession())
	assert.Error(t, err)
}

func TestNoopStoryRegistrar(t *testing.T) {
	registration, err := NoopStoryRegistrar{}.RegisterSession(context.Background(), testSession())
	assert.NoError(t, err)
	assert.Nil(t, registration)
}
