// internal/services/story_registrar.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ValenteCreativo/Side-B-sub000/internal/config"
	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
)

type StoryRegistration struct {
	AssetID string `json:"asset_id"`
	TxHash  string `json:"tx_hash"`
}

// StoryRegistrar mints an off-chain IP identifier for a session. The
// registry is an opaque upstream; the composition root decides whether
// the real client or the noop stands in, never the session service.
type StoryRegistrar interface {
	RegisterSession(ctx context.Context, session *models.Session) (*StoryRegistration, error)
}

type HTTPStoryRegistrar struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPStoryRegistrar(cfg config.StoryConfig) *HTTPStoryRegistrar {
	return &HTTPStoryRegistrar{
		baseURL: cfg.RegistryURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *HTTPStoryRegistrar) RegisterSession(ctx context.Context, session *models.Session) (*StoryRegistration, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"title":        session.Title,
		"owner_wallet": session.Owner.WalletAddress,
		"external_id":  session.ID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode registration request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/assets", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registration request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var registration StoryRegistration
	if err := json.NewDecoder(resp.Body).Decode(&registration); err != nil {
		return nil, fmt.Errorf("failed to decode registration response: %w", err)
	}

	return &registration, nil
}

// NoopStoryRegistrar is wired in when no registry is configured.
type NoopStoryRegistrar struct{}

func (NoopStoryRegistrar) RegisterSession(ctx context.Context, session *models.Session) (*StoryRegistration, error) {
	return nil, nil
}
