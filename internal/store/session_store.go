// internal/store/session_store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the read side the issuer needs: a session with its
// owner loaded, so the payment split can be computed from the stored
// price and the owner's wallet.
type SessionStore interface {
	GetWithOwner(ctx context.Context, id uuid.UUID) (*models.Session, error)
}

type gormSessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) SessionStore {
	return &gormSessionStore{db: db}
}

func (s *gormSessionStore) GetWithOwner(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).Preload("Owner").First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &session, nil
}
