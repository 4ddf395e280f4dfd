// internal/services/session_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

type SessionService struct {
	db        *gorm.DB
	registrar StoryRegistrar
}

type CreateSessionRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	PriceUSD    string   `json:"price_usd" validate:"required"`
	AudioURL    string   `json:"audio_url,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
}

func NewSessionService(db *gorm.DB, registrar StoryRegistrar) *SessionService {
	return &SessionService{
		db:        db,
		registrar: registrar,
	}
}

func (s *SessionService) CreateSession(ctx context.Context, ownerID uuid.UUID, req *CreateSessionRequest) (*models.Session, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	price, err := decimal.NewFromString(req.PriceUSD)
	if err != nil || !price.IsPositive() {
		return nil, errors.New("price must be a positive decimal")
	}

	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("owner not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	session := &models.Session{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Genres:      pq.StringArray(req.Genres),
		PriceUSD:    price,
		AudioURL:    req.AudioURL,
		CoverURL:    req.CoverURL,
		Status:      models.SessionStatusPublished,
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.Owner = owner

	// Registration failure leaves the asset fields null; the upload is
	// not blocked on the registry.
	registration, err := s.registrar.RegisterSession(ctx, session)
	if err != nil {
		logrus.WithError(err).WithField("session_id", session.ID).Warn("Story registration failed")
	} else if registration != nil {
		session.StoryAssetID = &registration.AssetID
		session.StoryTxHash = &registration.TxHash
		if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
			logrus.WithError(err).WithField("session_id", session.ID).Warn("Failed to persist story registration")
		}
	}

	return session, nil
}

func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).Preload("Owner").First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("session not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &session, nil
}

func (s *SessionService) ListSessions(ctx context.Context, params utils.PaginationParams) ([]models.Session, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("status = ?", models.SessionStatusPublished).
		Preload("Owner")

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", searchTerm, searchTerm)
	}

	if params.Genre != "" {
		query = query.Where("? = ANY(genres)", params.Genre)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	allowedSortFields := []string{"created_at", "price_usd", "title"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var sessions []models.Session
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	return sessions, total, nil
}
