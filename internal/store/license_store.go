// internal/store/license_store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

var ErrLicenseNotFound = errors.New("license not found")

// LicenseStore is the transactional repository for license rows. All
// cross-request coordination happens through the composite unique
// constraint on (session_id, buyer_id); there are no in-memory locks, so
// the service stays correct when run as multiple replicas.
type LicenseStore interface {
	Exists(ctx context.Context, sessionID, buyerID uuid.UUID) (bool, error)

	// CreateIfAbsent inserts a license for (sessionID, buyerID) and
	// returns created=true, or returns the existing row with
	// created=false when the pair is already licensed. Atomic: the
	// decision is made by the storage layer's unique constraint, never
	// by a check-then-insert.
	CreateIfAbsent(ctx context.Context, sessionID, buyerID uuid.UUID, txHash *string) (*models.License, bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	GetBySessionAndBuyer(ctx context.Context, sessionID, buyerID uuid.UUID) (*models.License, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, params utils.PaginationParams) ([]models.License, int64, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID, params utils.PaginationParams) ([]models.License, int64, error)
}

type gormLicenseStore struct {
	db *gorm.DB
}

func NewLicenseStore(db *gorm.DB) LicenseStore {
	return &gormLicenseStore{db: db}
}

func (s *gormLicenseStore) Exists(ctx context.Context, sessionID, buyerID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.License{}).
		Where("session_id = ? AND buyer_id = ?", sessionID, buyerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check license existence: %w", err)
	}
	return count > 0, nil
}

func (s *gormLicenseStore) CreateIfAbsent(ctx context.Context, sessionID, buyerID uuid.UUID, txHash *string) (*models.License, bool, error) {
	license := &models.License{
		SessionID: sessionID,
		BuyerID:   buyerID,
		TxHash:    txHash,
	}

	err := s.db.WithContext(ctx).Create(license).Error
	if err == nil {
		return license, true, nil
	}

	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, fmt.Errorf("failed to create license: %w", err)
	}

	// Lost the race to a concurrent duplicate request; the existing row
	// is the single source of truth for this purchase.
	existing, err := s.GetBySessionAndBuyer(ctx, sessionID, buyerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load existing license: %w", err)
	}

	return existing, false, nil
}

func (s *gormLicenseStore) GetBySessionAndBuyer(ctx context.Context, sessionID, buyerID uuid.UUID) (*models.License, error) {
	var license models.License
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND buyer_id = ?", sessionID, buyerID).
		First(&license).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &license, nil
}

func (s *gormLicenseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	var license models.License
	err := s.db.WithContext(ctx).
		Preload("Session").Preload("Session.Owner").Preload("Buyer").
		First(&license, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &license, nil
}

func (s *gormLicenseStore) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params utils.PaginationParams) ([]models.License, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.License{}).
		Where("buyer_id = ?", buyerID).
		Preload("Session").Preload("Session.Owner")

	return s.list(query, params)
}

func (s *gormLicenseStore) ListBySession(ctx context.Context, sessionID uuid.UUID, params utils.PaginationParams) ([]models.License, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.License{}).
		Where("session_id = ?", sessionID).
		Preload("Buyer")

	return s.list(query, params)
}

func (s *gormLicenseStore) list(query *gorm.DB, params utils.PaginationParams) ([]models.License, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count licenses: %w", err)
	}

	allowedSortFields := []string{"created_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var licenses []models.License
	if err := query.Find(&licenses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch licenses: %w", err)
	}

	return licenses, total, nil
}
