// internal/services/notification_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ValenteCreativo/Side-B-sub000/internal/config"
	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// NotifySale records a sale notification for the session owner. Best
// effort: the license is the source of truth for the purchase, so a
// failure here is logged and never propagated.
func (s *NotificationService) NotifySale(session *models.Session, license *models.License) {
	notification := &models.Notification{
		UserID:  session.OwnerID,
		Type:    models.NotificationTypePurchase,
		Title:   "New sale: " + session.Title,
		Message: fmt.Sprintf("Your session %q was licensed for $%s.", session.Title, session.PriceUSD.StringFixed(2)),
		Link:    fmt.Sprintf("%s/sessions/%s", s.config.Frontend.BaseURL, session.ID),
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"session_id": session.ID,
			"license_id": license.ID,
		}).Error("Failed to create sale notification")
	}
}

func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	allowedSortFields := []string{"created_at", "read"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("notification not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	notification.Read = true
	if err := s.db.WithContext(ctx).Save(&notification).Error; err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}

	return &notification, nil
}
