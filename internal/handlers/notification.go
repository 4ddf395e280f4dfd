// internal/handlers/notification.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ValenteCreativo/Side-B-sub000/internal/services"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GET /notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, exists := utils.GetUserUUIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	params := utils.GetPaginationParams(c)

	notifications, total, err := h.notificationService.ListForUser(c.Request.Context(), userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(notifications, total, params))
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, exists := utils.GetUserUUIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid notification ID", nil)
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		utils.NotFoundResponse(c, "Notification")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"notification": notification,
	})
}
