// internal/handlers/session.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ValenteCreativo/Side-B-sub000/internal/services"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// POST /sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, exists := utils.GetUserUUIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"session": session,
	})
}

// GET /sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	sessions, total, err := h.sessionService.ListSessions(c.Request.Context(), params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(sessions, total, params))
}

// GET /sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid session ID", nil)
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), id)
	if err != nil {
		utils.NotFoundResponse(c, "Session")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"session": session,
	})
}
