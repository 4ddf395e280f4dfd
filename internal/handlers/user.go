// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ValenteCreativo/Side-B-sub000/internal/services"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// POST /auth/wallet
func (h *UserHandler) WalletLogin(c *gin.Context) {
	var req services.WalletLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	resp, err := h.userService.LoginWithWallet(c.Request.Context(), &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, resp)
}

// GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		utils.NotFoundResponse(c, "User")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}

// GET /me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := utils.GetUserUUIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		utils.NotFoundResponse(c, "User")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}
