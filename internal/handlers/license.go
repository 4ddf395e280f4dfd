// internal/handlers/license.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ValenteCreativo/Side-B-sub000/internal/services"
	"github.com/ValenteCreativo/Side-B-sub000/internal/store"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

type LicenseHandler struct {
	issuerService *services.IssuerService
	licenses      store.LicenseStore
}

type CreateLicenseRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
	BuyerID   uuid.UUID `json:"buyer_id" validate:"required"`
	TxHash    *string   `json:"tx_hash,omitempty"`
}

func NewLicenseHandler(issuerService *services.IssuerService, licenses store.LicenseStore) *LicenseHandler {
	return &LicenseHandler{
		issuerService: issuerService,
		licenses:      licenses,
	}
}

// POST /licenses
func (h *LicenseHandler) CreateLicense(c *gin.Context) {
	var req CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	license, err := h.issuerService.CreateLicense(c.Request.Context(), req.SessionID, req.BuyerID, req.TxHash)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"license": license,
	})
}

// GET /licenses?buyer_id= or ?session_id=
func (h *LicenseHandler) ListLicenses(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	if buyerIDStr := c.Query("buyer_id"); buyerIDStr != "" {
		buyerID, err := uuid.Parse(buyerIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid buyer ID", nil)
			return
		}

		licenses, total, err := h.licenses.ListByBuyer(c.Request.Context(), buyerID, params)
		if err != nil {
			utils.InternalErrorResponse(c, "")
			return
		}

		utils.PaginatedResponse(c, utils.CreatePaginationResult(licenses, total, params))
		return
	}

	if sessionIDStr := c.Query("session_id"); sessionIDStr != "" {
		sessionID, err := uuid.Parse(sessionIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid session ID", nil)
			return
		}

		licenses, total, err := h.licenses.ListBySession(c.Request.Context(), sessionID, params)
		if err != nil {
			utils.InternalErrorResponse(c, "")
			return
		}

		utils.PaginatedResponse(c, utils.CreatePaginationResult(licenses, total, params))
		return
	}

	utils.BadRequestResponse(c, "buyer_id or session_id query parameter is required", nil)
}

// GET /licenses/:id
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license ID", nil)
		return
	}

	license, err := h.licenses.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == store.ErrLicenseNotFound {
			utils.NotFoundResponse(c, "License")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"license": license,
	})
}
